package store

import (
	"context"
	"math"
	"sort"
	"time"

	"smartfarm-backend/internal/models"
)

const statsWindow = 4 * 7 * 24 * time.Hour

// WeeklyStatistics aggregates the last four weeks of sensor readings and
// pest reports into per-week buckets (Monday start, chronological order).
// Weeks that contain only pest reports get zero averages.
func (s *Store) WeeklyStatistics(ctx context.Context, now time.Time) ([]models.WeeklyStatistics, error) {
	since := now.Add(-statsWindow)

	readings, err := s.SensorReadingsSince(ctx, since)
	if err != nil {
		return nil, err
	}
	reports, err := s.PestReportsSince(ctx, since)
	if err != nil {
		return nil, err
	}

	if len(readings) == 0 && len(reports) == 0 {
		return []models.WeeklyStatistics{}, nil
	}

	type bucket struct {
		count     int
		tempSum   float64
		humSum    float64
		soilSum   float64
		pestCount int
		weekStart time.Time
	}

	buckets := map[string]*bucket{}
	get := func(ts time.Time) *bucket {
		ws := weekStart(ts)
		key := ws.Format("2006-01-02")
		b, ok := buckets[key]
		if !ok {
			b = &bucket{weekStart: ws}
			buckets[key] = b
		}
		return b
	}

	for _, r := range readings {
		b := get(r.Timestamp)
		b.count++
		b.tempSum += r.Temperature
		b.humSum += r.Humidity
		b.soilSum += r.SoilMoisture
	}
	for _, p := range reports {
		get(p.Timestamp).pestCount++
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]models.WeeklyStatistics, 0, len(keys))
	for _, key := range keys {
		b := buckets[key]
		stat := models.WeeklyStatistics{
			WeekStart:        key,
			WeekEnd:          b.weekStart.AddDate(0, 0, 6).Format("2006-01-02"),
			TotalPestReports: b.pestCount,
		}
		if b.count > 0 {
			stat.AvgTemperature = round2(b.tempSum / float64(b.count))
			stat.AvgHumidity = round2(b.humSum / float64(b.count))
			stat.AvgSoilMoisture = round2(b.soilSum / float64(b.count))
		}
		out = append(out, stat)
	}
	return out, nil
}

// weekStart truncates to midnight of the Monday of ts's week.
func weekStart(ts time.Time) time.Time {
	day := (int(ts.Weekday()) + 6) % 7 // Monday=0
	start := ts.AddDate(0, 0, -day)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
