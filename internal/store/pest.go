package store

import (
	"context"
	"fmt"
	"time"

	"smartfarm-backend/internal/models"
)

func (s *Store) CreatePestReport(ctx context.Context, in *models.PestReportCreate) (*models.PestReport, error) {
	report := &models.PestReport{
		Timestamp:          time.Now().UTC(),
		PestName:           in.PestName,
		PlantName:          in.PlantName,
		DetectionCertainty: in.DetectionCertainty,
		Recommendation:     in.Recommendation,
	}

	query := `INSERT INTO pest_reports
		(timestamp, pest_name, plant_name, detection_certainty, recommendation)
		VALUES (?, ?, ?, ?, ?)`

	id, err := s.insertReturningID(ctx, query,
		report.Timestamp, report.PestName, report.PlantName,
		report.DetectionCertainty, report.Recommendation,
	)
	if err != nil {
		return nil, fmt.Errorf("insert pest report: %w", err)
	}

	report.ID = id
	return report, nil
}

func (s *Store) RecentPestReports(ctx context.Context, limit int) ([]models.PestReport, error) {
	var reports []models.PestReport
	query := s.db.Rebind(`SELECT id, timestamp, pest_name, plant_name, detection_certainty, recommendation
		FROM pest_reports ORDER BY timestamp DESC, id DESC LIMIT ?`)

	if err := s.db.SelectContext(ctx, &reports, query, limit); err != nil {
		return nil, fmt.Errorf("query recent pest reports: %w", err)
	}
	return reports, nil
}

func (s *Store) PestReportsSince(ctx context.Context, since time.Time) ([]models.PestReport, error) {
	var reports []models.PestReport
	query := s.db.Rebind(`SELECT id, timestamp, pest_name, plant_name, detection_certainty, recommendation
		FROM pest_reports WHERE timestamp >= ? ORDER BY timestamp ASC`)

	if err := s.db.SelectContext(ctx, &reports, query, since); err != nil {
		return nil, fmt.Errorf("query pest reports: %w", err)
	}
	return reports, nil
}

func (s *Store) CreatePestAlert(ctx context.Context, alert *models.PestAlert) error {
	query := s.db.Rebind(`INSERT INTO pest_alerts (id, report_id, channel, sent_at) VALUES (?, ?, ?, ?)`)

	if _, err := s.db.ExecContext(ctx, query, alert.ID, alert.ReportID, alert.Channel, alert.SentAt); err != nil {
		return fmt.Errorf("insert pest alert: %w", err)
	}
	return nil
}
