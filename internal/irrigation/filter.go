package irrigation

import (
	"sort"

	"smartfarm-backend/internal/common/config"
)

// MedianADC returns the median of one tick's raw probe reads. The probe is
// noisy enough that single reads are unusable; callers sample several times
// per tick and median the batch.
func MedianADC(samples []int) int {
	if len(samples) == 0 {
		return 0
	}
	sorted := make([]int, len(samples))
	copy(sorted, samples)
	sort.Ints(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// SoilState is one conditioned soil observation: the calibrated percent
// after smoothing, the trend-window moving average, and the first
// difference against the previous observation.
type SoilState struct {
	Percent   float64
	MovingAvg float64
	Delta     float64
}

// SoilFilter conditions the median ADC stream: a short integer-mean window
// over the medians before calibration, then a longer window over the
// resulting percents for the moving average the model consumes. Not safe
// for concurrent use; the agent loop owns it.
type SoilFilter struct {
	wet, dry     int
	smoothWindow int
	trendWindow  int

	adcBuf  []int
	pctBuf  []float64
	lastPct float64
	hasLast bool
}

func NewSoilFilter(cfg config.IrrigationConfig) *SoilFilter {
	smooth := cfg.SmoothWindow
	if smooth < 1 {
		smooth = 1
	}
	trend := cfg.TrendWindow
	if trend < 1 {
		trend = 1
	}
	return &SoilFilter{
		wet:          cfg.WetADC,
		dry:          cfg.DryADC,
		smoothWindow: smooth,
		trendWindow:  trend,
	}
}

// Observe feeds one median ADC value through the filter and returns the
// conditioned state. The first observation has a zero delta.
func (f *SoilFilter) Observe(median int) SoilState {
	f.adcBuf = push(f.adcBuf, median, f.smoothWindow)

	sum := 0
	for _, v := range f.adcBuf {
		sum += v
	}
	smoothed := sum / len(f.adcBuf)

	pct := ADCToPercent(smoothed, f.wet, f.dry)
	f.pctBuf = pushF(f.pctBuf, pct, f.trendWindow)

	var pctSum float64
	for _, v := range f.pctBuf {
		pctSum += v
	}
	ma := pctSum / float64(len(f.pctBuf))

	delta := 0.0
	if f.hasLast {
		delta = pct - f.lastPct
	}
	f.lastPct = pct
	f.hasLast = true

	return SoilState{Percent: pct, MovingAvg: ma, Delta: delta}
}

func push(buf []int, v, max int) []int {
	buf = append(buf, v)
	if len(buf) > max {
		buf = buf[1:]
	}
	return buf
}

func pushF(buf []float64, v float64, max int) []float64 {
	buf = append(buf, v)
	if len(buf) > max {
		buf = buf[1:]
	}
	return buf
}
