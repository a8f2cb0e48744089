package agent

import (
	"context"
	"math/rand"

	"smartfarm-backend/internal/common/logger"
)

// SimulatedSensor is a random-walk sensor source used for bench runs and
// stations without probe hardware attached.
type SimulatedSensor struct {
	rng *rand.Rand

	temperature float64
	humidity    float64
	soilADC     float64
}

func NewSimulatedSensor(seed int64) *SimulatedSensor {
	return &SimulatedSensor{
		rng:         rand.New(rand.NewSource(seed)),
		temperature: 24.0,
		humidity:    60.0,
		soilADC:     420.0,
	}
}

func (s *SimulatedSensor) Read(context.Context) (*Sample, error) {
	s.temperature = clampF(s.temperature+s.rng.Float64()-0.5, 10, 45)
	s.humidity = clampF(s.humidity+2*(s.rng.Float64()-0.5), 20, 95)
	// Soil dries slowly; irrigation events are not modelled here, the
	// pump feedback is invisible to a simulated probe.
	s.soilADC = clampF(s.soilADC+s.rng.Float64()*2, 233, 619)

	return &Sample{
		Temperature: s.temperature,
		Humidity:    s.humidity,
		SoilADC:     int(s.soilADC),
	}, nil
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// LogPump satisfies Pump without touching hardware. It is the dry-run
// counterpart of a relay driver.
type LogPump struct {
	logger logger.Logger
	on     bool
}

func NewLogPump(log logger.Logger) *LogPump {
	return &LogPump{logger: log}
}

func (p *LogPump) Set(on bool) error {
	p.on = on
	p.logger.Info("pump state", map[string]interface{}{"on": on})
	return nil
}

func (p *LogPump) On() bool {
	return p.on
}
