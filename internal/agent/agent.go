package agent

import (
	"context"
	"math"
	"time"

	"smartfarm-backend/internal/common/config"
	"smartfarm-backend/internal/common/logger"
	"smartfarm-backend/internal/irrigation"
	"smartfarm-backend/internal/models"
)

// Sample is one raw reading from the field hardware.
type Sample struct {
	Temperature float64 // °C
	Humidity    float64 // %RH
	SoilADC     int
}

// SensorSource produces samples. Hardware drivers and simulators both
// implement it.
type SensorSource interface {
	Read(ctx context.Context) (*Sample, error)
}

// Pump switches the irrigation pump relay.
type Pump interface {
	Set(on bool) error
}

// Features is the conditioned input row a model scores. SoilMovingAvg and
// DeltaSoil come from the trend window so the model sees drying rate, not
// just the instantaneous level.
type Features struct {
	Temperature   float64
	Humidity      float64
	SoilMoisture  float64
	SoilMovingAvg float64
	DeltaSoil     float64
	VPD           float64
	Hour          int
	SinHour       float64
	CosHour       float64
}

// Model scores irrigation need from the conditioned features. A nil model
// means the agent runs on the emergency rule alone.
type Model interface {
	Predict(f Features) float64
}

// API is the backend surface the agent uses.
type API interface {
	PostSensorReading(ctx context.Context, in *models.SensorReadingCreate) error
	FetchControlStatus(ctx context.Context) (*models.ManualControl, error)
}

// Agent runs one field station: it samples sensors, decides irrigation,
// drives the pump within duty limits, and reports to the backend.
type Agent struct {
	cfg    config.AgentConfig
	api    API
	sensor SensorSource
	pump   Pump
	model  Model
	guard  *irrigation.DutyGuard
	filter *irrigation.SoilFilter
	logger logger.Logger

	manualEnabled bool
	pumpCommand   bool
	lastControl   time.Time
	lastReport    time.Time
	lastTick      time.Time
}

func New(cfg config.AgentConfig, api API, sensor SensorSource, pump Pump, model Model, log logger.Logger, now time.Time) *Agent {
	return &Agent{
		cfg:      cfg,
		api:      api,
		sensor:   sensor,
		pump:     pump,
		model:    model,
		guard:    irrigation.NewDutyGuard(cfg.Irrigation, now),
		filter:   irrigation.NewSoilFilter(cfg.Irrigation),
		logger:   log.WithFields(map[string]interface{}{"component": "agent"}),
		lastTick: now,
	}
}

// Run loops until the context is cancelled. The pump is switched off on the
// way out.
func (a *Agent) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if a.guard.PumpOn() {
				a.setPump(false)
			}
			return ctx.Err()
		case now := <-ticker.C:
			a.Step(ctx, now)
		}
	}
}

// Step executes one control iteration at the given instant.
func (a *Agent) Step(ctx context.Context, now time.Time) {
	elapsed := int(now.Sub(a.lastTick).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	a.lastTick = now
	a.guard.Tick(now, elapsed)

	a.refreshControl(ctx, now)

	sample, soil, ok := a.sense(ctx)
	if !ok {
		return
	}
	vpd := irrigation.VPD(sample.Temperature, sample.Humidity)

	prob := 0.0
	if a.model != nil {
		hour := now.UTC().Hour()
		prob = a.model.Predict(Features{
			Temperature:   sample.Temperature,
			Humidity:      sample.Humidity,
			SoilMoisture:  soil.Percent,
			SoilMovingAvg: soil.MovingAvg,
			DeltaSoil:     soil.Delta,
			VPD:           vpd,
			Hour:          hour,
			SinHour:       math.Sin(2 * math.Pi * float64(hour) / 24.0),
			CosHour:       math.Cos(2 * math.Pi * float64(hour) / 24.0),
		})
	}

	decision := irrigation.Decide(irrigation.Input{
		ManualEnabled: a.manualEnabled,
		PumpCommand:   a.pumpCommand,
		Probability:   prob,
		Threshold:     a.cfg.Irrigation.Threshold,
		SoilMoisture:  soil.Percent,
		EmergencyPct:  a.cfg.Irrigation.EmergencyOnPct,
	})

	a.drivePump(now, decision)
	a.report(ctx, now, sample, soil.Percent, decision)
}

// sense takes one tick's batch of raw reads, medians the probe values and
// runs the soil filter. Air readings come from the last sample of the
// batch.
func (a *Agent) sense(ctx context.Context) (*Sample, irrigation.SoilState, bool) {
	n := a.cfg.Irrigation.MedianSamples
	if n < 1 {
		n = 1
	}

	raws := make([]int, 0, n)
	var sample *Sample
	for i := 0; i < n; i++ {
		s, err := a.sensor.Read(ctx)
		if err != nil {
			a.logger.Warn("sensor read failed", map[string]interface{}{"error": err.Error()})
			return nil, irrigation.SoilState{}, false
		}
		sample = s
		raws = append(raws, s.SoilADC)
	}

	soil := a.filter.Observe(irrigation.MedianADC(raws))
	return sample, soil, true
}

// refreshControl polls the manual override. Failures keep the previous
// state; an agent that has never reached the backend stays in automatic
// mode with the pump released.
func (a *Agent) refreshControl(ctx context.Context, now time.Time) {
	if !a.lastControl.IsZero() && now.Sub(a.lastControl) < time.Duration(a.cfg.ControlInterval)*time.Second {
		return
	}
	a.lastControl = now

	ctl, err := a.api.FetchControlStatus(ctx)
	if err != nil {
		a.logger.Warn("control poll failed", map[string]interface{}{"error": err.Error()})
		return
	}
	a.manualEnabled = ctl.ManualEnabled
	a.pumpCommand = ctl.PumpCommand
}

func (a *Agent) drivePump(now time.Time, d irrigation.Decision) {
	if a.guard.PumpOn() {
		if off, cause := a.guard.ShouldTurnOff(now, a.manualEnabled, a.pumpCommand); off {
			a.guard.TurnOff(now)
			a.setPump(false)
			a.logger.Info("pump off", map[string]interface{}{"cause": string(cause)})
			return
		}
		// A negative decision also stops the pump once the minimum
		// on-interval has passed.
		if !d.On {
			if off, _ := a.guard.ShouldTurnOff(now, true, false); off {
				a.guard.TurnOff(now)
				a.setPump(false)
				a.logger.Info("pump off", map[string]interface{}{"cause": "decision"})
			}
		}
		return
	}

	if d.On && a.guard.CanTurnOn(now) {
		a.guard.TurnOn(now)
		a.setPump(true)
		a.logger.Info("pump on", map[string]interface{}{"reason": string(d.Reason)})
	}
}

func (a *Agent) setPump(on bool) {
	if err := a.pump.Set(on); err != nil {
		a.logger.Error("pump switch failed", map[string]interface{}{"error": err.Error(), "on": on})
	}
}

func (a *Agent) report(ctx context.Context, now time.Time, s *Sample, soilPct float64, d irrigation.Decision) {
	if !a.lastReport.IsZero() && now.Sub(a.lastReport) < time.Duration(a.cfg.ReportInterval)*time.Second {
		return
	}
	a.lastReport = now

	in := &models.SensorReadingCreate{
		Temperature:      s.Temperature,
		Humidity:         s.Humidity,
		SoilMoisture:     soilPct,
		IrrigationStatus: a.guard.PumpOn(),
		Decision:         irrigation.DecisionText(d),
	}
	if err := a.api.PostSensorReading(ctx, in); err != nil {
		a.logger.Warn("sensor report failed", map[string]interface{}{"error": err.Error()})
	}
}
