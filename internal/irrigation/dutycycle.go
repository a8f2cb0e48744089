package irrigation

import (
	"time"

	"smartfarm-backend/internal/common/config"
)

// OffCause reports why the duty guard wants the pump stopped.
type OffCause string

const (
	OffSafetyCutoff OffCause = "safety_cutoff"
	OffPulseEnd     OffCause = "pulse_end"
	OffManual       OffCause = "manual_off"
)

// DutyGuard enforces the pump's physical duty limits: minimum on/off
// intervals, burst length, a hard maximum on-time, a soak rest after each
// run, and a per-hour runtime cap. It is not safe for concurrent use; the
// agent loop owns it.
type DutyGuard struct {
	cfg config.IrrigationConfig

	pumpOn     bool
	lastChange time.Time
	onStart    time.Time
	restUntil  time.Time
	hourStart  time.Time
	runSec     int
}

func NewDutyGuard(cfg config.IrrigationConfig, now time.Time) *DutyGuard {
	return &DutyGuard{
		cfg:        cfg,
		lastChange: now,
		hourStart:  now,
	}
}

func (g *DutyGuard) PumpOn() bool {
	return g.pumpOn
}

// Tick advances the hourly accounting window and accumulates runtime.
// Call it once per loop iteration with the elapsed seconds since the last.
func (g *DutyGuard) Tick(now time.Time, elapsedSec int) {
	if now.Sub(g.hourStart) >= time.Hour {
		g.hourStart = now
		g.runSec = 0
	}
	if g.pumpOn {
		g.runSec += elapsedSec
		if g.runSec > 3600 {
			g.runSec = 3600
		}
	}
}

// CanTurnOn reports whether a positive decision may actually start the pump
// right now.
func (g *DutyGuard) CanTurnOn(now time.Time) bool {
	if g.pumpOn {
		return false
	}
	if now.Before(g.restUntil) {
		return false
	}
	if now.Sub(g.lastChange) < time.Duration(g.cfg.MinOffSec)*time.Second {
		return false
	}
	// hourly runtime budget
	return float64(g.runSec)/60.0 < float64(g.cfg.MaxMinPerHour)
}

func (g *DutyGuard) TurnOn(now time.Time) {
	g.pumpOn = true
	g.onStart = now
	g.lastChange = now
}

// ShouldTurnOff reports whether the running pump must stop, and why.
// All causes are gated by the minimum on-interval except none at all:
// a pump that has not run MinOnSec keeps running.
func (g *DutyGuard) ShouldTurnOff(now time.Time, manualEnabled, manualPumpCmd bool) (bool, OffCause) {
	if !g.pumpOn {
		return false, ""
	}
	if now.Sub(g.lastChange) < time.Duration(g.cfg.MinOnSec)*time.Second {
		return false, ""
	}

	onFor := now.Sub(g.onStart)
	switch {
	case onFor >= time.Duration(g.cfg.MaxOnSec)*time.Second:
		return true, OffSafetyCutoff
	case manualEnabled && !manualPumpCmd:
		return true, OffManual
	case onFor >= time.Duration(g.cfg.BurstOnSec)*time.Second:
		return true, OffPulseEnd
	}
	return false, ""
}

func (g *DutyGuard) TurnOff(now time.Time) {
	g.pumpOn = false
	g.lastChange = now
	g.restUntil = now.Add(time.Duration(g.cfg.RestSec) * time.Second)
}
