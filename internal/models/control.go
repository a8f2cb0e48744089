package models

import "time"

// ManualControl is the single-row manual_control table. When ManualEnabled
// is set, field agents execute PumpCommand instead of their own decision.
type ManualControl struct {
	ManualEnabled bool      `db:"manual_enabled" json:"manual_enabled"`
	PumpCommand   bool      `db:"pump_command" json:"pump_command"`
	Timestamp     time.Time `db:"timestamp" json:"timestamp"`
}

type ManualControlUpdate struct {
	ManualEnabled bool `json:"manual_enabled"`
	PumpCommand   bool `json:"pump_command"`
}
