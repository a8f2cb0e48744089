package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrNoReadings is returned when the sensor_data table is empty.
var ErrNoReadings = errors.New("no sensor data found")

// Store is the relational persistence layer. It works against either
// postgres or sqlite; statements are written with ? bindvars and rebound
// through sqlx for the active driver.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.db.DriverName() == "postgres" {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS sensor_data (
			id %s,
			timestamp TIMESTAMP NOT NULL,
			temperature DOUBLE PRECISION NOT NULL,
			humidity DOUBLE PRECISION NOT NULL,
			soil_moisture DOUBLE PRECISION NOT NULL,
			irrigation_status BOOLEAN NOT NULL,
			decision TEXT NOT NULL
		)`, serial),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS pest_reports (
			id %s,
			timestamp TIMESTAMP NOT NULL,
			pest_name TEXT NOT NULL,
			plant_name TEXT NOT NULL,
			detection_certainty DOUBLE PRECISION NOT NULL,
			recommendation TEXT NOT NULL
		)`, serial),
		`CREATE TABLE IF NOT EXISTS manual_control (
			id INTEGER PRIMARY KEY,
			manual_enabled BOOLEAN NOT NULL,
			pump_command BOOLEAN NOT NULL,
			timestamp TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pest_alerts (
			id TEXT PRIMARY KEY,
			report_id BIGINT NOT NULL,
			channel TEXT NOT NULL,
			sent_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sensor_data_timestamp ON sensor_data (timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_pest_reports_timestamp ON pest_reports (timestamp)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
