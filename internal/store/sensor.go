package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"smartfarm-backend/internal/models"
)

func (s *Store) CreateSensorReading(ctx context.Context, in *models.SensorReadingCreate) (*models.SensorReading, error) {
	reading := &models.SensorReading{
		Timestamp:        time.Now().UTC(),
		Temperature:      in.Temperature,
		Humidity:         in.Humidity,
		SoilMoisture:     in.SoilMoisture,
		IrrigationStatus: in.IrrigationStatus,
		Decision:         in.Decision,
	}

	query := `INSERT INTO sensor_data
		(timestamp, temperature, humidity, soil_moisture, irrigation_status, decision)
		VALUES (?, ?, ?, ?, ?, ?)`

	id, err := s.insertReturningID(ctx, query,
		reading.Timestamp, reading.Temperature, reading.Humidity,
		reading.SoilMoisture, reading.IrrigationStatus, reading.Decision,
	)
	if err != nil {
		return nil, fmt.Errorf("insert sensor reading: %w", err)
	}

	reading.ID = id
	return reading, nil
}

func (s *Store) LatestSensorReading(ctx context.Context) (*models.SensorReading, error) {
	var reading models.SensorReading
	query := s.db.Rebind(`SELECT id, timestamp, temperature, humidity, soil_moisture, irrigation_status, decision
		FROM sensor_data ORDER BY timestamp DESC, id DESC LIMIT 1`)

	if err := s.db.GetContext(ctx, &reading, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoReadings
		}
		return nil, fmt.Errorf("query latest sensor reading: %w", err)
	}
	return &reading, nil
}

func (s *Store) SensorReadingsSince(ctx context.Context, since time.Time) ([]models.SensorReading, error) {
	var readings []models.SensorReading
	query := s.db.Rebind(`SELECT id, timestamp, temperature, humidity, soil_moisture, irrigation_status, decision
		FROM sensor_data WHERE timestamp >= ? ORDER BY timestamp ASC`)

	if err := s.db.SelectContext(ctx, &readings, query, since); err != nil {
		return nil, fmt.Errorf("query sensor readings: %w", err)
	}
	return readings, nil
}

// insertReturningID papers over the drivers' different ways of yielding the
// generated primary key.
func (s *Store) insertReturningID(ctx context.Context, query string, args ...interface{}) (int64, error) {
	if s.db.DriverName() == "postgres" {
		var id int64
		err := s.db.QueryRowxContext(ctx, s.db.Rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
