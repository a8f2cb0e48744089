package models

import "time"

// SensorReading is one row of the sensor_data table: a snapshot sent by a
// field agent together with the irrigation decision in force at that moment.
type SensorReading struct {
	ID               int64     `db:"id" json:"id"`
	Timestamp        time.Time `db:"timestamp" json:"timestamp"`
	Temperature      float64   `db:"temperature" json:"temperature"`
	Humidity         float64   `db:"humidity" json:"humidity"`
	SoilMoisture     float64   `db:"soil_moisture" json:"soil_moisture"`
	IrrigationStatus bool      `db:"irrigation_status" json:"irrigation_status"`
	Decision         string    `db:"decision" json:"ai_decision"`
}

// SensorReadingCreate is the ingest payload for POST /data/sensor/.
type SensorReadingCreate struct {
	Temperature      float64 `json:"temperature"`
	Humidity         float64 `json:"humidity"`
	SoilMoisture     float64 `json:"soil_moisture"`
	IrrigationStatus bool    `json:"irrigation_status"`
	Decision         string  `json:"ai_decision"`
}
