package models

import "time"

type PestReport struct {
	ID                 int64     `db:"id" json:"id"`
	Timestamp          time.Time `db:"timestamp" json:"timestamp"`
	PestName           string    `db:"pest_name" json:"pest_name"`
	PlantName          string    `db:"plant_name" json:"plant_name"`
	DetectionCertainty float64   `db:"detection_certainty" json:"detection_certainty"`
	Recommendation     string    `db:"recommendation" json:"recommendation"`
}

// PestReportCreate is the ingest payload for POST /data/pest-report/.
// Recommendation may be empty; the server fills it from the pest catalog.
type PestReportCreate struct {
	PestName           string  `json:"pest_name"`
	PlantName          string  `json:"plant_name"`
	DetectionCertainty float64 `json:"detection_certainty"`
	Recommendation     string  `json:"recommendation"`
}

// PestAlert records one delivered notification about a pest report.
type PestAlert struct {
	ID       string    `db:"id" json:"id"` // uuid
	ReportID int64     `db:"report_id" json:"report_id"`
	Channel  string    `db:"channel" json:"channel"` // "email" or "sms"
	SentAt   time.Time `db:"sent_at" json:"sent_at"`
}
