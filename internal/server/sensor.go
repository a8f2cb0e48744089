package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	errs "smartfarm-backend/internal/common/errors"
	"smartfarm-backend/internal/common/metrics"
	"smartfarm-backend/internal/common/validation"
	"smartfarm-backend/internal/models"
	"smartfarm-backend/internal/store"
)

// handleRecordSensor serves POST /data/sensor/: one reading from a field
// agent.
func (s *Server) handleRecordSensor(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errs.ErrCodePayloadValidationFailed, "unreadable body")
		return
	}

	result, err := validation.ValidatePayload(body, sensorReadingSchema)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errs.ErrCodePayloadValidationFailed, "malformed JSON")
		return
	}
	if !result.Valid {
		s.writeValidationError(w, result)
		return
	}

	var in models.SensorReadingCreate
	if err := json.Unmarshal(body, &in); err != nil {
		s.writeError(w, http.StatusBadRequest, errs.ErrCodePayloadValidationFailed, "malformed JSON")
		return
	}

	reading, err := s.store.CreateSensorReading(r.Context(), &in)
	if err != nil {
		s.logger.Error("sensor reading insert failed", map[string]interface{}{"error": err.Error()})
		s.writeError(w, http.StatusInternalServerError, errs.ErrCodeQueryExecutionFailed, "failed to record sensor data")
		return
	}

	metrics.SensorReadingsRecorded.Inc()
	s.writeJSON(w, http.StatusCreated, reading)
}

// handleLatestStatus serves GET /status/latest/: the current farm status.
func (s *Server) handleLatestStatus(w http.ResponseWriter, r *http.Request) {
	reading, err := s.store.LatestSensorReading(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNoReadings) {
			s.writeError(w, http.StatusNotFound, errs.ErrCodeNoSensorData, "No sensor data found.")
			return
		}
		s.logger.Error("latest reading fetch failed", map[string]interface{}{"error": err.Error()})
		s.writeError(w, http.StatusInternalServerError, errs.ErrCodeQueryExecutionFailed, "failed to fetch latest reading")
		return
	}

	s.writeJSON(w, http.StatusOK, reading)
}
