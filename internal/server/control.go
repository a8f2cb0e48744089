package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	errs "smartfarm-backend/internal/common/errors"
	"smartfarm-backend/internal/common/metrics"
	"smartfarm-backend/internal/common/validation"
	"smartfarm-backend/internal/models"
)

const controlCacheKey = "control:status"

// handleSetManualControl serves PUT /control/manual/ for the frontend.
func (s *Server) handleSetManualControl(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errs.ErrCodePayloadValidationFailed, "unreadable body")
		return
	}

	result, err := validation.ValidatePayload(body, manualControlSchema)
	if err != nil || !result.Valid {
		if err != nil {
			s.writeError(w, http.StatusBadRequest, errs.ErrCodePayloadValidationFailed, "malformed JSON")
			return
		}
		s.writeValidationError(w, result)
		return
	}

	var upd models.ManualControlUpdate
	if err := json.Unmarshal(body, &upd); err != nil {
		s.writeError(w, http.StatusBadRequest, errs.ErrCodePayloadValidationFailed, "malformed JSON")
		return
	}

	ctl, err := s.store.UpdateManualControl(r.Context(), &upd)
	if err != nil {
		s.logger.Error("manual control update failed", map[string]interface{}{"error": err.Error()})
		s.writeError(w, http.StatusInternalServerError, errs.ErrCodeQueryExecutionFailed, "failed to update manual control")
		return
	}

	s.cacheControl(r.Context(), ctl)
	s.writeJSON(w, http.StatusOK, ctl)
}

// handleGetControlStatus serves GET /control/status/ for the field agents.
// Agents poll this every few seconds, so reads are served from the cache
// when possible.
func (s *Server) handleGetControlStatus(w http.ResponseWriter, r *http.Request) {
	if s.cache != nil {
		if raw, err := s.cache.Get(r.Context(), controlCacheKey); err == nil {
			var ctl models.ManualControl
			if err := json.Unmarshal([]byte(raw), &ctl); err == nil {
				metrics.ControlCacheHits.Inc()
				s.writeJSON(w, http.StatusOK, &ctl)
				return
			}
		}
		metrics.ControlCacheMisses.Inc()
	}

	ctl, err := s.store.GetManualControl(r.Context())
	if err != nil {
		s.logger.Error("manual control fetch failed", map[string]interface{}{"error": err.Error()})
		s.writeError(w, http.StatusInternalServerError, errs.ErrCodeQueryExecutionFailed, "failed to fetch manual control")
		return
	}

	s.cacheControl(r.Context(), ctl)
	s.writeJSON(w, http.StatusOK, ctl)
}

func (s *Server) cacheControl(ctx context.Context, ctl *models.ManualControl) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(ctl)
	if err != nil {
		return
	}
	ttl := time.Duration(s.cfg.ControlCacheTTL) * time.Second
	if err := s.cache.Set(ctx, controlCacheKey, data, ttl); err != nil {
		s.logger.Warn("control cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
