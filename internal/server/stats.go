package server

import (
	"net/http"
	"time"

	errs "smartfarm-backend/internal/common/errors"
	"smartfarm-backend/internal/models"
)

// handleWeeklyStats serves GET /statistics/weekly/.
func (s *Server) handleWeeklyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.WeeklyStatistics(r.Context(), time.Now().UTC())
	if err != nil {
		s.logger.Error("weekly statistics failed", map[string]interface{}{"error": err.Error()})
		s.writeError(w, http.StatusInternalServerError, errs.ErrCodeQueryExecutionFailed, "failed to compute weekly statistics")
		return
	}
	if stats == nil {
		stats = []models.WeeklyStatistics{}
	}
	s.writeJSON(w, http.StatusOK, stats)
}
