package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	errs "smartfarm-backend/internal/common/errors"
	"smartfarm-backend/internal/common/metrics"
	"smartfarm-backend/internal/common/validation"
	"smartfarm-backend/internal/models"
	"smartfarm-backend/internal/pests"
)

// handleRecordPestReport serves POST /data/pest-report/. The relational
// store is authoritative; indexing and alerting happen best-effort after
// the insert succeeds.
func (s *Server) handleRecordPestReport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errs.ErrCodePayloadValidationFailed, "unreadable body")
		return
	}

	result, err := validation.ValidatePayload(body, pestReportSchema)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errs.ErrCodePayloadValidationFailed, "malformed JSON")
		return
	}
	if !result.Valid {
		s.writeValidationError(w, result)
		return
	}

	var in models.PestReportCreate
	if err := json.Unmarshal(body, &in); err != nil {
		s.writeError(w, http.StatusBadRequest, errs.ErrCodePayloadValidationFailed, "malformed JSON")
		return
	}

	if in.Recommendation == "" {
		rec, ok := pests.RecommendationFor(in.PestName)
		if !ok {
			s.writeError(w, http.StatusUnprocessableEntity, errs.ErrCodeUnknownPestLabel,
				fmt.Sprintf("no recommendation on record for pest %q", in.PestName))
			return
		}
		in.Recommendation = rec
	}

	report, err := s.store.CreatePestReport(r.Context(), &in)
	if err != nil {
		s.logger.Error("pest report insert failed", map[string]interface{}{"error": err.Error()})
		s.writeError(w, http.StatusInternalServerError, errs.ErrCodeQueryExecutionFailed, "failed to record pest report")
		return
	}

	metrics.PestReportsRecorded.WithLabelValues(report.PestName).Inc()

	if s.searcher != nil {
		if err := s.searcher.IndexReport(r.Context(), report); err != nil {
			s.logger.Warn("pest report indexing failed", map[string]interface{}{
				"reportId": report.ID,
				"error":    err.Error(),
			})
		}
	}

	if s.alerts != nil {
		if err := s.alerts.NotifyReport(r.Context(), report); err != nil {
			s.logger.Warn("pest alert delivery failed", map[string]interface{}{
				"reportId": report.ID,
				"error":    err.Error(),
			})
		}
	}

	s.writeJSON(w, http.StatusCreated, report)
}

// handleRecentReports serves GET /reports/recent/.
func (s *Server) handleRecentReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.store.RecentPestReports(r.Context(), s.cfg.RecentReports)
	if err != nil {
		s.logger.Error("recent reports fetch failed", map[string]interface{}{"error": err.Error()})
		s.writeError(w, http.StatusInternalServerError, errs.ErrCodeQueryExecutionFailed, "failed to fetch pest reports")
		return
	}
	if reports == nil {
		reports = []models.PestReport{}
	}
	s.writeJSON(w, http.StatusOK, reports)
}

// handleSearchReports serves GET /reports/search/?q=...&size=...
func (s *Server) handleSearchReports(w http.ResponseWriter, r *http.Request) {
	if s.searcher == nil {
		s.writeError(w, http.StatusServiceUnavailable, errs.ErrCodeSearchQueryFailed, "search is not configured")
		return
	}

	q := r.URL.Query().Get("q")
	if q == "" {
		s.writeError(w, http.StatusBadRequest, errs.ErrCodeSearchQueryFailed, "missing query parameter q")
		return
	}

	size := s.cfg.RecentReports
	if raw := r.URL.Query().Get("size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			size = n
		}
	}

	reports, err := s.searcher.SearchReports(r.Context(), q, size)
	if err != nil {
		s.logger.Error("report search failed", map[string]interface{}{"error": err.Error()})
		s.writeError(w, http.StatusInternalServerError, errs.ErrCodeSearchQueryFailed, "search failed")
		return
	}
	s.writeJSON(w, http.StatusOK, reports)
}
