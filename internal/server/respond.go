package server

import (
	"encoding/json"
	"net/http"

	errs "smartfarm-backend/internal/common/errors"
	"smartfarm-backend/internal/common/validation"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code errs.ErrorCode, message string) {
	s.writeJSON(w, status, errs.New(code, message))
}

func (s *Server) writeValidationError(w http.ResponseWriter, result *validation.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":   errs.ErrCodePayloadValidationFailed,
		"errors": result.Errors,
	})
}
