package server

import (
	"net/http"
	"time"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady probes the cache when one is configured; the store is probed
// implicitly by every data route, so readiness only covers the fast path.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.cache != nil {
		if err := s.cache.Ping(r.Context()); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "not ready",
				"reason": "cache unreachable",
			})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
