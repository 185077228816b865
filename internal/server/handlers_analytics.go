package server

import (
	"net/http"

	"github.com/shahramhal/ai-career-coach/internal/server/middleware"
)

// handleAnalyticsSummary returns per-event-type counts for the
// authenticated user.
func (s *Server) handleAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	counts, err := s.db.SummarizeEvents(r.Context(), userID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"events": counts})
}
