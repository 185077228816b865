package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/shahramhal/ai-career-coach/internal/db"
	"github.com/shahramhal/ai-career-coach/internal/types"
)

// handleCVAdvice generates coaching feedback for a parsed CV. Returns 503
// when no Gemini key is configured.
func (s *Server) handleCVAdvice(w http.ResponseWriter, r *http.Request) {
	if s.coach == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "cv advice is not configured")
		return
	}

	cv, ok := s.ownedCV(w, r)
	if !ok {
		return
	}
	if cv.Status != db.CVStatusParsed {
		s.serviceError(w, &ErrCVNotParsed{Status: cv.Status})
		return
	}

	var parsed types.ParsedCV
	if err := json.Unmarshal(cv.Parsed, &parsed); err != nil {
		s.serviceError(w, err)
		return
	}
	var report types.ATSReport
	if err := json.Unmarshal(cv.ATSReport, &report); err != nil {
		s.serviceError(w, err)
		return
	}

	result, err := s.coach.Advise(r.Context(), &parsed, &report)
	if err != nil {
		s.logger.Warn("cv advice generation failed", zap.String("cv_id", cv.ID.String()), zap.Error(err))
		s.errorResponse(w, http.StatusBadGateway, "failed to generate advice")
		return
	}

	s.recordEvent(r.Context(), cv.UserID, "advice_generated", map[string]string{"cv_id": cv.ID.String()})
	s.jsonResponse(w, http.StatusOK, result)
}
