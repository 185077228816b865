package server

import (
	"encoding/json"
	"net/http"

	"github.com/shahramhal/ai-career-coach/internal/salary"
	"github.com/shahramhal/ai-career-coach/internal/types"
)

// handlePredictSalary returns a heuristic salary estimate for a skill set.
func (s *Server) handlePredictSalary(w http.ResponseWriter, r *http.Request) {
	var req types.SalaryPredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	s.jsonResponse(w, http.StatusOK, salary.Predict(req))
}
