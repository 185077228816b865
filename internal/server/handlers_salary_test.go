package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shahramhal/ai-career-coach/internal/types"
)

func newBareServer() *Server {
	return &Server{
		logger:    zap.NewNop(),
		validator: validator.New(),
	}
}

func TestHandlePredictSalary(t *testing.T) {
	s := newBareServer()

	w := httptest.NewRecorder()
	body := `{"skills":["go","postgresql"],"experience_years":5,"desired_role":"Senior Engineer"}`
	s.handlePredictSalary(w, jsonRequest(http.MethodPost, "/salary/predict", body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.SalaryPredictionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// 50000 + 2*1000 + 5*1500 = 59500, senior multiplier 1.15
	assert.Equal(t, 68425, resp.PredictedSalary)
}

func TestHandlePredictSalary_InvalidBody(t *testing.T) {
	s := newBareServer()

	w := httptest.NewRecorder()
	s.handlePredictSalary(w, jsonRequest(http.MethodPost, "/salary/predict", "{broken"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlePredictSalary_NegativeYears(t *testing.T) {
	s := newBareServer()

	w := httptest.NewRecorder()
	body := `{"skills":[],"experience_years":-1}`
	s.handlePredictSalary(w, jsonRequest(http.MethodPost, "/salary/predict", body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
