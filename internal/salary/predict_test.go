package salary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shahramhal/ai-career-coach/internal/types"
)

func TestPredict(t *testing.T) {
	tests := []struct {
		name     string
		req      types.SalaryPredictionRequest
		expected int
	}{
		{
			name:     "no inputs",
			req:      types.SalaryPredictionRequest{},
			expected: 50000,
		},
		{
			name:     "skills only",
			req:      types.SalaryPredictionRequest{Skills: []string{"Go", "SQL", "Docker"}},
			expected: 53000,
		},
		{
			name:     "experience only",
			req:      types.SalaryPredictionRequest{ExperienceYears: 4},
			expected: 56000,
		},
		{
			name: "skills and experience",
			req: types.SalaryPredictionRequest{
				Skills:          []string{"Go", "SQL"},
				ExperienceYears: 2,
			},
			expected: 55000,
		},
		{
			name: "senior role multiplier",
			req: types.SalaryPredictionRequest{
				Skills:      []string{"Go", "SQL"},
				DesiredRole: "Senior Backend Engineer",
			},
			expected: 59800,
		},
		{
			name: "junior role multiplier",
			req: types.SalaryPredictionRequest{
				Skills:      []string{"Go", "SQL"},
				DesiredRole: "Junior Developer",
			},
			expected: 41600,
		},
		{
			name:     "experience capped",
			req:      types.SalaryPredictionRequest{ExperienceYears: 45},
			expected: 80000,
		},
		{
			name:     "negative experience clamped",
			req:      types.SalaryPredictionRequest{ExperienceYears: -5},
			expected: 50000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := Predict(tt.req)
			assert.Equal(t, tt.expected, resp.PredictedSalary)
		})
	}
}

func TestRoleMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, roleMultiplier(""))
	assert.Equal(t, 1.0, roleMultiplier("Backend Engineer"))
	assert.Equal(t, 1.15, roleMultiplier("SENIOR engineer"))
	assert.Equal(t, 1.30, roleMultiplier("Principal Engineer"))
	assert.Equal(t, 0.6, roleMultiplier("Software Intern"))
}

func TestPredictDeterministic(t *testing.T) {
	req := types.SalaryPredictionRequest{
		Skills:          []string{"Go", "PostgreSQL", "Docker"},
		ExperienceYears: 6,
		DesiredRole:     "Lead Engineer",
	}
	assert.Equal(t, Predict(req), Predict(req))
}
