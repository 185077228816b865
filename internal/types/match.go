package types

import "github.com/google/uuid"

// JobMatch is one scored posting in a match response.
type JobMatch struct {
	JobID           uuid.UUID `json:"job_id"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Score           float64   `json:"score"` // 0-100
	MatchingSkills  []string  `json:"matching_skills"`
	MissingSkills   []string  `json:"missing_skills"`
	PredictedSalary int       `json:"predicted_salary,omitempty"`
}

// SalaryPredictionRequest mirrors the original ML service's predict-salary input.
type SalaryPredictionRequest struct {
	Skills          []string `json:"skills" validate:"max=200"`
	ExperienceYears int      `json:"experience_years" validate:"min=0,max=60"`
	DesiredRole     string   `json:"desired_role" validate:"max=120"`
}

// SalaryPredictionResponse carries the heuristic salary estimate.
type SalaryPredictionResponse struct {
	PredictedSalary int `json:"predicted_salary"`
}
