// Package salary estimates compensation from profile signals. The base
// formula comes from the platform's original ML service placeholder; the
// experience and seniority modifiers are bounded so the output stays in a
// plausible range.
package salary

import (
	"math"
	"strings"

	"github.com/shahramhal/ai-career-coach/internal/types"
)

const (
	baseSalary    = 50000
	perSkillBonus = 1000
	perYearBonus  = 1500

	// Experience stops adding after this many years.
	maxCountedYears = 20
)

// Role keyword multipliers, applied after the additive terms.
var seniorityMultipliers = []struct {
	keyword    string
	multiplier float64
}{
	{"principal", 1.30},
	{"staff", 1.25},
	{"lead", 1.20},
	{"senior", 1.15},
	{"manager", 1.15},
	{"architect", 1.20},
	{"intern", 0.60},
	{"junior", 0.80},
	{"graduate", 0.80},
}

// Predict returns the estimated annual salary for the given inputs.
func Predict(req types.SalaryPredictionRequest) types.SalaryPredictionResponse {
	years := req.ExperienceYears
	if years < 0 {
		years = 0
	}
	if years > maxCountedYears {
		years = maxCountedYears
	}

	estimate := float64(baseSalary + perSkillBonus*len(req.Skills) + perYearBonus*years)
	estimate *= roleMultiplier(req.DesiredRole)

	return types.SalaryPredictionResponse{PredictedSalary: int(math.Round(estimate))}
}

// roleMultiplier returns the multiplier for the first seniority keyword found
// in the desired role, or 1 when none match.
func roleMultiplier(role string) float64 {
	role = strings.ToLower(role)
	for _, s := range seniorityMultipliers {
		if strings.Contains(role, s.keyword) {
			return s.multiplier
		}
	}
	return 1.0
}
