package ats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahramhal/ai-career-coach/internal/types"
)

func fullCV() *types.ParsedCV {
	return &types.ParsedCV{
		Contact: types.Contact{
			Name:  "John Doe",
			Email: "john@example.com",
			Phone: "+44 7911 123456",
			Links: []string{"linkedin.com/in/johndoe"},
		},
		Summary: "Backend engineer with eight years of experience.",
		Skills:  []string{"Go", "PostgreSQL", "Docker", "Kubernetes", "AWS", "Redis", "Kafka", "gRPC"},
		Experience: []types.ExperienceEntry{
			{Title: "Senior Engineer", Company: "Acme", Dates: "2020 - 2023", Bullets: []string{"Built APIs serving 5M requests a day"}},
			{Title: "Engineer", Company: "Widgets", Dates: "2017 - 2020", Bullets: []string{"Reduced billing failures by 30%"}},
		},
		Education: []types.EducationEntry{
			{School: "University of London", Degree: "BSc Computer Science", Dates: "2014 - 2017"},
		},
		WordCount: 400,
	}
}

func TestScoreFullCV(t *testing.T) {
	report := Score(fullCV())

	assert.Equal(t, 100, report.OverallScore)
	require.Len(t, report.Findings, 6)
	for _, finding := range report.Findings {
		assert.Equal(t, finding.MaxScore, finding.Score, "section %s", finding.Section)
		assert.Empty(t, finding.Suggestion, "section %s", finding.Section)
	}
}

func TestScoreEmptyCV(t *testing.T) {
	report := Score(&types.ParsedCV{})

	assert.Equal(t, 0, report.OverallScore)
	for _, finding := range report.Findings {
		assert.Zero(t, finding.Score, "section %s", finding.Section)
		assert.NotEmpty(t, finding.Feedback, "section %s", finding.Section)
	}
}

func TestScoreDeterministic(t *testing.T) {
	a := Score(fullCV())
	b := Score(fullCV())
	assert.Equal(t, a, b)
}

func TestScoreContact(t *testing.T) {
	tests := []struct {
		name     string
		contact  types.Contact
		expected int
	}{
		{name: "empty", contact: types.Contact{}, expected: 0},
		{name: "email only", contact: types.Contact{Email: "a@b.com"}, expected: 10},
		{name: "email and name", contact: types.Contact{Name: "A", Email: "a@b.com"}, expected: 15},
		{
			name:     "everything",
			contact:  types.Contact{Name: "A", Email: "a@b.com", Phone: "123456789", Links: []string{"github.com/a"}},
			expected: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finding := scoreContact(tt.contact)
			assert.Equal(t, tt.expected, finding.Score)
			assert.Equal(t, maxContactScore, finding.MaxScore)
		})
	}
}

func TestScoreSkillsPartialCredit(t *testing.T) {
	finding := scoreSkills([]string{"Go", "SQL", "Docker"})
	assert.Equal(t, 13, finding.Score)
	assert.NotEmpty(t, finding.Suggestion)

	finding = scoreSkills([]string{"a", "b", "c", "d", "e", "f", "g", "h"})
	assert.Equal(t, maxSkillsScore, finding.Score)
}

func TestScoreExperiencePartial(t *testing.T) {
	entries := []types.ExperienceEntry{
		{Title: "Engineer", Dates: "2020 - 2023", Bullets: []string{"Built APIs"}},
		{Title: "Intern"},
	}
	// 8 presence + 4 partial dates + 4 partial bullets + 3 verb-led bullets.
	finding := scoreExperience(entries)
	assert.Equal(t, 19, finding.Score)
	assert.Contains(t, finding.Feedback, "missing")
}

func TestScoreExperienceBulletQuality(t *testing.T) {
	vague := []types.ExperienceEntry{
		{Title: "Engineer", Dates: "2020 - 2023", Bullets: []string{
			"Responsible for various backend things",
			"Involved in team initiatives",
		}},
	}
	strong := []types.ExperienceEntry{
		{Title: "Engineer", Dates: "2020 - 2023", Bullets: []string{
			"Reduced p99 latency by 40%",
			"Led migration of 12 services to Kubernetes",
		}},
	}

	vagueFinding := scoreExperience(vague)
	strongFinding := scoreExperience(strong)

	assert.Equal(t, 24, vagueFinding.Score, "vague bullets forfeit the quality points")
	assert.Equal(t, maxExperienceScore, strongFinding.Score)
	assert.Greater(t, strongFinding.Score, vagueFinding.Score)
	assert.NotEmpty(t, vagueFinding.Suggestion)
	assert.Empty(t, strongFinding.Suggestion)
}

func TestScoreExperienceQuantifiedOnly(t *testing.T) {
	entries := []types.ExperienceEntry{
		{Title: "Engineer", Dates: "2020 - 2023", Bullets: []string{
			"Worked on a system handling 2M events",
		}},
	}
	// Quantified but not verb-led: only one of the two quality points.
	finding := scoreExperience(entries)
	assert.Equal(t, 27, finding.Score)
	assert.Contains(t, finding.Suggestion, "action verb")
}

func TestStartsWithActionVerb(t *testing.T) {
	assert.True(t, startsWithActionVerb("Built a CI pipeline"))
	assert.True(t, startsWithActionVerb("- led incident response"))
	assert.True(t, startsWithActionVerb("• Reduced costs"))
	assert.False(t, startsWithActionVerb("Responsible for deployments"))
	assert.False(t, startsWithActionVerb(""))
}

func TestScoreLength(t *testing.T) {
	assert.Zero(t, scoreLength(50).Score)
	assert.Equal(t, maxLengthScore, scoreLength(500).Score)
	assert.Zero(t, scoreLength(5000).Score)
}

func TestWeightsSumToHundred(t *testing.T) {
	total := maxContactScore + maxSummaryScore + maxSkillsScore +
		maxExperienceScore + maxEducationScore + maxLengthScore
	assert.Equal(t, 100, total)
}
