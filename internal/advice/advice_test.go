package advice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahramhal/ai-career-coach/internal/types"
)

func testCV() *types.ParsedCV {
	return &types.ParsedCV{
		Contact:   types.Contact{Name: "Jane Smith", Email: "jane@example.com"},
		Skills:    []string{"Go", "PostgreSQL"},
		RawText:   "Jane Smith\njane@example.com\nGo, PostgreSQL",
		WordCount: 6,
	}
}

func testReport() *types.ATSReport {
	return &types.ATSReport{
		OverallScore: 45,
		Findings: []types.ATSFinding{
			{Section: "skills", Score: 10, MaxScore: 25, Feedback: "few skills listed"},
		},
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt(testCV(), testReport())
	require.NoError(t, err)

	assert.Contains(t, prompt, "jane@example.com")
	assert.Contains(t, prompt, `"overall_score":45`)
	assert.NotContains(t, prompt, "{{.CV}}")
	assert.NotContains(t, prompt, "{{.Report}}")
	// Raw text is stripped to keep the prompt compact.
	assert.NotContains(t, prompt, `"raw_text"`)
}

func TestParseAdvice(t *testing.T) {
	text := `{"summary":"Solid foundation.","strengths":["clear contact info"],"improvements":["add a summary section"],"suggested_skills":["Docker"]}`

	advice, err := ParseAdvice(text)
	require.NoError(t, err)
	assert.Equal(t, "Solid foundation.", advice.Summary)
	assert.Equal(t, []string{"clear contact info"}, advice.Strengths)
	assert.Equal(t, []string{"Docker"}, advice.SuggestedSkills)
}

func TestParseAdvice_CodeFence(t *testing.T) {
	text := "```json\n{\"summary\":\"Good CV.\",\"strengths\":[],\"improvements\":[],\"suggested_skills\":[]}\n```"

	advice, err := ParseAdvice(text)
	require.NoError(t, err)
	assert.Equal(t, "Good CV.", advice.Summary)
}

func TestParseAdvice_Invalid(t *testing.T) {
	_, err := ParseAdvice("not json at all")
	require.Error(t, err)
}

func TestParseAdvice_MissingSummary(t *testing.T) {
	_, err := ParseAdvice(`{"strengths":["x"]}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summary")
}
