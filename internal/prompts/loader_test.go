package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	prompt, err := Get("coaching.json", "cv_advice")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.CV}}")
	assert.Contains(t, prompt, "{{.Report}}")
}

func TestGet_MissingKey(t *testing.T) {
	_, err := Get("coaching.json", "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestGet_MissingFile(t *testing.T) {
	_, err := Get("missing.json", "cv_advice")
	require.Error(t, err)
}

func TestFormat(t *testing.T) {
	template := "Review this CV:\n{{.CV}}\nReport: {{.Report}}"
	result := Format(template, map[string]string{
		"CV":     `{"skills":["Go"]}`,
		"Report": `{"overall_score":70}`,
	})

	assert.False(t, strings.Contains(result, "{{."))
	assert.Contains(t, result, `{"skills":["Go"]}`)
	assert.Contains(t, result, `{"overall_score":70}`)
}

func TestFormat_UnknownPlaceholderLeftAlone(t *testing.T) {
	result := Format("hello {{.Name}}", map[string]string{"Other": "x"})
	assert.Equal(t, "hello {{.Name}}", result)
}
