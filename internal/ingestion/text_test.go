package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "normalizes CRLF line endings",
			input:    "line one\r\nline two\rline three",
			expected: "line one\nline two\nline three",
		},
		{
			name:     "collapses internal whitespace",
			input:    "Senior   Software\t\tEngineer",
			expected: "Senior Software Engineer",
		},
		{
			name:     "reduces blank line runs to one",
			input:    "Skills\n\n\n\n\nGo, SQL",
			expected: "Skills\n\nGo, SQL",
		},
		{
			name:     "trims leading and trailing blank lines",
			input:    "\n\n Experience \n\n",
			expected: "Experience",
		},
		{
			name:     "preserves bullet markers and indentation",
			input:    "  - Built   APIs in Go\n  * Mentored   juniors",
			expected: "  - Built APIs in Go\n  * Mentored juniors",
		},
		{
			name:     "preserves unicode bullet marker",
			input:    "• Led   migration to Postgres",
			expected: "• Led migration to Postgres",
		},
		{
			name:     "strips trailing whitespace per line",
			input:    "Summary   \nA backend engineer.\t",
			expected: "Summary\nA backend engineer.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}

func TestIsBulletLine(t *testing.T) {
	assert.True(t, isBulletLine("- item"))
	assert.True(t, isBulletLine("  * item"))
	assert.True(t, isBulletLine("\t• item"))
	assert.False(t, isBulletLine("-item"))
	assert.False(t, isBulletLine("plain text"))
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "empty", input: "", expected: 0},
		{name: "single word", input: "Go", expected: 1},
		{name: "multiple lines", input: "Go SQL\nDocker Kubernetes", expected: 4},
		{name: "extra whitespace", input: "  a   b  ", expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, WordCount(tt.input))
		})
	}
}
