package matching

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahramhal/ai-career-coach/internal/db"
	"github.com/shahramhal/ai-career-coach/internal/types"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]bool
	}{
		{
			name:     "empty",
			input:    "",
			expected: map[string]bool{},
		},
		{
			name:     "lowercases and drops short words",
			input:    "Go is Fun",
			expected: map[string]bool{"fun": true},
		},
		{
			name:     "skips stop words",
			input:    "work with the team using docker",
			expected: map[string]bool{"docker": true},
		},
		{
			name:  "preserves tech suffixes",
			input: "C++ and C# and Node.js",
			expected: map[string]bool{
				"c++": true, "c#": true, "node.js": true,
			},
		},
		{
			name:     "drops trailing dots",
			input:    "experienced in kubernetes.",
			expected: map[string]bool{"experienced": true, "kubernetes": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractKeywords(tt.input))
		})
	}
}

func TestCVKeywordsIncludesSkills(t *testing.T) {
	cv := &types.ParsedCV{
		RawText: "Worked on backend services.",
		Skills:  []string{"PostgreSQL", "Node.js"},
	}
	kw := CVKeywords(cv)

	assert.True(t, kw["postgresql"])
	assert.True(t, kw["node.js"])
	assert.True(t, kw["backend"])
}

func TestScoreJobIdentical(t *testing.T) {
	text := "golang postgresql docker kubernetes"
	score, matching, missing := ScoreJob(ExtractKeywords(text), text)

	assert.Equal(t, 100.0, score)
	assert.Equal(t, []string{"docker", "golang", "kubernetes", "postgresql"}, matching)
	assert.Empty(t, missing)
}

func TestScoreJobDisjoint(t *testing.T) {
	score, matching, missing := ScoreJob(ExtractKeywords("golang docker"), "haskell prolog")

	assert.Zero(t, score)
	assert.Empty(t, matching)
	assert.Equal(t, []string{"haskell", "prolog"}, missing)
}

func TestScoreJobPartialOverlap(t *testing.T) {
	// intersection {golang}, union {golang, docker, haskell} -> 33.3
	score, matching, missing := ScoreJob(ExtractKeywords("golang docker"), "golang haskell")

	assert.InDelta(t, 33.3, score, 0.001)
	assert.Equal(t, []string{"golang"}, matching)
	assert.Equal(t, []string{"haskell"}, missing)
}

func TestScoreJobMissingCapped(t *testing.T) {
	jobWords := ""
	for _, w := range []string{
		"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf",
		"hotel", "india", "juliett", "kilo", "lima", "mike", "november",
		"oscar", "papa", "quebec", "romeo", "sierra", "tango", "uniform",
		"victor", "whiskey",
	} {
		jobWords += w + " "
	}

	_, _, missing := ScoreJob(ExtractKeywords("golang"), jobWords)
	assert.Len(t, missing, maxMissingSkills)
}

func TestScoreJobEmptyInputs(t *testing.T) {
	score, matching, missing := ScoreJob(map[string]bool{}, "")
	assert.Zero(t, score)
	assert.Empty(t, matching)
	assert.Empty(t, missing)
}

func newJob(title, description string) *db.JobPosting {
	return &db.JobPosting{
		ID:          uuid.New(),
		Title:       title,
		Company:     "Acme",
		Description: description,
	}
}

func TestRankJobsOrdering(t *testing.T) {
	cv := &types.ParsedCV{
		RawText: "golang postgresql docker kubernetes redis",
		Skills:  []string{"Go"},
	}

	strong := newJob("Backend Engineer", "golang postgresql docker kubernetes redis")
	weak := newJob("Frontend Engineer", "javascript react css golang")
	unrelated := newJob("Accountant", "ledgers payroll auditing")

	matches := RankJobs(cv, []*db.JobPosting{weak, unrelated, strong}, 0)
	require.Len(t, matches, 3)

	assert.Equal(t, strong.ID, matches[0].JobID)
	assert.Equal(t, weak.ID, matches[1].JobID)
	assert.Equal(t, unrelated.ID, matches[2].JobID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestRankJobsSkipsExpired(t *testing.T) {
	cv := &types.ParsedCV{RawText: "golang"}
	past := time.Now().Add(-time.Hour)

	expired := newJob("Old Posting", "golang")
	expired.ExpiresAt = &past
	live := newJob("Live Posting", "golang")

	matches := RankJobs(cv, []*db.JobPosting{expired, live}, 0)
	require.Len(t, matches, 1)
	assert.Equal(t, live.ID, matches[0].JobID)
}

func TestRankJobsLimit(t *testing.T) {
	cv := &types.ParsedCV{RawText: "golang"}
	jobs := []*db.JobPosting{
		newJob("A", "golang"),
		newJob("B", "golang"),
		newJob("C", "golang"),
	}

	matches := RankJobs(cv, jobs, 2)
	assert.Len(t, matches, 2)
}

func TestJobText(t *testing.T) {
	job := &db.JobPosting{
		Title:        "Backend Engineer",
		Description:  "Build APIs",
		Requirements: db.StringArray{"5 years of Go"},
		Skills:       db.StringArray{"PostgreSQL"},
	}
	text := JobText(job)

	assert.Contains(t, text, "Backend Engineer")
	assert.Contains(t, text, "Build APIs")
	assert.Contains(t, text, "5 years of Go")
	assert.Contains(t, text, "PostgreSQL")
}
