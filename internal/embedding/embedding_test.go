package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahramhal/ai-career-coach/internal/types"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{name: "identical", a: []float32{1, 0}, b: []float32{1, 0}, expected: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, expected: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, expected: -1},
		{name: "empty", a: nil, b: nil, expected: 0},
		{name: "mismatched lengths", a: []float32{1}, b: []float32{1, 0}, expected: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

// fakeEmbedder returns canned vectors keyed by input text.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vec, ok := f.vectors[text]
	if !ok {
		return nil, errors.New("no vector for text")
	}
	return vec, nil
}

func (f *fakeEmbedder) Close() error { return nil }

func TestRerankReordersBySimilarity(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"cv":        {1, 0},
		"aligned":   {1, 0},
		"unrelated": {0, 1},
	}}

	matches := []types.JobMatch{
		{Title: "Unrelated", Score: 50},
		{Title: "Aligned", Score: 50},
	}
	jobTexts := []string{"unrelated", "aligned"}

	err := Rerank(context.Background(), embedder, "cv", matches, jobTexts)
	require.NoError(t, err)

	assert.Equal(t, "Aligned", matches[0].Title)
	// keyword 50 * 0.6 + similarity 100 * 0.4
	assert.InDelta(t, 70.0, matches[0].Score, 0.001)
	// keyword 50 * 0.6 + similarity 50 * 0.4 (orthogonal maps to midpoint)
	assert.InDelta(t, 50.0, matches[1].Score, 0.001)
}

func TestRerankEmbedderFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("quota exceeded")}
	matches := []types.JobMatch{{Title: "A", Score: 50}}

	err := Rerank(context.Background(), embedder, "cv", matches, []string{"a"})
	assert.Error(t, err)
}

func TestRerankEmptyMatches(t *testing.T) {
	embedder := &fakeEmbedder{}
	assert.NoError(t, Rerank(context.Background(), embedder, "cv", nil, nil))
}
