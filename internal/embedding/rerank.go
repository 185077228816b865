package embedding

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/shahramhal/ai-career-coach/internal/types"
)

// Blend weights for the reranked score. Keyword overlap stays dominant; the
// embedding similarity adjusts ordering among lexically similar postings.
const (
	keywordWeight   = 0.6
	embeddingWeight = 0.4
)

// maxConcurrentEmbeds bounds parallel embedding API calls during a rerank.
const maxConcurrentEmbeds = 4

// Rerank blends each match's keyword score with the cosine similarity between
// the CV text and the posting text, then re-sorts. jobTexts must be indexed
// like matches. The input slice is modified in place. Any embedding failure
// aborts the rerank; callers fall back to the keyword ordering.
func Rerank(ctx context.Context, embedder Embedder, cvText string, matches []types.JobMatch, jobTexts []string) error {
	if len(matches) == 0 {
		return nil
	}

	cvVec, err := embedder.Embed(ctx, cvText)
	if err != nil {
		return err
	}

	similarities := make([]float64, len(matches))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentEmbeds)
	for i := range matches {
		g.Go(func() error {
			vec, err := embedder.Embed(gCtx, jobTexts[i])
			if err != nil {
				return err
			}
			sim := CosineSimilarity(cvVec, vec)
			mu.Lock()
			similarities[i] = sim
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range matches {
		// Similarity is mapped from [-1,1] to [0,100] before blending.
		simScore := (similarities[i] + 1) / 2 * 100
		blended := keywordWeight*matches[i].Score + embeddingWeight*simScore
		matches[i].Score = float64(int(blended*10+0.5)) / 10
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Title < matches[j].Title
	})
	return nil
}
