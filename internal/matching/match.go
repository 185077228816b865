// Package matching scores parsed CVs against job postings using keyword
// overlap. Scoring is lexical and fast enough to run across the whole posting
// table per request; an optional embedding reranker refines the top results.
package matching

import (
	"sort"
	"strings"
	"unicode"

	"github.com/shahramhal/ai-career-coach/internal/db"
	"github.com/shahramhal/ai-career-coach/internal/types"
)

// stopWords filters common English words that add noise to keyword matching.
var stopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "have": true, "will": true, "this": true, "that": true,
	"from": true, "our": true, "your": true, "their": true, "they": true,
	"work": true, "team": true, "role": true, "job": true, "join": true,
	"about": true, "which": true, "what": true, "who": true, "how": true,
	"can": true, "not": true, "but": true, "all": true, "also": true,
	"more": true, "than": true, "into": true, "has": true, "its": true,
	"was": true, "were": true, "been": true, "each": true, "new": true,
	"use": true, "using": true, "used": true, "well": true, "high": true,
	"good": true, "able": true, "get": true, "set": true, "such": true,
}

// maxMissingSkills caps the skills-gap list in each match result.
const maxMissingSkills = 20

// CVKeywords tokenizes a parsed CV into a keyword set. The skills list is
// included verbatim alongside the raw text so normalized skill names survive
// tokenization. Call once per CV and reuse for batch job scoring.
func CVKeywords(cv *types.ParsedCV) map[string]bool {
	kw := ExtractKeywords(cv.RawText)
	for _, skill := range cv.Skills {
		for k := range ExtractKeywords(skill) {
			kw[k] = true
		}
	}
	return kw
}

// ExtractKeywords tokenizes text into lowercase keywords (>= 3 chars),
// skipping stop words. Preserves tech suffixes like "c++", "c#", "node.js"
// by treating + # . as word chars.
func ExtractKeywords(text string) map[string]bool {
	kw := make(map[string]bool)
	var word strings.Builder
	flush := func() {
		w := word.String()
		word.Reset()
		w = strings.TrimRight(w, ".") // drop trailing dots
		if len([]rune(w)) >= 3 && !stopWords[w] {
			kw[w] = true
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return kw
}

// JobText flattens the searchable fields of a posting into one string for
// keyword extraction.
func JobText(job *db.JobPosting) string {
	parts := []string{job.Title, job.Description}
	parts = append(parts, job.Requirements...)
	parts = append(parts, job.Skills...)
	return strings.Join(parts, "\n")
}

// ScoreJob computes a Jaccard-based keyword overlap score (0-100) between
// pre-extracted CV keywords and job text.
//
// Returns:
//   - score: 0-100 (Jaccard similarity x 100, rounded to 1 decimal)
//   - matching: keywords present in both CV and job
//   - missing: job keywords absent from the CV (skills gap, top 20 max)
func ScoreJob(cvKW map[string]bool, jobText string) (score float64, matching, missing []string) {
	jobKW := ExtractKeywords(jobText)

	inter := 0
	for kw := range cvKW {
		if jobKW[kw] {
			inter++
			matching = append(matching, kw)
		}
	}
	for kw := range jobKW {
		if !cvKW[kw] {
			missing = append(missing, kw)
		}
	}

	union := len(cvKW) + len(jobKW) - inter
	if union > 0 {
		raw := float64(inter) / float64(union) * 100
		score = float64(int(raw*10+0.5)) / 10 // round to 1 decimal
	}

	sort.Strings(matching)
	sort.Strings(missing)
	if len(missing) > maxMissingSkills {
		missing = missing[:maxMissingSkills]
	}
	return score, matching, missing
}

// RankJobs scores every posting against the CV and returns matches sorted by
// score descending, ties broken by title for stable output. Expired postings
// are skipped. limit <= 0 means no limit.
func RankJobs(cv *types.ParsedCV, jobs []*db.JobPosting, limit int) []types.JobMatch {
	cvKW := CVKeywords(cv)

	matches := make([]types.JobMatch, 0, len(jobs))
	for _, job := range jobs {
		if job.IsExpired() {
			continue
		}
		score, matching, missing := ScoreJob(cvKW, JobText(job))
		matches = append(matches, types.JobMatch{
			JobID:          job.ID,
			Title:          job.Title,
			Company:        job.Company,
			Score:          score,
			MatchingSkills: matching,
			MissingSkills:  missing,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Title < matches[j].Title
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
