package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shahramhal/ai-career-coach/internal/db"
	"github.com/shahramhal/ai-career-coach/internal/embedding"
	"github.com/shahramhal/ai-career-coach/internal/matching"
	"github.com/shahramhal/ai-career-coach/internal/salary"
	"github.com/shahramhal/ai-career-coach/internal/types"
)

const (
	defaultMatchLimit = 20
	maxMatchLimit     = 100
	// matchPoolSize caps how many postings one match run scores.
	matchPoolSize = 200
)

// handleListMatches ranks stored postings against a parsed CV. Results are
// cached per CV content hash, so re-running against an unchanged CV is cheap.
func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	cv, ok := s.ownedCV(w, r)
	if !ok {
		return
	}
	if cv.Status != db.CVStatusParsed {
		s.serviceError(w, &ErrCVNotParsed{Status: cv.Status})
		return
	}

	limit := defaultMatchLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxMatchLimit {
			s.errorResponse(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	if cached, err := s.cache.GetMatches(r.Context(), cv.ID.String(), cv.ContentHash); err == nil && cached != nil {
		if len(cached) > limit {
			cached = cached[:limit]
		}
		s.jsonResponse(w, http.StatusOK, map[string]any{"matches": cached, "count": len(cached), "cached": true})
		return
	}

	var parsed types.ParsedCV
	if err := json.Unmarshal(cv.Parsed, &parsed); err != nil {
		s.serviceError(w, err)
		return
	}

	jobs, err := s.db.ListJobPostings(r.Context(), db.JobPostingFilters{Limit: matchPoolSize})
	if err != nil {
		s.serviceError(w, err)
		return
	}

	pool := make([]*db.JobPosting, len(jobs))
	byID := make(map[uuid.UUID]*db.JobPosting, len(jobs))
	for i := range jobs {
		pool[i] = &jobs[i]
		byID[jobs[i].ID] = &jobs[i]
	}

	// Rank the full window and cache it; the limit is applied on the way out
	// so one cached run serves any page size.
	matches := matching.RankJobs(&parsed, pool, maxMatchLimit)

	if s.embedder != nil && len(matches) > 0 {
		jobTexts := make([]string, len(matches))
		for i, m := range matches {
			jobTexts[i] = matching.JobText(byID[m.JobID])
		}
		if err := embedding.Rerank(r.Context(), s.embedder, parsed.RawText, matches, jobTexts); err != nil {
			// Keep the keyword ordering when the embedding service is down.
			s.logger.Warn("embedding rerank failed", zap.Error(err))
		}
	}

	experienceYears := s.profileExperienceYears(r, cv.UserID)
	for i := range matches {
		job := byID[matches[i].JobID]
		matches[i].PredictedSalary = salary.Predict(types.SalaryPredictionRequest{
			Skills:          job.Skills,
			ExperienceYears: experienceYears,
			DesiredRole:     job.Title,
		}).PredictedSalary
	}

	if err := s.cache.SetMatches(r.Context(), cv.ID.String(), cv.ContentHash, matches); err != nil {
		s.logger.Warn("failed to cache matches", zap.Error(err))
	}
	s.recordEvent(r.Context(), cv.UserID, "match_run", map[string]any{
		"cv_id": cv.ID.String(),
		"count": len(matches),
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"matches": matches, "count": len(matches), "cached": false})
}

// handleMatchOne scores a single posting against a parsed CV.
func (s *Server) handleMatchOne(w http.ResponseWriter, r *http.Request) {
	cv, ok := s.ownedCV(w, r)
	if !ok {
		return
	}
	if cv.Status != db.CVStatusParsed {
		s.serviceError(w, &ErrCVNotParsed{Status: cv.Status})
		return
	}

	jobID, err := uuid.Parse(r.PathValue("job_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid job id")
		return
	}
	job, err := s.db.GetJobPosting(r.Context(), jobID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if job == nil {
		s.serviceError(w, &ErrNotFound{Resource: "job posting", ID: jobID.String()})
		return
	}

	var parsed types.ParsedCV
	if err := json.Unmarshal(cv.Parsed, &parsed); err != nil {
		s.serviceError(w, err)
		return
	}

	score, matchingSkills, missing := matching.ScoreJob(matching.CVKeywords(&parsed), matching.JobText(job))
	match := types.JobMatch{
		JobID:          job.ID,
		Title:          job.Title,
		Company:        job.Company,
		Score:          score,
		MatchingSkills: matchingSkills,
		MissingSkills:  missing,
	}
	match.PredictedSalary = salary.Predict(types.SalaryPredictionRequest{
		Skills:          job.Skills,
		ExperienceYears: s.profileExperienceYears(r, cv.UserID),
		DesiredRole:     job.Title,
	}).PredictedSalary

	s.jsonResponse(w, http.StatusOK, &match)
}

// profileExperienceYears reads the user's stated experience for salary
// estimates, defaulting to zero when no profile exists.
func (s *Server) profileExperienceYears(r *http.Request, userID uuid.UUID) int {
	profile, err := s.db.GetProfile(r.Context(), userID)
	if err != nil || profile == nil {
		return 0
	}
	return profile.ExperienceYears
}
