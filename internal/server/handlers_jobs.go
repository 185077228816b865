package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shahramhal/ai-career-coach/internal/db"
	"github.com/shahramhal/ai-career-coach/internal/fetch"
	"github.com/shahramhal/ai-career-coach/internal/logger"
	"github.com/shahramhal/ai-career-coach/internal/server/middleware"
	"github.com/shahramhal/ai-career-coach/internal/types"
)

// ingestTTL is how long an ingested posting stays fresh before a re-ingest
// refetches the page.
const ingestTTL = 7 * 24 * time.Hour

// handleListJobPostings returns postings with optional filters from the
// query string.
func (s *Server) handleListJobPostings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := db.JobPostingFilters{
		Company:        q.Get("company"),
		Location:       q.Get("location"),
		EmploymentType: q.Get("employment_type"),
		RemoteOnly:     q.Get("remote") == "true",
		Query:          q.Get("q"),
	}
	if v := q.Get("min_salary"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.errorResponse(w, http.StatusBadRequest, "invalid min_salary")
			return
		}
		filters.MinSalary = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			s.errorResponse(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filters.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.errorResponse(w, http.StatusBadRequest, "invalid offset")
			return
		}
		filters.Offset = n
	}

	jobs, err := s.db.ListJobPostings(r.Context(), filters)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"jobs": jobs, "count": len(jobs)})
}

// handleGetJobPosting returns a single posting by ID.
func (s *Server) handleGetJobPosting(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid job id")
		return
	}

	job, err := s.db.GetJobPosting(r.Context(), id)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if job == nil {
		s.serviceError(w, &ErrNotFound{Resource: "job posting", ID: id.String()})
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleCreateJobPosting creates a manually entered posting.
func (s *Server) handleCreateJobPosting(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req types.JobPostingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	job, err := s.db.CreateJobPosting(r.Context(), jobPostingInput(&req))
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.recordEvent(r.Context(), userID, "job_created", map[string]string{"job_id": job.ID.String()})
	s.jsonResponse(w, http.StatusCreated, job)
}

// handleUpdateJobPosting replaces the editable fields of a posting.
func (s *Server) handleUpdateJobPosting(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid job id")
		return
	}

	var req types.JobPostingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	job, err := s.db.UpdateJobPosting(r.Context(), id, jobPostingInput(&req))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if job == nil {
		s.serviceError(w, &ErrNotFound{Resource: "job posting", ID: id.String()})
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleDeleteJobPosting removes a posting.
func (s *Server) handleDeleteJobPosting(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid job id")
		return
	}

	if err := s.db.DeleteJobPosting(r.Context(), id); err != nil {
		s.serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleIngestJobPosting fetches a posting page and upserts it keyed by URL.
// A posting whose content hash is unchanged and still within its freshness
// window is returned as-is without refetching.
func (s *Server) handleIngestJobPosting(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req types.IngestJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	existing, err := s.db.GetJobPostingByURL(r.Context(), req.URL)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if existing != nil && !existing.IsExpired() {
		s.jsonResponse(w, http.StatusOK, map[string]any{"job": existing, "refreshed": false})
		return
	}

	posting, err := fetch.FetchPosting(r.Context(), req.URL, req.UseBrowser, s.logger)
	if err != nil {
		s.logger.Warn("job ingestion failed", zap.String("url", req.URL), zap.Error(err))
		s.errorResponse(w, http.StatusBadGateway, "failed to fetch job posting")
		return
	}

	if existing != nil && existing.ContentHash == posting.ContentHash {
		// Page unchanged since last ingest; just extend the freshness window.
		refreshed, err := s.db.UpsertJobPostingByURL(r.Context(), ingestInput(existing, posting, req.Company))
		if err != nil {
			s.serviceError(w, err)
			return
		}
		s.jsonResponse(w, http.StatusOK, map[string]any{"job": refreshed, "refreshed": false})
		return
	}

	job, err := s.db.UpsertJobPostingByURL(r.Context(), ingestInput(existing, posting, req.Company))
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.logger.Info("job posting ingested",
		zap.String("job_id", job.ID.String()),
		zap.String("url", req.URL),
		zap.String("title", logger.Truncate(posting.Title, 80)))
	s.recordEvent(r.Context(), userID, "job_ingested", map[string]string{
		"job_id": job.ID.String(),
		"url":    req.URL,
	})
	s.jsonResponse(w, http.StatusCreated, map[string]any{"job": job, "refreshed": true})
}

// jobPostingInput converts the validated request into the db input struct.
func jobPostingInput(req *types.JobPostingRequest) *db.JobPostingInput {
	return &db.JobPostingInput{
		Title:          req.Title,
		Company:        req.Company,
		Location:       req.Location,
		EmploymentType: req.EmploymentType,
		Remote:         req.Remote,
		Description:    req.Description,
		Requirements:   req.Requirements,
		Skills:         req.Skills,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
	}
}

// ingestInput builds the upsert input for a fetched posting, keeping manual
// fields from an existing row where the fetch has nothing better.
func ingestInput(existing *db.JobPosting, posting *fetch.Posting, company string) *db.JobPostingInput {
	now := time.Now()
	expires := now.Add(ingestTTL)

	input := &db.JobPostingInput{
		Title:       posting.Title,
		Company:     posting.Company,
		Description: posting.Description,
		SourceURL:   posting.URL,
		ContentHash: posting.ContentHash,
		FetchStatus: "fetched",
		FetchedAt:   &now,
		ExpiresAt:   &expires,
	}
	if company != "" {
		input.Company = company
	}
	if existing != nil {
		if input.Title == "" {
			input.Title = existing.Title
		}
		if input.Company == "" {
			input.Company = existing.Company
		}
		input.Location = existing.Location
		input.EmploymentType = existing.EmploymentType
		input.Remote = existing.Remote
		input.Requirements = existing.Requirements
		input.Skills = existing.Skills
		input.SalaryMin = existing.SalaryMin
		input.SalaryMax = existing.SalaryMax
	}
	if input.Title == "" {
		input.Title = "Untitled posting"
	}
	if input.Company == "" {
		input.Company = "Unknown"
	}
	return input
}
