package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const jobPostingColumns = `id, title, company, location, employment_type, remote, description,
	requirements, skills, salary_min, salary_max, source_url, content_hash,
	fetch_status, fetched_at, expires_at, created_at, updated_at`

func scanJobPosting(row pgx.Row) (*JobPosting, error) {
	var p JobPosting
	err := row.Scan(&p.ID, &p.Title, &p.Company, &p.Location, &p.EmploymentType,
		&p.Remote, &p.Description, &p.Requirements, &p.Skills, &p.SalaryMin,
		&p.SalaryMax, &p.SourceURL, &p.ContentHash, &p.FetchStatus,
		&p.FetchedAt, &p.ExpiresAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan job posting: %w", err)
	}
	return &p, nil
}

// JobPostingInput holds the writable fields of a job posting.
type JobPostingInput struct {
	Title          string
	Company        string
	Location       string
	EmploymentType string
	Remote         bool
	Description    string
	Requirements   []string
	Skills         []string
	SalaryMin      int
	SalaryMax      int
	SourceURL      string
	ContentHash    string
	FetchStatus    string
	FetchedAt      *time.Time
	ExpiresAt      *time.Time
}

// CreateJobPosting inserts a new posting and returns it
func (db *DB) CreateJobPosting(ctx context.Context, input *JobPostingInput) (*JobPosting, error) {
	var sourceURL *string
	if input.SourceURL != "" {
		sourceURL = &input.SourceURL
	}
	row := db.pool.QueryRow(ctx,
		`INSERT INTO job_postings (title, company, location, employment_type, remote, description,
		                           requirements, skills, salary_min, salary_max, source_url,
		                           content_hash, fetch_status, fetched_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING `+jobPostingColumns,
		input.Title, input.Company, input.Location, input.EmploymentType, input.Remote,
		input.Description, StringArray(input.Requirements), StringArray(input.Skills),
		input.SalaryMin, input.SalaryMax, sourceURL, input.ContentHash,
		input.FetchStatus, input.FetchedAt, input.ExpiresAt,
	)
	return scanJobPosting(row)
}

// UpsertJobPostingByURL creates or refreshes an ingested posting keyed by its source URL
func (db *DB) UpsertJobPostingByURL(ctx context.Context, input *JobPostingInput) (*JobPosting, error) {
	if input.SourceURL == "" {
		return nil, fmt.Errorf("source URL is required for upsert")
	}
	row := db.pool.QueryRow(ctx,
		`INSERT INTO job_postings (title, company, location, employment_type, remote, description,
		                           requirements, skills, salary_min, salary_max, source_url,
		                           content_hash, fetch_status, fetched_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 ON CONFLICT (source_url) DO UPDATE SET
		     title = $1, company = $2, location = $3, employment_type = $4, remote = $5,
		     description = $6, requirements = $7, skills = $8, salary_min = $9, salary_max = $10,
		     content_hash = $12, fetch_status = $13, fetched_at = $14, expires_at = $15,
		     updated_at = NOW()
		 RETURNING `+jobPostingColumns,
		input.Title, input.Company, input.Location, input.EmploymentType, input.Remote,
		input.Description, StringArray(input.Requirements), StringArray(input.Skills),
		input.SalaryMin, input.SalaryMax, input.SourceURL, input.ContentHash,
		input.FetchStatus, input.FetchedAt, input.ExpiresAt,
	)
	return scanJobPosting(row)
}

// GetJobPosting retrieves a posting by ID
func (db *DB) GetJobPosting(ctx context.Context, id uuid.UUID) (*JobPosting, error) {
	return scanJobPosting(db.pool.QueryRow(ctx,
		`SELECT `+jobPostingColumns+` FROM job_postings WHERE id = $1`, id))
}

// GetJobPostingByURL retrieves a posting by its source URL
func (db *DB) GetJobPostingByURL(ctx context.Context, url string) (*JobPosting, error) {
	return scanJobPosting(db.pool.QueryRow(ctx,
		`SELECT `+jobPostingColumns+` FROM job_postings WHERE source_url = $1`, url))
}

// UpdateJobPosting updates the writable fields of a posting
func (db *DB) UpdateJobPosting(ctx context.Context, id uuid.UUID, input *JobPostingInput) (*JobPosting, error) {
	row := db.pool.QueryRow(ctx,
		`UPDATE job_postings SET
		     title = $1, company = $2, location = $3, employment_type = $4, remote = $5,
		     description = $6, requirements = $7, skills = $8, salary_min = $9, salary_max = $10,
		     updated_at = NOW()
		 WHERE id = $11
		 RETURNING `+jobPostingColumns,
		input.Title, input.Company, input.Location, input.EmploymentType, input.Remote,
		input.Description, StringArray(input.Requirements), StringArray(input.Skills),
		input.SalaryMin, input.SalaryMax, id,
	)
	return scanJobPosting(row)
}

// DeleteJobPosting deletes a posting
func (db *DB) DeleteJobPosting(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM job_postings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job posting: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("job posting not found: %s", id)
	}
	return nil
}

// JobPostingFilters holds optional filters for listing postings
type JobPostingFilters struct {
	Company        string
	Location       string
	EmploymentType string
	RemoteOnly     bool
	MinSalary      int
	Query          string // matched against title and description
	Limit          int
	Offset         int
}

// ListJobPostings retrieves postings with optional filters
func (db *DB) ListJobPostings(ctx context.Context, filters JobPostingFilters) ([]JobPosting, error) {
	if filters.Limit == 0 {
		filters.Limit = 50
	}

	query := `SELECT ` + jobPostingColumns + ` FROM job_postings WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Company != "" {
		query += fmt.Sprintf(" AND company ILIKE $%d", argNum)
		args = append(args, "%"+filters.Company+"%")
		argNum++
	}
	if filters.Location != "" {
		query += fmt.Sprintf(" AND location ILIKE $%d", argNum)
		args = append(args, "%"+filters.Location+"%")
		argNum++
	}
	if filters.EmploymentType != "" {
		query += fmt.Sprintf(" AND employment_type = $%d", argNum)
		args = append(args, filters.EmploymentType)
		argNum++
	}
	if filters.RemoteOnly {
		query += " AND remote = TRUE"
	}
	if filters.MinSalary > 0 {
		query += fmt.Sprintf(" AND salary_max >= $%d", argNum)
		args = append(args, filters.MinSalary)
		argNum++
	}
	if filters.Query != "" {
		query += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", argNum, argNum)
		args = append(args, "%"+filters.Query+"%")
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filters.Limit, filters.Offset)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	defer rows.Close()

	var postings []JobPosting
	for rows.Next() {
		p, err := scanJobPosting(rows)
		if err != nil {
			return nil, err
		}
		postings = append(postings, *p)
	}
	return postings, nil
}
