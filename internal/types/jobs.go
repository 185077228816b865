package types

// JobPostingRequest represents the create/update request for a job posting.
type JobPostingRequest struct {
	Title          string   `json:"title" validate:"required,min=1,max=200"`
	Company        string   `json:"company" validate:"required,min=1,max=200"`
	Location       string   `json:"location" validate:"max=120"`
	EmploymentType string   `json:"employment_type" validate:"omitempty,oneof=full-time part-time contract internship"`
	Remote         bool     `json:"remote"`
	Description    string   `json:"description" validate:"max=50000"`
	Requirements   []string `json:"requirements" validate:"max=50,dive,min=1"`
	Skills         []string `json:"skills" validate:"max=100,dive,min=1,max=60"`
	SalaryMin      int      `json:"salary_min" validate:"min=0"`
	SalaryMax      int      `json:"salary_max" validate:"min=0,gtefield=SalaryMin"`
}

// IngestJobRequest represents a request to ingest a posting from a URL.
type IngestJobRequest struct {
	URL        string `json:"url" validate:"required,url"`
	Company    string `json:"company,omitempty" validate:"max=200"`
	UseBrowser bool   `json:"use_browser,omitempty"` // headless fallback for script-rendered pages
}
