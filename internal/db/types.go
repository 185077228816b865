package db

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// User represents an account row. PasswordHash never leaves the db package
// in API responses; handlers convert to types.User first.
type User struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone,omitempty"`
	PasswordHash  string    `json:"-" db:"password_hash"` // Never serialize to JSON
	PasswordSet   bool      `json:"password_set" db:"password_set"`
	EmailVerified bool      `json:"email_verified" db:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Profile represents the single career profile row attached to a user.
type Profile struct {
	UserID          uuid.UUID   `json:"user_id"`
	Headline        string      `json:"headline,omitempty"`
	Bio             string      `json:"bio,omitempty"`
	Location        string      `json:"location,omitempty"`
	Skills          StringArray `json:"skills"`
	ExperienceYears int         `json:"experience_years"`
	DesiredRole     string      `json:"desired_role,omitempty"`
	DesiredSalary   int         `json:"desired_salary,omitempty"`
	Links           StringArray `json:"links"`
	AvatarKey       string      `json:"-"`
	AvatarType      string      `json:"-"`
	HasAvatar       bool        `json:"has_avatar"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// JobPosting represents a stored job posting. Document-shaped fields
// (requirements, skills) are JSONB columns.
type JobPosting struct {
	ID             uuid.UUID   `json:"id"`
	Title          string      `json:"title"`
	Company        string      `json:"company"`
	Location       string      `json:"location,omitempty"`
	EmploymentType string      `json:"employment_type,omitempty"`
	Remote         bool        `json:"remote"`
	Description    string      `json:"description,omitempty"`
	Requirements   StringArray `json:"requirements"`
	Skills         StringArray `json:"skills"`
	SalaryMin      int         `json:"salary_min,omitempty"`
	SalaryMax      int         `json:"salary_max,omitempty"`
	SourceURL      *string     `json:"source_url,omitempty"`
	ContentHash    string      `json:"content_hash,omitempty"`
	FetchStatus    string      `json:"fetch_status,omitempty"`
	FetchedAt      *time.Time  `json:"fetched_at,omitempty"`
	ExpiresAt      *time.Time  `json:"expires_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// IsExpired reports whether an ingested posting is past its freshness window.
func (p *JobPosting) IsExpired() bool {
	if p.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*p.ExpiresAt)
}

// CV statuses.
const (
	CVStatusPending = "pending"
	CVStatusParsing = "parsing"
	CVStatusParsed  = "parsed"
	CVStatusFailed  = "failed"
)

// CV represents an uploaded CV document and the state of its parsing pipeline.
// Parsed and ATSReport hold the raw JSONB payloads; handlers unmarshal them
// into their typed forms.
type CV struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Filename     string    `json:"filename"`
	StorageKey   string    `json:"-"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Attempts     int       `json:"attempts"`
	ContentHash  string    `json:"content_hash,omitempty"`
	Parsed       []byte    `json:"-"`
	ATSReport    []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AnalyticsEvent represents an append-only analytics record.
type AnalyticsEvent struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	EventType string    `json:"event_type"`
	Payload   []byte    `json:"payload,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// StringArray handles JSONB string arrays
type StringArray []string

// Scan implements the Scanner interface for StringArray
func (a *StringArray) Scan(src interface{}) error {
	if src == nil {
		*a = []string{}
		return nil
	}
	var source []byte
	switch v := src.(type) {
	case []byte:
		source = v
	case string:
		source = []byte(v)
	default:
		return errors.New("unsupported source type for StringArray")
	}
	return json.Unmarshal(source, a)
}

// Value implements the Valuer interface for StringArray
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}
