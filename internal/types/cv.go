package types

// ExperienceEntry is one position extracted from the experience section of a CV.
type ExperienceEntry struct {
	Title   string   `json:"title,omitempty"`
	Company string   `json:"company,omitempty"`
	Dates   string   `json:"dates,omitempty"`
	Bullets []string `json:"bullets"`
}

// EducationEntry is one entry extracted from the education section of a CV.
type EducationEntry struct {
	School string `json:"school,omitempty"`
	Degree string `json:"degree,omitempty"`
	Dates  string `json:"dates,omitempty"`
}

// Contact holds contact details extracted from a CV.
type Contact struct {
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email,omitempty"`
	Phone string   `json:"phone,omitempty"`
	Links []string `json:"links,omitempty"`
}

// ParsedCV is the structured document produced by the parsing pipeline.
// It is persisted as JSONB and validated against schemas/parsed_cv.json.
type ParsedCV struct {
	Contact    Contact           `json:"contact"`
	Summary    string            `json:"summary,omitempty"`
	Skills     []string          `json:"skills"`
	Experience []ExperienceEntry `json:"experience"`
	Education  []EducationEntry  `json:"education"`
	RawText    string            `json:"raw_text,omitempty"`
	WordCount  int               `json:"word_count"`
}

// ATSFinding is one per-section result of the ATS heuristic.
type ATSFinding struct {
	Section    string `json:"section"`
	Score      int    `json:"score"`
	MaxScore   int    `json:"max_score"`
	Feedback   string `json:"feedback,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ATSReport is the result of the ATS scoring heuristic over a parsed CV.
type ATSReport struct {
	OverallScore int          `json:"overall_score"` // 0-100
	Findings     []ATSFinding `json:"findings"`
}
