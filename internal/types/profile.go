package types

// UpdateProfileRequest represents the profile upsert request.
type UpdateProfileRequest struct {
	Headline        string   `json:"headline" validate:"max=160"`
	Bio             string   `json:"bio" validate:"max=4000"`
	Location        string   `json:"location" validate:"max=120"`
	Skills          []string `json:"skills" validate:"max=100,dive,min=1,max=60"`
	ExperienceYears int      `json:"experience_years" validate:"min=0,max=60"`
	DesiredRole     string   `json:"desired_role" validate:"max=120"`
	DesiredSalary   int      `json:"desired_salary" validate:"min=0"`
	Links           []string `json:"links" validate:"max=10,dive,url"`
}
