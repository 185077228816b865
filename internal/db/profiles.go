package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProfileInput holds the editable profile fields for an upsert.
type ProfileInput struct {
	Headline        string
	Bio             string
	Location        string
	Skills          []string
	ExperienceYears int
	DesiredRole     string
	DesiredSalary   int
	Links           []string
}

// UpsertProfile creates or replaces the editable fields of a user's profile
// in a single statement. Avatar columns are managed separately.
func (db *DB) UpsertProfile(ctx context.Context, userID uuid.UUID, input *ProfileInput) (*Profile, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO profiles (user_id, headline, bio, location, skills, experience_years,
		                       desired_role, desired_salary, links, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET
		     headline = $2, bio = $3, location = $4, skills = $5, experience_years = $6,
		     desired_role = $7, desired_salary = $8, links = $9, updated_at = NOW()
		 RETURNING user_id, headline, bio, location, skills, experience_years,
		           desired_role, desired_salary, links, avatar_key, avatar_type, updated_at`,
		userID, input.Headline, input.Bio, input.Location, StringArray(input.Skills),
		input.ExperienceYears, input.DesiredRole, input.DesiredSalary, StringArray(input.Links),
	)
	return scanProfile(row)
}

// GetProfile retrieves a user's profile
func (db *DB) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT user_id, headline, bio, location, skills, experience_years,
		        desired_role, desired_salary, links, avatar_key, avatar_type, updated_at
		 FROM profiles WHERE user_id = $1`, userID)
	return scanProfile(row)
}

// UpdateAvatar records the storage key and content type of a user's avatar,
// creating the profile row if it does not exist yet.
func (db *DB) UpdateAvatar(ctx context.Context, userID uuid.UUID, storageKey, contentType string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO profiles (user_id, avatar_key, avatar_type, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET avatar_key = $2, avatar_type = $3, updated_at = NOW()`,
		userID, storageKey, contentType,
	)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	return nil
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.UserID, &p.Headline, &p.Bio, &p.Location, &p.Skills,
		&p.ExperienceYears, &p.DesiredRole, &p.DesiredSalary, &p.Links,
		&p.AvatarKey, &p.AvatarType, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}
	p.HasAvatar = p.AvatarKey != ""
	return &p, nil
}
