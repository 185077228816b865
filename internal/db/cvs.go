package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const cvColumns = `id, user_id, filename, storage_key, content_type, size_bytes, status,
	error_message, attempts, content_hash, parsed, ats_report, created_at, updated_at`

func scanCV(row pgx.Row) (*CV, error) {
	var cv CV
	err := row.Scan(&cv.ID, &cv.UserID, &cv.Filename, &cv.StorageKey, &cv.ContentType,
		&cv.SizeBytes, &cv.Status, &cv.ErrorMessage, &cv.Attempts, &cv.ContentHash,
		&cv.Parsed, &cv.ATSReport, &cv.CreatedAt, &cv.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan cv: %w", err)
	}
	return &cv, nil
}

// CreateCV records an uploaded CV file in pending state and returns it
func (db *DB) CreateCV(ctx context.Context, userID uuid.UUID, filename, storageKey, contentType string, sizeBytes int64) (*CV, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO cvs (user_id, filename, storage_key, content_type, size_bytes, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+cvColumns,
		userID, filename, storageKey, contentType, sizeBytes, CVStatusPending,
	)
	return scanCV(row)
}

// GetCV retrieves a CV by ID
func (db *DB) GetCV(ctx context.Context, id uuid.UUID) (*CV, error) {
	return scanCV(db.pool.QueryRow(ctx,
		`SELECT `+cvColumns+` FROM cvs WHERE id = $1`, id))
}

// ListCVsByUser retrieves a user's CVs, newest first
func (db *DB) ListCVsByUser(ctx context.Context, userID uuid.UUID) ([]CV, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+cvColumns+` FROM cvs WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cvs: %w", err)
	}
	defer rows.Close()

	var cvs []CV
	for rows.Next() {
		cv, err := scanCV(rows)
		if err != nil {
			return nil, err
		}
		cvs = append(cvs, *cv)
	}
	return cvs, nil
}

// MarkCVParsing transitions a CV into the parsing state and bumps the attempt counter
func (db *DB) MarkCVParsing(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE cvs SET status = $1, attempts = attempts + 1, updated_at = NOW() WHERE id = $2`,
		CVStatusParsing, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark cv parsing: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("cv not found: %s", id)
	}
	return nil
}

// SaveCVParseResult stores the parsed document, the ATS report and the content
// hash, and transitions the CV to the parsed state.
func (db *DB) SaveCVParseResult(ctx context.Context, id uuid.UUID, parsed, atsReport []byte, contentHash string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE cvs SET status = $1, parsed = $2, ats_report = $3, content_hash = $4,
		        error_message = '', updated_at = NOW()
		 WHERE id = $5`,
		CVStatusParsed, parsed, atsReport, contentHash, id,
	)
	if err != nil {
		return fmt.Errorf("failed to save cv parse result: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("cv not found: %s", id)
	}
	return nil
}

// MarkCVFailed records a terminal parse failure
func (db *DB) MarkCVFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE cvs SET status = $1, error_message = $2, updated_at = NOW() WHERE id = $3`,
		CVStatusFailed, errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark cv failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("cv not found: %s", id)
	}
	return nil
}

// DeleteCV deletes a CV row
func (db *DB) DeleteCV(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM cvs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cv: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("cv not found: %s", id)
	}
	return nil
}
