package db

import (
	"context"
	"fmt"
)

// schema contains the full DDL for the platform. Statements are idempotent
// so Migrate can run at every startup of the migrate command.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name           TEXT NOT NULL,
    email          TEXT NOT NULL UNIQUE,
    phone          TEXT NOT NULL DEFAULT '',
    password_hash  TEXT NOT NULL DEFAULT '',
    password_set   BOOLEAN NOT NULL DEFAULT FALSE,
    email_verified BOOLEAN NOT NULL DEFAULT FALSE,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS profiles (
    user_id          UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    headline         TEXT NOT NULL DEFAULT '',
    bio              TEXT NOT NULL DEFAULT '',
    location         TEXT NOT NULL DEFAULT '',
    skills           JSONB NOT NULL DEFAULT '[]',
    experience_years INT NOT NULL DEFAULT 0,
    desired_role     TEXT NOT NULL DEFAULT '',
    desired_salary   INT NOT NULL DEFAULT 0,
    links            JSONB NOT NULL DEFAULT '[]',
    avatar_key       TEXT NOT NULL DEFAULT '',
    avatar_type      TEXT NOT NULL DEFAULT '',
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS job_postings (
    id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    title           TEXT NOT NULL,
    company         TEXT NOT NULL,
    location        TEXT NOT NULL DEFAULT '',
    employment_type TEXT NOT NULL DEFAULT '',
    remote          BOOLEAN NOT NULL DEFAULT FALSE,
    description     TEXT NOT NULL DEFAULT '',
    requirements    JSONB NOT NULL DEFAULT '[]',
    skills          JSONB NOT NULL DEFAULT '[]',
    salary_min      INT NOT NULL DEFAULT 0,
    salary_max      INT NOT NULL DEFAULT 0,
    source_url      TEXT UNIQUE,
    content_hash    TEXT NOT NULL DEFAULT '',
    fetch_status    TEXT NOT NULL DEFAULT '',
    fetched_at      TIMESTAMPTZ,
    expires_at      TIMESTAMPTZ,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_job_postings_company ON job_postings (company);
CREATE INDEX IF NOT EXISTS idx_job_postings_created ON job_postings (created_at DESC);

CREATE TABLE IF NOT EXISTS cvs (
    id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id       UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    filename      TEXT NOT NULL,
    storage_key   TEXT NOT NULL,
    content_type  TEXT NOT NULL,
    size_bytes    BIGINT NOT NULL,
    status        TEXT NOT NULL DEFAULT 'pending',
    error_message TEXT NOT NULL DEFAULT '',
    attempts      INT NOT NULL DEFAULT 0,
    content_hash  TEXT NOT NULL DEFAULT '',
    parsed        JSONB,
    ats_report    JSONB,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_cvs_user ON cvs (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS analytics_events (
    id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id    UUID REFERENCES users(id) ON DELETE SET NULL,
    event_type TEXT NOT NULL,
    payload    JSONB NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_analytics_user_type ON analytics_events (user_id, event_type);
`

// Migrate applies the schema to the connected database.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
