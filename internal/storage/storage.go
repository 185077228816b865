// Package storage provides object storage for uploaded files (avatars, CVs)
// behind a single interface, with local-disk and S3 backends.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/shahramhal/ai-career-coach/internal/config"
)

// Store is the object storage abstraction used by handlers and the worker.
type Store interface {
	// Save writes the object under key, replacing any existing content.
	Save(ctx context.Context, key string, r io.Reader) error
	// Open returns a reader for the object. The caller must close it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by the configuration.
func New(ctx context.Context, cfg *config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case config.StorageBackendLocal:
		return NewLocal(cfg.LocalDir)
	case config.StorageBackendS3:
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Backend)
	}
}

// AvatarKey builds the storage key for a user's avatar.
func AvatarKey(userID uuid.UUID, contentType string) string {
	ext := ".bin"
	switch contentType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	case "image/webp":
		ext = ".webp"
	}
	return path.Join("avatars", userID.String()+ext)
}

// CVKey builds the storage key for an uploaded CV file.
func CVKey(userID, cvID uuid.UUID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join("cvs", userID.String(), cvID.String()+ext)
}
