package config

import (
	"fmt"
	"os"
)

// Storage backends.
const (
	StorageBackendLocal = "local"
	StorageBackendS3    = "s3"
)

// StorageConfig holds configuration for avatar and CV file storage.
type StorageConfig struct {
	Backend string

	// Local backend
	LocalDir string

	// S3 backend
	S3Bucket    string
	S3Region    string
	S3Endpoint  string // optional, for S3-compatible stores
	S3AccessKey string
	S3SecretKey string
}

// NewStorageConfig creates storage configuration from environment variables.
// It reads STORAGE_BACKEND (local|s3, default: local), UPLOAD_DIR
// (default: ./uploads) and, for the s3 backend, S3_BUCKET (required),
// S3_REGION, S3_ENDPOINT, S3_ACCESS_KEY and S3_SECRET_KEY.
func NewStorageConfig() (*StorageConfig, error) {
	backend := os.Getenv("STORAGE_BACKEND")
	if backend == "" {
		backend = StorageBackendLocal // default
	}

	localDir := os.Getenv("UPLOAD_DIR")
	if localDir == "" {
		localDir = "./uploads"
	}

	config := &StorageConfig{
		Backend:     backend,
		LocalDir:    localDir,
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3Region:    os.Getenv("S3_REGION"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *StorageConfig) normalize() error {
	switch c.Backend {
	case StorageBackendLocal:
		if c.LocalDir == "" {
			return fmt.Errorf("UPLOAD_DIR cannot be empty for the local backend")
		}
	case StorageBackendS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND: %q (must be local or s3)", c.Backend)
	}
	return nil
}
