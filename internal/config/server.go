package config

import (
	"fmt"
	"os"
	"strings"
)

// ServerConfig holds top-level configuration for the HTTP server.
type ServerConfig struct {
	DatabaseURL    string
	AllowedOrigins []string
	GeminiAPIKey   string // optional; enables embedding-based match reranking
}

// NewServerConfig creates server configuration from environment variables.
// It reads DATABASE_URL (required), CORS_ALLOWED_ORIGINS (comma separated,
// default "*") and optionally GEMINI_API_KEY.
func NewServerConfig() (*ServerConfig, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}

	origins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if origins == "" {
		origins = "*"
	}
	var allowed []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}

	return &ServerConfig{
		DatabaseURL:    databaseURL,
		AllowedOrigins: allowed,
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
	}, nil
}
