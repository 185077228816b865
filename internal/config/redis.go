package config

import (
	"fmt"
	"os"
	"strconv"
)

// RedisConfig holds configuration for the Redis cache
// (verification codes, reset tokens, match-result cache).
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisConfig creates Redis configuration from environment variables.
// It reads REDIS_ADDR (default: localhost:6379), REDIS_PASSWORD and REDIS_DB (default: 0).
func NewRedisConfig() (*RedisConfig, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379" // default
	}

	dbStr := os.Getenv("REDIS_DB")
	if dbStr == "" {
		dbStr = "0"
	}
	db, err := strconv.Atoi(dbStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %v", err)
	}
	if db < 0 {
		return nil, fmt.Errorf("REDIS_DB must be non-negative, got: %d", db)
	}

	return &RedisConfig{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	}, nil
}
