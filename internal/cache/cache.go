// Package cache provides the Redis-backed short-lived state of the platform:
// email verification codes, password reset tokens and cached match results.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shahramhal/ai-career-coach/internal/config"
	"github.com/shahramhal/ai-career-coach/internal/types"
)

// ErrKeyNotFound is returned when a key is absent or expired.
var ErrKeyNotFound = errors.New("key not found")

// Key namespaces. Each concern gets its own prefix so TTLs and
// invalidation stay independent.
const (
	verifyPrefix = "verify:"
	resetPrefix  = "reset:"
	matchPrefix  = "match:"
)

// Default TTLs.
const (
	VerificationCodeTTL = 15 * time.Minute
	ResetTokenTTL       = 30 * time.Minute
	MatchResultTTL      = time.Hour
)

// Cache wraps a Redis client with the platform's key conventions.
type Cache struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg *config.RedisConfig) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &Cache{client: client}, nil
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// SetVerificationCode stores an email verification code with the default TTL.
func (c *Cache) SetVerificationCode(ctx context.Context, email, code string) error {
	return c.client.Set(ctx, verifyPrefix+email, code, VerificationCodeTTL).Err()
}

// GetVerificationCode retrieves the pending verification code for an email.
func (c *Cache) GetVerificationCode(ctx context.Context, email string) (string, error) {
	val, err := c.client.Get(ctx, verifyPrefix+email).Result()
	if err == redis.Nil {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get verification code: %w", err)
	}
	return val, nil
}

// DeleteVerificationCode removes a verification code after successful use.
func (c *Cache) DeleteVerificationCode(ctx context.Context, email string) error {
	return c.client.Del(ctx, verifyPrefix+email).Err()
}

// SetResetToken stores a password reset token with the default TTL.
func (c *Cache) SetResetToken(ctx context.Context, email, token string) error {
	return c.client.Set(ctx, resetPrefix+email, token, ResetTokenTTL).Err()
}

// ConsumeResetToken atomically fetches and deletes the reset token for an
// email, so a token can be used at most once. Returns ErrKeyNotFound when no
// token is pending.
func (c *Cache) ConsumeResetToken(ctx context.Context, email string) (string, error) {
	val, err := c.client.GetDel(ctx, resetPrefix+email).Result()
	if err == redis.Nil {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to consume reset token: %w", err)
	}
	return val, nil
}

// matchKey builds the cache key for a CV's match results. The content hash is
// part of the key so a re-parsed CV never reads stale results.
func matchKey(cvID, contentHash string) string {
	return matchPrefix + cvID + ":" + contentHash
}

// SetMatches caches scored matches for a CV.
func (c *Cache) SetMatches(ctx context.Context, cvID, contentHash string, matches []types.JobMatch) error {
	payload, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("failed to marshal matches: %w", err)
	}
	return c.client.Set(ctx, matchKey(cvID, contentHash), payload, MatchResultTTL).Err()
}

// GetMatches retrieves cached matches for a CV, or ErrKeyNotFound on a miss.
func (c *Cache) GetMatches(ctx context.Context, cvID, contentHash string) ([]types.JobMatch, error) {
	val, err := c.client.Get(ctx, matchKey(cvID, contentHash)).Bytes()
	if err == redis.Nil {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached matches: %w", err)
	}
	var matches []types.JobMatch
	if err := json.Unmarshal(val, &matches); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached matches: %w", err)
	}
	return matches, nil
}
