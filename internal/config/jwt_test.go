package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTConfig_DefaultValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key")
	t.Setenv("JWT_EXPIRATION_HOURS", "")
	t.Setenv("JWT_REFRESH_EXPIRATION_HOURS", "")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "test-secret-key", cfg.Secret)
	assert.Equal(t, 24, cfg.ExpirationHours, "should use default expiration of 24 hours")
	assert.Equal(t, 168, cfg.RefreshExpirationHours, "should use default refresh expiration of 7 days")
}

func TestNewJWTConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg, err := NewJWTConfig()
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestNewJWTConfig_Expirations(t *testing.T) {
	tests := []struct {
		name        string
		expiration  string
		refresh     string
		wantAccess  int
		wantRefresh int
		wantErr     bool
	}{
		{name: "custom values", expiration: "2", refresh: "48", wantAccess: 2, wantRefresh: 48},
		{name: "invalid access expiration", expiration: "abc", wantErr: true},
		{name: "invalid refresh expiration", expiration: "2", refresh: "xyz", wantErr: true},
		{name: "zero access expiration", expiration: "0", wantErr: true},
		{name: "refresh shorter than access", expiration: "24", refresh: "12", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "test-secret-key")
			t.Setenv("JWT_EXPIRATION_HOURS", tt.expiration)
			t.Setenv("JWT_REFRESH_EXPIRATION_HOURS", tt.refresh)

			cfg, err := NewJWTConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAccess, cfg.ExpirationHours)
			assert.Equal(t, tt.wantRefresh, cfg.RefreshExpirationHours)
		})
	}
}
