package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPasswordConfig(t *testing.T) {
	tests := []struct {
		name       string
		bcryptCost string
		pepper     string
		wantCost   int
		wantErr    bool
	}{
		{name: "default cost", bcryptCost: "", wantCost: 12},
		{name: "valid cost", bcryptCost: "10", wantCost: 10},
		{name: "cost too low", bcryptCost: "9", wantErr: true},
		{name: "cost too high", bcryptCost: "15", wantErr: true},
		{name: "invalid cost", bcryptCost: "not-a-number", wantErr: true},
		{name: "with pepper", bcryptCost: "10", pepper: "secret-pepper", wantCost: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BCRYPT_COST", tt.bcryptCost)
			t.Setenv("PASSWORD_PEPPER", tt.pepper)

			cfg, err := NewPasswordConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, cfg.BcryptCost)
			assert.Equal(t, tt.pepper, cfg.Pepper)
		})
	}
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10} // lower cost for faster tests

	hash, err := cfg.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"), "should produce a bcrypt hash")

	assert.True(t, cfg.VerifyPassword("correct horse battery staple", hash))
	assert.False(t, cfg.VerifyPassword("wrong password", hash))
}

func TestPasswordConfig_PepperChangesVerification(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: 10, Pepper: "pepper-a"}
	plain := &PasswordConfig{BcryptCost: 10}

	hash, err := peppered.HashPassword("password123")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyPassword("password123", hash))
	assert.False(t, plain.VerifyPassword("password123", hash),
		"hash produced with a pepper should not verify without it")
}
