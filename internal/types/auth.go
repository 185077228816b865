// Package types provides type definitions for structured data used throughout the career-coach system.
package types

import (
	"time"

	"github.com/google/uuid"
)

// CreateUserRequest represents the request to register a new user with password authentication.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone,omitempty"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents the refresh-token exchange request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// VerifyEmailRequest represents the email verification request.
type VerifyEmailRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

// ForgotPasswordRequest represents the password reset initiation request.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest represents the password reset completion request.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// UpdatePasswordRequest represents an authenticated password update request.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// UpdateUserRequest represents an authenticated account update request.
type UpdateUserRequest struct {
	Name  string `json:"name" validate:"required,min=1"`
	Phone string `json:"phone,omitempty"`
}

// User represents a user account for API responses (avoids import cycle with db package).
type User struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone,omitempty"`
	PasswordSet   bool      `json:"password_set"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TokenPair carries an access token and the refresh token used to renew it.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResponse represents the login/register response with user data and tokens.
type LoginResponse struct {
	User   *User     `json:"user"`
	Tokens TokenPair `json:"tokens"`
}
