// Package server provides the HTTP REST API for the career coach platform.
package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrInvalidToken indicates an invalid or expired verification code,
// reset token or refresh token
type ErrInvalidToken struct {
	Kind string
}

func (e *ErrInvalidToken) Error() string {
	return fmt.Sprintf("invalid or expired %s", e.Kind)
}

// ErrNotFound indicates a resource other than a user was not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrForbidden indicates the authenticated user does not own the resource
type ErrForbidden struct{}

func (e *ErrForbidden) Error() string {
	return "access denied"
}

// ErrFileTooLarge indicates an upload exceeded its size limit
type ErrFileTooLarge struct {
	LimitBytes int64
}

func (e *ErrFileTooLarge) Error() string {
	return fmt.Sprintf("file exceeds the %d byte limit", e.LimitBytes)
}

// ErrUnsupportedMedia indicates an upload with a content type the platform
// does not accept
type ErrUnsupportedMedia struct {
	ContentType string
}

func (e *ErrUnsupportedMedia) Error() string {
	return fmt.Sprintf("unsupported content type: %s", e.ContentType)
}

// ErrCVNotParsed indicates an operation that needs parse results was called
// on a CV that has not finished parsing
type ErrCVNotParsed struct {
	Status string
}

func (e *ErrCVNotParsed) Error() string {
	return fmt.Sprintf("cv is not parsed yet (status: %s)", e.Status)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrEmailAlreadyExists:
		return http.StatusConflict
	case *ErrInvalidCredentials, *ErrPasswordMismatch, *ErrInvalidToken:
		return http.StatusUnauthorized
	case *ErrUserNotFound, *ErrNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusBadRequest
	case *ErrForbidden:
		return http.StatusForbidden
	case *ErrFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case *ErrUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case *ErrCVNotParsed:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
