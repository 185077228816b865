package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"email exists", &ErrEmailAlreadyExists{Email: "a@b.com"}, http.StatusConflict},
		{"invalid credentials", &ErrInvalidCredentials{}, http.StatusUnauthorized},
		{"password mismatch", &ErrPasswordMismatch{}, http.StatusUnauthorized},
		{"invalid token", &ErrInvalidToken{Kind: "refresh token"}, http.StatusUnauthorized},
		{"user not found", &ErrUserNotFound{UserID: uuid.New()}, http.StatusNotFound},
		{"resource not found", &ErrNotFound{Resource: "cv", ID: "x"}, http.StatusNotFound},
		{"validation", &ErrValidation{Message: "bad"}, http.StatusBadRequest},
		{"forbidden", &ErrForbidden{}, http.StatusForbidden},
		{"file too large", &ErrFileTooLarge{LimitBytes: 1}, http.StatusRequestEntityTooLarge},
		{"unsupported media", &ErrUnsupportedMedia{ContentType: "image/gif"}, http.StatusUnsupportedMediaType},
		{"cv not parsed", &ErrCVNotParsed{Status: "pending"}, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Contains(t, (&ErrEmailAlreadyExists{Email: "a@b.com"}).Error(), "a@b.com")
	assert.Contains(t, (&ErrInvalidToken{Kind: "reset token"}).Error(), "reset token")
	assert.Contains(t, (&ErrNotFound{Resource: "job posting", ID: "123"}).Error(), "job posting")
	assert.Contains(t, (&ErrCVNotParsed{Status: "failed"}).Error(), "failed")
}
