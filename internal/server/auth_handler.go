package server

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shahramhal/ai-career-coach/internal/mail"
	"github.com/shahramhal/ai-career-coach/internal/server/middleware"
	"github.com/shahramhal/ai-career-coach/internal/types"
)

// CodeStore holds short-lived verification codes and reset tokens.
// The Redis cache satisfies it; tests use an in-memory map.
type CodeStore interface {
	SetVerificationCode(ctx context.Context, email, code string) error
	GetVerificationCode(ctx context.Context, email string) (string, error)
	DeleteVerificationCode(ctx context.Context, email string) error
	SetResetToken(ctx context.Context, email, token string) error
	ConsumeResetToken(ctx context.Context, email string) (string, error)
}

// EventRecorder appends analytics events. Recording is best-effort; failures
// are logged and never surface to the client.
type EventRecorder interface {
	InsertEvent(ctx context.Context, userID uuid.UUID, eventType string, payload any) error
}

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	userService *UserService
	jwtService  *JWTService
	codes       CodeStore
	mailer      mail.Mailer
	events      EventRecorder
	logger      *zap.Logger
	validator   *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService *UserService, jwtService *JWTService, codes CodeStore, mailer mail.Mailer, events EventRecorder, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		codes:       codes,
		mailer:      mailer,
		events:      events,
		logger:      logger,
		validator:   validator.New(),
	}
}

// Register handles user registration requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.httpError(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		h.httpError(w, HTTPStatus(err), err.Error())
		return
	}

	h.sendVerificationCode(r.Context(), user)
	h.recordEvent(r.Context(), user.ID, "user_registered", nil)

	access, refresh, err := h.jwtService.GenerateTokenPair(user.ID)
	if err != nil {
		h.httpError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusCreated, types.LoginResponse{
		User:   user,
		Tokens: types.TokenPair{AccessToken: access, RefreshToken: refresh},
	})
}

// Login handles user login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.httpError(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		h.httpError(w, HTTPStatus(err), err.Error())
		return
	}

	h.recordEvent(r.Context(), user.ID, "user_login", nil)

	access, refresh, err := h.jwtService.GenerateTokenPair(user.ID)
	if err != nil {
		h.httpError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, types.LoginResponse{
		User:   user,
		Tokens: types.TokenPair{AccessToken: access, RefreshToken: refresh},
	})
}

// Refresh exchanges a valid refresh token for a new token pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req types.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.httpError(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		tokErr := &ErrInvalidToken{Kind: "refresh token"}
		h.httpError(w, HTTPStatus(tokErr), tokErr.Error())
		return
	}

	access, refresh, err := h.jwtService.GenerateTokenPair(claims.UserID)
	if err != nil {
		h.httpError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, types.TokenPair{AccessToken: access, RefreshToken: refresh})
}

// RequestVerification sends a fresh verification code to the authenticated user.
func (h *AuthHandler) RequestVerification(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		h.httpError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		h.httpError(w, HTTPStatus(err), err.Error())
		return
	}

	h.sendVerificationCode(r.Context(), user)
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "Verification code sent"})
}

// VerifyEmail checks the submitted code and marks the email verified.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		h.httpError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req types.VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.httpError(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		h.httpError(w, HTTPStatus(err), err.Error())
		return
	}

	stored, err := h.codes.GetVerificationCode(r.Context(), user.Email)
	if err != nil || subtle.ConstantTimeCompare([]byte(stored), []byte(req.Code)) != 1 {
		tokErr := &ErrInvalidToken{Kind: "verification code"}
		h.httpError(w, HTTPStatus(tokErr), tokErr.Error())
		return
	}
	_ = h.codes.DeleteVerificationCode(r.Context(), user.Email)

	if err := h.userService.MarkEmailVerified(r.Context(), userID); err != nil {
		h.httpError(w, HTTPStatus(err), err.Error())
		return
	}

	h.recordEvent(r.Context(), userID, "email_verified", nil)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Email verified"})
}

// ForgotPassword starts the reset flow. The response is identical whether or
// not the email is registered.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req types.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.httpError(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	user, err := h.userService.db.GetUserByEmail(r.Context(), req.Email)
	if err == nil && user != nil {
		token := newResetToken()
		if err := h.codes.SetResetToken(r.Context(), req.Email, token); err != nil {
			h.logger.Error("failed to store reset token", zap.Error(err))
		} else if err := h.mailer.Send(req.Email, mail.ResetSubject, mail.ResetBody(user.Name, token)); err != nil {
			h.logger.Error("failed to send reset email", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "If the address is registered, a reset email has been sent",
	})
}

// ResetPassword completes the reset flow with the emailed token.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req types.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.httpError(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	// GetDel: the token is single-use even when the comparison fails
	stored, err := h.codes.ConsumeResetToken(r.Context(), req.Email)
	if err != nil || subtle.ConstantTimeCompare([]byte(stored), []byte(req.Token)) != 1 {
		tokErr := &ErrInvalidToken{Kind: "reset token"}
		h.httpError(w, HTTPStatus(tokErr), tokErr.Error())
		return
	}

	user, err := h.userService.db.GetUserByEmail(r.Context(), req.Email)
	if err != nil || user == nil {
		tokErr := &ErrInvalidToken{Kind: "reset token"}
		h.httpError(w, HTTPStatus(tokErr), tokErr.Error())
		return
	}

	if err := h.userService.ResetPassword(r.Context(), user.ID, req.NewPassword); err != nil {
		h.httpError(w, HTTPStatus(err), err.Error())
		return
	}

	h.recordEvent(r.Context(), user.ID, "password_reset", nil)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully"})
}

// UpdatePassword handles authenticated password change requests.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		h.httpError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req types.UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.httpError(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	if err := h.userService.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		h.httpError(w, HTTPStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

// sendVerificationCode stores a fresh code and emails it. Failures are
// logged; registration never fails because the mail could not go out.
func (h *AuthHandler) sendVerificationCode(ctx context.Context, user *types.User) {
	code, err := newVerificationCode()
	if err != nil {
		h.logger.Error("failed to generate verification code", zap.Error(err))
		return
	}
	if err := h.codes.SetVerificationCode(ctx, user.Email, code); err != nil {
		h.logger.Error("failed to store verification code", zap.Error(err))
		return
	}
	if err := h.mailer.Send(user.Email, mail.VerificationSubject, mail.VerificationBody(user.Name, code)); err != nil {
		h.logger.Error("failed to send verification email", zap.Error(err))
	}
}

// httpError writes an error in the same JSON shape the server handlers use.
func (h *AuthHandler) httpError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (h *AuthHandler) recordEvent(ctx context.Context, userID uuid.UUID, eventType string, payload any) {
	if h.events == nil {
		return
	}
	if err := h.events.InsertEvent(ctx, userID, eventType, payload); err != nil {
		h.logger.Warn("failed to record analytics event",
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}

// newVerificationCode returns a random 6-digit code.
func newVerificationCode() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	n := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	return fmt.Sprintf("%06d", n%1000000), nil
}

// newResetToken returns a random 32-hex-char token.
func newResetToken() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrors) > 0 {
			// Return first validation error for simplicity
			ve := validationErrors[0]
			return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
		}
	}
	return "validation error: invalid request"
}
