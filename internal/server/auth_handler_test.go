package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shahramhal/ai-career-coach/internal/server/middleware"
	"github.com/shahramhal/ai-career-coach/internal/types"
)

// fakeCodes is an in-memory CodeStore.
type fakeCodes struct {
	verification map[string]string
	reset        map[string]string
}

func newFakeCodes() *fakeCodes {
	return &fakeCodes{verification: map[string]string{}, reset: map[string]string{}}
}

func (f *fakeCodes) SetVerificationCode(_ context.Context, email, code string) error {
	f.verification[email] = code
	return nil
}

func (f *fakeCodes) GetVerificationCode(_ context.Context, email string) (string, error) {
	code, ok := f.verification[email]
	if !ok {
		return "", fmt.Errorf("code not found")
	}
	return code, nil
}

func (f *fakeCodes) DeleteVerificationCode(_ context.Context, email string) error {
	delete(f.verification, email)
	return nil
}

func (f *fakeCodes) SetResetToken(_ context.Context, email, token string) error {
	f.reset[email] = token
	return nil
}

func (f *fakeCodes) ConsumeResetToken(_ context.Context, email string) (string, error) {
	token, ok := f.reset[email]
	if !ok {
		return "", fmt.Errorf("token not found")
	}
	delete(f.reset, email)
	return token, nil
}

// fakeMailer records outbound messages.
type fakeMailer struct {
	sent []sentMail
}

type sentMail struct {
	to, subject, body string
}

func (f *fakeMailer) Send(to, subject, body string) error {
	f.sent = append(f.sent, sentMail{to, subject, body})
	return nil
}

// fakeEvents records analytics events.
type fakeEvents struct {
	events []string
}

func (f *fakeEvents) InsertEvent(_ context.Context, _ uuid.UUID, eventType string, _ any) error {
	f.events = append(f.events, eventType)
	return nil
}

type authFixture struct {
	handler *AuthHandler
	db      *mockDB
	codes   *fakeCodes
	mailer  *fakeMailer
	events  *fakeEvents
	jwt     *JWTService
	users   *UserService
}

func newAuthFixture() *authFixture {
	mock := newMockDB()
	users := NewUserService(mock, testPasswordConfig())
	jwtSvc := testJWTService()
	codes := newFakeCodes()
	mailer := &fakeMailer{}
	events := &fakeEvents{}
	handler := NewAuthHandler(users, jwtSvc, codes, mailer, events, zap.NewNop())
	return &authFixture{
		handler: handler,
		db:      mock,
		codes:   codes,
		mailer:  mailer,
		events:  events,
		jwt:     jwtSvc,
		users:   users,
	}
}

func jsonRequest(method, path, body string) *http.Request {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func authedRequest(userID uuid.UUID, method, path, body string) *http.Request {
	r := jsonRequest(method, path, body)
	ctx := context.WithValue(r.Context(), middleware.UserIDKey(), userID)
	return r.WithContext(ctx)
}

func (f *authFixture) register(t *testing.T, email, password string) types.LoginResponse {
	t.Helper()
	w := httptest.NewRecorder()
	body := fmt.Sprintf(`{"name":"Jane Smith","email":%q,"password":%q}`, email, password)
	f.handler.Register(w, jsonRequest(http.MethodPost, "/auth/register", body))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuthHandler_Register(t *testing.T) {
	f := newAuthFixture()
	resp := f.register(t, "jane@example.com", "supersecret1")

	assert.Equal(t, "jane@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)

	// Verification code stored and mailed.
	code := f.codes.verification["jane@example.com"]
	require.Len(t, code, 6)
	require.Len(t, f.mailer.sent, 1)
	assert.Contains(t, f.mailer.sent[0].body, code)
	assert.Contains(t, f.events.events, "user_registered")
}

func TestAuthHandler_Register_InvalidBody(t *testing.T) {
	f := newAuthFixture()
	w := httptest.NewRecorder()
	f.handler.Register(w, jsonRequest(http.MethodPost, "/auth/register", "{not json"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "invalid request body", body["error"])
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	f := newAuthFixture()
	w := httptest.NewRecorder()
	body := `{"name":"Jane","email":"jane@example.com","password":"short"}`
	f.handler.Register(w, jsonRequest(http.MethodPost, "/auth/register", body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Password")
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "jane@example.com", "supersecret1")

	w := httptest.NewRecorder()
	body := `{"name":"Other","email":"jane@example.com","password":"supersecret1"}`
	f.handler.Register(w, jsonRequest(http.MethodPost, "/auth/register", body))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "jane@example.com", "supersecret1")

	w := httptest.NewRecorder()
	f.handler.Login(w, jsonRequest(http.MethodPost, "/auth/login", `{"email":"jane@example.com","password":"supersecret1"}`))
	require.Equal(t, http.StatusOK, w.Code)

	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.Contains(t, f.events.events, "user_login")
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "jane@example.com", "supersecret1")

	w := httptest.NewRecorder()
	f.handler.Login(w, jsonRequest(http.MethodPost, "/auth/login", `{"email":"jane@example.com","password":"wrongpass"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Refresh(t *testing.T) {
	f := newAuthFixture()
	resp := f.register(t, "jane@example.com", "supersecret1")

	w := httptest.NewRecorder()
	body := fmt.Sprintf(`{"refresh_token":%q}`, resp.Tokens.RefreshToken)
	f.handler.Refresh(w, jsonRequest(http.MethodPost, "/auth/refresh", body))
	require.Equal(t, http.StatusOK, w.Code)

	var pair types.TokenPair
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestAuthHandler_Refresh_RejectsAccessToken(t *testing.T) {
	f := newAuthFixture()
	resp := f.register(t, "jane@example.com", "supersecret1")

	w := httptest.NewRecorder()
	body := fmt.Sprintf(`{"refresh_token":%q}`, resp.Tokens.AccessToken)
	f.handler.Refresh(w, jsonRequest(http.MethodPost, "/auth/refresh", body))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_VerifyEmail(t *testing.T) {
	f := newAuthFixture()
	resp := f.register(t, "jane@example.com", "supersecret1")
	code := f.codes.verification["jane@example.com"]

	w := httptest.NewRecorder()
	body := fmt.Sprintf(`{"code":%q}`, code)
	f.handler.VerifyEmail(w, authedRequest(resp.User.ID, http.MethodPost, "/auth/verify-email", body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.True(t, f.db.users[resp.User.ID].EmailVerified)
	// Code is single-use.
	_, ok := f.codes.verification["jane@example.com"]
	assert.False(t, ok)
	assert.Contains(t, f.events.events, "email_verified")
}

func TestAuthHandler_VerifyEmail_WrongCode(t *testing.T) {
	f := newAuthFixture()
	resp := f.register(t, "jane@example.com", "supersecret1")

	w := httptest.NewRecorder()
	f.handler.VerifyEmail(w, authedRequest(resp.User.ID, http.MethodPost, "/auth/verify-email", `{"code":"000000"}`))
	// The stored code is random; a fixed guess matching is a 1 in 10^6 flake
	// we accept.
	if f.codes.verification["jane@example.com"] != "000000" {
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, f.db.users[resp.User.ID].EmailVerified)
	}
}

func TestAuthHandler_VerifyEmail_Unauthenticated(t *testing.T) {
	f := newAuthFixture()
	w := httptest.NewRecorder()
	f.handler.VerifyEmail(w, jsonRequest(http.MethodPost, "/auth/verify-email", `{"code":"123456"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "jane@example.com", "supersecret1")
	f.mailer.sent = nil

	w := httptest.NewRecorder()
	f.handler.ForgotPassword(w, jsonRequest(http.MethodPost, "/auth/forgot-password", `{"email":"jane@example.com"}`))
	require.Equal(t, http.StatusAccepted, w.Code)

	require.Len(t, f.mailer.sent, 1)
	token := f.codes.reset["jane@example.com"]
	assert.NotEmpty(t, token)
	assert.Contains(t, f.mailer.sent[0].body, token)
}

func TestAuthHandler_ForgotPassword_UnknownEmail(t *testing.T) {
	f := newAuthFixture()

	w := httptest.NewRecorder()
	f.handler.ForgotPassword(w, jsonRequest(http.MethodPost, "/auth/forgot-password", `{"email":"nobody@example.com"}`))
	// Same 202 as the known-email case; no mail goes out.
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Empty(t, f.mailer.sent)
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "jane@example.com", "supersecret1")

	w := httptest.NewRecorder()
	f.handler.ForgotPassword(w, jsonRequest(http.MethodPost, "/auth/forgot-password", `{"email":"jane@example.com"}`))
	token := f.codes.reset["jane@example.com"]
	require.NotEmpty(t, token)

	w = httptest.NewRecorder()
	body := fmt.Sprintf(`{"email":"jane@example.com","token":%q,"new_password":"freshpassword3"}`, token)
	f.handler.ResetPassword(w, jsonRequest(http.MethodPost, "/auth/reset-password", body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Old password no longer works, new one does.
	_, err := f.users.Login(context.Background(), &types.LoginRequest{Email: "jane@example.com", Password: "supersecret1"})
	assert.Error(t, err)
	_, err = f.users.Login(context.Background(), &types.LoginRequest{Email: "jane@example.com", Password: "freshpassword3"})
	assert.NoError(t, err)
	assert.Contains(t, f.events.events, "password_reset")
}

func TestAuthHandler_ResetPassword_TokenSingleUse(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "jane@example.com", "supersecret1")

	w := httptest.NewRecorder()
	f.handler.ForgotPassword(w, jsonRequest(http.MethodPost, "/auth/forgot-password", `{"email":"jane@example.com"}`))
	token := f.codes.reset["jane@example.com"]

	// Wrong token consumes the stored one.
	w = httptest.NewRecorder()
	body := `{"email":"jane@example.com","token":"wrong-token","new_password":"freshpassword3"}`
	f.handler.ResetPassword(w, jsonRequest(http.MethodPost, "/auth/reset-password", body))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The real token no longer works either.
	w = httptest.NewRecorder()
	body = fmt.Sprintf(`{"email":"jane@example.com","token":%q,"new_password":"freshpassword3"}`, token)
	f.handler.ResetPassword(w, jsonRequest(http.MethodPost, "/auth/reset-password", body))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_UpdatePassword(t *testing.T) {
	f := newAuthFixture()
	resp := f.register(t, "jane@example.com", "supersecret1")

	w := httptest.NewRecorder()
	body := `{"current_password":"supersecret1","new_password":"evenmoresecret2"}`
	f.handler.UpdatePassword(w, authedRequest(resp.User.ID, http.MethodPut, "/auth/password", body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	_, err := f.users.Login(context.Background(), &types.LoginRequest{Email: "jane@example.com", Password: "evenmoresecret2"})
	assert.NoError(t, err)
}

func TestAuthHandler_UpdatePassword_WrongCurrent(t *testing.T) {
	f := newAuthFixture()
	resp := f.register(t, "jane@example.com", "supersecret1")

	w := httptest.NewRecorder()
	body := `{"current_password":"wrongpass","new_password":"evenmoresecret2"}`
	f.handler.UpdatePassword(w, authedRequest(resp.User.ID, http.MethodPut, "/auth/password", body))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_RequestVerification(t *testing.T) {
	f := newAuthFixture()
	resp := f.register(t, "jane@example.com", "supersecret1")
	first := f.codes.verification["jane@example.com"]
	f.mailer.sent = nil

	w := httptest.NewRecorder()
	f.handler.RequestVerification(w, authedRequest(resp.User.ID, http.MethodPost, "/auth/verify-email/request", ""))
	require.Equal(t, http.StatusAccepted, w.Code)

	require.Len(t, f.mailer.sent, 1)
	assert.NotEmpty(t, f.codes.verification["jane@example.com"])
	_ = first // a fresh code may or may not collide with the first; either is valid
}
