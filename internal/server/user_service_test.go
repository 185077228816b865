package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahramhal/ai-career-coach/internal/config"
	"github.com/shahramhal/ai-career-coach/internal/db"
	"github.com/shahramhal/ai-career-coach/internal/types"
)

// mockDB is an in-memory DBClient for unit tests.
type mockDB struct {
	users   map[uuid.UUID]*db.User
	byEmail map[string]*db.User
	failAll error // when set, every call returns this error
}

func newMockDB() *mockDB {
	return &mockDB{
		users:   make(map[uuid.UUID]*db.User),
		byEmail: make(map[string]*db.User),
	}
}

func (m *mockDB) addUser(name, email, passwordHash string) *db.User {
	u := &db.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		PasswordSet:  passwordHash != "",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.users[u.ID] = u
	m.byEmail[u.Email] = u
	return u
}

func (m *mockDB) CreateUser(_ context.Context, name, email, phone string) (uuid.UUID, error) {
	if m.failAll != nil {
		return uuid.Nil, m.failAll
	}
	u := m.addUser(name, email, "")
	u.Phone = phone
	return u.ID, nil
}

func (m *mockDB) GetUser(_ context.Context, userID uuid.UUID) (*db.User, error) {
	if m.failAll != nil {
		return nil, m.failAll
	}
	return m.users[userID], nil
}

func (m *mockDB) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	if m.failAll != nil {
		return nil, m.failAll
	}
	return m.byEmail[strings.ToLower(email)], nil
}

func (m *mockDB) CheckEmailExists(_ context.Context, email string) (bool, error) {
	if m.failAll != nil {
		return false, m.failAll
	}
	_, ok := m.byEmail[strings.ToLower(email)]
	return ok, nil
}

func (m *mockDB) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
	if m.failAll != nil {
		return m.failAll
	}
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %s", userID)
	}
	u.PasswordHash = passwordHash
	u.PasswordSet = true
	return nil
}

func (m *mockDB) SetEmailVerified(_ context.Context, userID uuid.UUID) error {
	if m.failAll != nil {
		return m.failAll
	}
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %s", userID)
	}
	u.EmailVerified = true
	return nil
}

func (m *mockDB) UpdateUser(_ context.Context, userID uuid.UUID, name, phone string) error {
	if m.failAll != nil {
		return m.failAll
	}
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %s", userID)
	}
	u.Name = name
	u.Phone = phone
	return nil
}

func (m *mockDB) DeleteUser(_ context.Context, userID uuid.UUID) error {
	if m.failAll != nil {
		return m.failAll
	}
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %s", userID)
	}
	delete(m.byEmail, u.Email)
	delete(m.users, userID)
	return nil
}

func testPasswordConfig() *config.PasswordConfig {
	return &config.PasswordConfig{BcryptCost: 10}
}

func newTestUserService() (*UserService, *mockDB) {
	mock := newMockDB()
	return NewUserService(mock, testPasswordConfig()), mock
}

func TestUserService_Register(t *testing.T) {
	svc, mock := newTestUserService()
	ctx := context.Background()

	user, err := svc.Register(ctx, &types.CreateUserRequest{
		Name:     "Jane Smith",
		Email:    "jane@example.com",
		Password: "supersecret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", user.Name)
	assert.True(t, user.PasswordSet)
	assert.False(t, user.EmailVerified)

	// Password must be stored hashed.
	stored := mock.users[user.ID]
	assert.NotEqual(t, "supersecret1", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	svc, mock := newTestUserService()
	mock.addUser("Existing", "jane@example.com", "hash")

	_, err := svc.Register(context.Background(), &types.CreateUserRequest{
		Name:     "Jane Smith",
		Email:    "jane@example.com",
		Password: "supersecret1",
	})
	require.Error(t, err)
	var dup *ErrEmailAlreadyExists
	assert.True(t, errors.As(err, &dup))
}

func TestUserService_Login(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, &types.CreateUserRequest{
		Name:     "Jane Smith",
		Email:    "jane@example.com",
		Password: "supersecret1",
	})
	require.NoError(t, err)

	user, err := svc.Login(ctx, &types.LoginRequest{Email: "jane@example.com", Password: "supersecret1"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	_, err := svc.Register(ctx, &types.CreateUserRequest{
		Name:     "Jane Smith",
		Email:    "jane@example.com",
		Password: "supersecret1",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &types.LoginRequest{Email: "jane@example.com", Password: "wrong"})
	var invalid *ErrInvalidCredentials
	assert.True(t, errors.As(err, &invalid))
}

func TestUserService_Login_UnknownEmail(t *testing.T) {
	svc, _ := newTestUserService()

	_, err := svc.Login(context.Background(), &types.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	var invalid *ErrInvalidCredentials
	assert.True(t, errors.As(err, &invalid))
}

func TestUserService_GetUser_NotFound(t *testing.T) {
	svc, _ := newTestUserService()

	_, err := svc.GetUser(context.Background(), uuid.New())
	var notFound *ErrUserNotFound
	assert.True(t, errors.As(err, &notFound))
}

func TestUserService_UpdatePassword(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	user, err := svc.Register(ctx, &types.CreateUserRequest{
		Name:     "Jane Smith",
		Email:    "jane@example.com",
		Password: "supersecret1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdatePassword(ctx, user.ID, "supersecret1", "evenmoresecret2"))

	_, err = svc.Login(ctx, &types.LoginRequest{Email: "jane@example.com", Password: "evenmoresecret2"})
	assert.NoError(t, err)
}

func TestUserService_UpdatePassword_WrongCurrent(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	user, err := svc.Register(ctx, &types.CreateUserRequest{
		Name:     "Jane Smith",
		Email:    "jane@example.com",
		Password: "supersecret1",
	})
	require.NoError(t, err)

	err = svc.UpdatePassword(ctx, user.ID, "wrong", "evenmoresecret2")
	var mismatch *ErrPasswordMismatch
	assert.True(t, errors.As(err, &mismatch))
}

func TestUserService_ResetPassword_SkipsCurrentCheck(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	user, err := svc.Register(ctx, &types.CreateUserRequest{
		Name:     "Jane Smith",
		Email:    "jane@example.com",
		Password: "supersecret1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, user.ID, "freshpassword3"))

	_, err = svc.Login(ctx, &types.LoginRequest{Email: "jane@example.com", Password: "freshpassword3"})
	assert.NoError(t, err)
}

func TestUserService_UpdateUser(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	user, err := svc.Register(ctx, &types.CreateUserRequest{
		Name:     "Jane Smith",
		Email:    "jane@example.com",
		Password: "supersecret1",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateUser(ctx, user.ID, "Jane Doe", "+44 7911 123456")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", updated.Name)
	assert.Equal(t, "+44 7911 123456", updated.Phone)
}

func TestUserService_UpdateUser_NotFound(t *testing.T) {
	svc, _ := newTestUserService()

	_, err := svc.UpdateUser(context.Background(), uuid.New(), "Name", "")
	var notFound *ErrUserNotFound
	assert.True(t, errors.As(err, &notFound))
}

func TestUserService_DeleteUser(t *testing.T) {
	svc, mock := newTestUserService()
	ctx := context.Background()

	user, err := svc.Register(ctx, &types.CreateUserRequest{
		Name:     "Jane Smith",
		Email:    "jane@example.com",
		Password: "supersecret1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, user.ID))
	assert.Empty(t, mock.users)

	err = svc.DeleteUser(ctx, user.ID)
	var notFound *ErrUserNotFound
	assert.True(t, errors.As(err, &notFound))
}

func TestUserService_DBErrorPassthrough(t *testing.T) {
	mock := newMockDB()
	mock.failAll = errors.New("connection refused")
	svc := NewUserService(mock, testPasswordConfig())

	_, err := svc.GetUser(context.Background(), uuid.New())
	require.Error(t, err)
	var notFound *ErrUserNotFound
	assert.False(t, errors.As(err, &notFound))
}
