package server

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shahramhal/ai-career-coach/internal/config"
	"github.com/shahramhal/ai-career-coach/internal/db"
	"github.com/shahramhal/ai-career-coach/internal/types"
)

// DBClient is the subset of database operations UserService depends on.
// It exists so the service can be unit tested against a mock.
type DBClient interface {
	CreateUser(ctx context.Context, name, email, phone string) (uuid.UUID, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	SetEmailVerified(ctx context.Context, userID uuid.UUID) error
	UpdateUser(ctx context.Context, userID uuid.UUID, name, phone string) error
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// UserService provides business logic for account operations
type UserService struct {
	db             DBClient
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(db DBClient, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		db:             db,
		passwordConfig: passwordConfig,
	}
}

// convertDBUserToTypesUser converts db.User to types.User, excluding password hash
func convertDBUserToTypesUser(dbUser *db.User) *types.User {
	if dbUser == nil {
		return nil
	}
	return &types.User{
		ID:            dbUser.ID,
		Name:          dbUser.Name,
		Email:         dbUser.Email,
		Phone:         dbUser.Phone,
		PasswordSet:   dbUser.PasswordSet,
		EmailVerified: dbUser.EmailVerified,
		CreatedAt:     dbUser.CreatedAt,
		UpdatedAt:     dbUser.UpdatedAt,
	}
}

// Register creates a new user with password authentication
func (s *UserService) Register(ctx context.Context, req *types.CreateUserRequest) (*types.User, error) {
	exists, err := s.db.CheckEmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, &ErrEmailAlreadyExists{Email: req.Email}
	}

	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Two-step create: insert the user row, then set the password hash
	userID, err := s.db.CreateUser(ctx, req.Name, req.Email, req.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.db.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return nil, fmt.Errorf("failed to set password: %w", err)
	}

	dbUser, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve created user: %w", err)
	}
	if dbUser == nil {
		return nil, fmt.Errorf("created user not found: %s", userID)
	}

	return convertDBUserToTypesUser(dbUser), nil
}

// Login authenticates a user and returns user data
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	dbUser, err := s.db.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	// Generic error whether the account is missing or the password is wrong
	if dbUser == nil {
		return nil, &ErrInvalidCredentials{}
	}
	if !s.passwordConfig.VerifyPassword(req.Password, dbUser.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}
	if !dbUser.PasswordSet {
		return nil, &ErrInvalidCredentials{}
	}

	return convertDBUserToTypesUser(dbUser), nil
}

// GetUser returns a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	dbUser, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if dbUser == nil {
		return nil, &ErrUserNotFound{UserID: userID}
	}
	return convertDBUserToTypesUser(dbUser), nil
}

// UpdatePassword updates a user's password after verifying the current one
func (s *UserService) UpdatePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	dbUser, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if dbUser == nil {
		return &ErrUserNotFound{UserID: userID}
	}

	if !s.passwordConfig.VerifyPassword(currentPassword, dbUser.PasswordHash) {
		return &ErrPasswordMismatch{}
	}

	newHash, err := s.passwordConfig.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.db.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// ResetPassword sets a new password without the current one. Callers must
// have verified a reset token first.
func (s *UserService) ResetPassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	newHash, err := s.passwordConfig.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	if err := s.db.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// MarkEmailVerified flags the user's email as verified.
func (s *UserService) MarkEmailVerified(ctx context.Context, userID uuid.UUID) error {
	if err := s.db.SetEmailVerified(ctx, userID); err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	return nil
}

// UpdateUser updates mutable account fields.
func (s *UserService) UpdateUser(ctx context.Context, userID uuid.UUID, name, phone string) (*types.User, error) {
	if err := s.db.UpdateUser(ctx, userID, name, phone); err != nil {
		if err.Error() == fmt.Sprintf("user not found: %s", userID) {
			return nil, &ErrUserNotFound{UserID: userID}
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	dbUser, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve updated user: %w", err)
	}
	return convertDBUserToTypesUser(dbUser), nil
}

// DeleteUser removes an account and everything attached to it.
func (s *UserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.db.DeleteUser(ctx, userID); err != nil {
		if err.Error() == fmt.Sprintf("user not found: %s", userID) {
			return &ErrUserNotFound{UserID: userID}
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
