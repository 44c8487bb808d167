package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(id auth.Identity) (string, time.Time, error)
}

// RegisterInput is the data required to create an account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
}

// ProfileInput holds the editable profile fields. Email identifies the user.
type ProfileInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// UserService handles accounts and credentials.
type UserService struct {
	users  repositories.UserRepository
	hasher Hasher
	tokens TokenIssuer
	logger *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users repositories.UserRepository, hasher Hasher, tokens TokenIssuer, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a user with a hashed password. An email already in use
// yields a Conflict, whether found by the pre-check or by the unique index.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperror.NewConflict("User already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.NewInternal("User creation failed", err)
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperror.NewInternal("User creation failed", err)
	}

	user := &models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Password:  hashed,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperror.NewConflict("Email already exists")
		}
		return nil, apperror.NewInternal("User creation failed", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login checks the credentials and issues a token.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeError(err, "User not found", "Server error")
	}

	ok, err := s.hasher.Verify(password, user.Password)
	if err != nil {
		return nil, apperror.NewInternal("Server error", err)
	}
	if !ok {
		return nil, apperror.NewInvalidInput("Invalid credentials")
	}

	token, expiresAt, err := s.tokens.Issue(auth.Identity{
		ID:        user.ID,
		FirstName: user.FirstName,
		Email:     user.Email,
	})
	if err != nil {
		return nil, apperror.NewInternal("Server error", err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// UpdateProfile replaces the profile fields of the user with in.Email.
func (s *UserService) UpdateProfile(ctx context.Context, in ProfileInput) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, storeError(err, "User not found", "User update failed")
	}

	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.Phone = in.Phone
	if err := s.users.Update(ctx, user); err != nil {
		return nil, storeError(err, "User not found", "User update failed")
	}
	return user, nil
}

// UpdateAddress replaces the address of the user with the given email.
func (s *UserService) UpdateAddress(ctx context.Context, email string, addr models.Address) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeError(err, "User not found", "User address update failed")
	}

	user.Address = addr
	if err := s.users.Update(ctx, user); err != nil {
		return nil, storeError(err, "User not found", "User address update failed")
	}
	return user, nil
}

// Delete removes a user permanently.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return storeError(err, "User not found", "User deletion failed")
	}
	s.logger.InfoContext(ctx, "user deleted", "user_id", id)
	return nil
}

// GetByEmail returns the user with the given email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeError(err, "User not found", "Server error")
	}
	return user, nil
}

// List returns every user. An empty store is reported as NotFound.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperror.NewInternal("Server error", err)
	}
	if len(users) == 0 {
		return nil, apperror.NewNotFound("User not found")
	}
	return users, nil
}
