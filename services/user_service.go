package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sentinelsso/sentinel/domain"
	"github.com/sentinelsso/sentinel/errors"
	"github.com/sentinelsso/sentinel/log"
)

// UserService manages resource-owner accounts and credential checks.
type UserService struct {
	repo   domain.UserRepository
	logger log.Logger
}

// NewUserService creates the user account service.
func NewUserService(repo domain.UserRepository, logger log.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// Register creates a user with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, errors.NewInvalidRequest("username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.NewServerError("failed to hash password")
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", map[string]interface{}{
		"username": username,
	})
	return user, nil
}

// VerifyCredentials checks a username/password pair and returns the user.
// A missing user and a wrong password both return ErrInvalidCredentials.
func (s *UserService) VerifyCredentials(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			return nil, errors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errors.ErrInvalidCredentials
	}

	return user, nil
}
