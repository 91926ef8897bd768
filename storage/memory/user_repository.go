package memory

import (
	"context"

	"github.com/sentinelsso/sentinel/domain"
	"github.com/sentinelsso/sentinel/errors"
)

// CreateUser implements domain.UserRepository.
func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usersByName[user.Username]; ok {
		return errors.ErrDuplicateUser
	}
	clone := cloneUser(user)
	s.users[user.ID] = clone
	s.usersByName[user.Username] = clone
	return nil
}

// GetUserByID implements domain.UserRepository.
func (s *Store) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return cloneUser(u), nil
}

// GetUserByUsername implements domain.UserRepository.
func (s *Store) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.usersByName[username]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return cloneUser(u), nil
}
