package memory

import (
	"context"

	"github.com/sentinelsso/sentinel/domain"
	"github.com/sentinelsso/sentinel/errors"
)

// StoreTokenPair implements domain.TokenRepository. Both writes happen under
// one lock, so the pair is visible all-or-nothing.
func (s *Store) StoreTokenPair(_ context.Context, access, refresh *domain.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessTokens[access.TokenValue] = cloneToken(access)
	if refresh != nil {
		s.refreshTokens[refresh.TokenValue] = cloneToken(refresh)
	}
	return nil
}

// GetAccessToken implements domain.TokenRepository.
func (s *Store) GetAccessToken(_ context.Context, tokenValue string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.accessTokens[tokenValue]
	if !ok {
		return nil, errors.ErrTokenNotFound
	}
	return cloneToken(t), nil
}

// GetRefreshToken implements domain.TokenRepository.
func (s *Store) GetRefreshToken(_ context.Context, tokenValue string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.refreshTokens[tokenValue]
	if !ok {
		return nil, errors.ErrTokenNotFound
	}
	return cloneToken(t), nil
}

// DeleteAccessToken implements domain.TokenRepository.
func (s *Store) DeleteAccessToken(_ context.Context, tokenValue string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accessTokens[tokenValue]; !ok {
		return false, nil
	}
	delete(s.accessTokens, tokenValue)
	return true, nil
}

// DeleteRefreshToken implements domain.TokenRepository.
func (s *Store) DeleteRefreshToken(_ context.Context, tokenValue string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.refreshTokens[tokenValue]; !ok {
		return false, nil
	}
	delete(s.refreshTokens, tokenValue)
	return true, nil
}

// DeleteExpiredTokens implements domain.TokenRepository.
func (s *Store) DeleteExpiredTokens(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for value, t := range s.accessTokens {
		if t.Expired(now) {
			delete(s.accessTokens, value)
		}
	}
	for value, t := range s.refreshTokens {
		if t.Expired(now) {
			delete(s.refreshTokens, value)
		}
	}
	return nil
}
