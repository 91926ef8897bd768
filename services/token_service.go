package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelsso/sentinel/cache"
	"github.com/sentinelsso/sentinel/domain"
	"github.com/sentinelsso/sentinel/errors"
	"github.com/sentinelsso/sentinel/log"
)

// TokenService mints, validates, and revokes authorization codes and bearer
// tokens. All secrets are opaque random values; nothing is ever derived from
// client input or from another secret.
type TokenService struct {
	repo   domain.OAuthRepository
	cache  cache.TokenStore
	logger log.Logger

	codeTTL    time.Duration
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService creates the lifecycle manager.
func NewTokenService(repo domain.OAuthRepository, tokenCache cache.TokenStore, logger log.Logger,
	codeTTL, accessTTL, refreshTTL time.Duration,
) *TokenService {
	return &TokenService{
		repo:       repo,
		cache:      tokenCache,
		logger:     logger,
		codeTTL:    codeTTL,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// newSecret returns a fresh opaque secret with 256 bits of entropy, URL-safe
// without padding.
func newSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateAuthCode mints and persists a single-use authorization code bound
// to the client, user, and the redirect URI the authorize request was
// validated against.
func (s *TokenService) GenerateAuthCode(ctx context.Context, clientID, userID, redirectURI, scope string) (*domain.AuthCode, error) {
	value, err := newSecret()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	code := &domain.AuthCode{
		ID:          uuid.NewString(),
		Code:        value,
		ClientID:    clientID,
		UserID:      userID,
		RedirectURI: redirectURI,
		Scope:       scope,
		ExpiresAt:   now.Add(s.codeTTL),
		CreatedAt:   now,
	}

	if err := s.repo.SaveAuthCode(ctx, code); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "authorization code issued", map[string]interface{}{
		"client_id": clientID,
		"user_id":   userID,
	})
	return code, nil
}

func (s *TokenService) newToken(tokenType, clientID, userID, scope string, ttl time.Duration) (*domain.Token, error) {
	value, err := newSecret()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &domain.Token{
		ID:         uuid.NewString(),
		TokenType:  tokenType,
		TokenValue: value,
		ClientID:   clientID,
		UserID:     userID,
		Scope:      scope,
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
	}, nil
}

// GenerateTokenPair mints an access token and its paired refresh token,
// persists them as one logical unit, and primes the validation cache.
func (s *TokenService) GenerateTokenPair(ctx context.Context, clientID, userID, scope string) (*domain.Token, *domain.Token, error) {
	access, err := s.newToken(domain.TokenTypeAccess, clientID, userID, scope, s.accessTTL)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := s.newToken(domain.TokenTypeRefresh, clientID, userID, scope, s.refreshTTL)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repo.StoreTokenPair(ctx, access, refresh); err != nil {
		return nil, nil, err
	}

	s.cacheToken(ctx, access)

	s.logger.Info(ctx, "token pair issued", map[string]interface{}{
		"client_id": clientID,
		"user_id":   userID,
	})
	return access, refresh, nil
}

// IssueAccessToken mints a standalone access token for the refresh grant.
// The presented refresh token stays valid and is returned unchanged by the
// caller, so no refresh token is minted here.
func (s *TokenService) IssueAccessToken(ctx context.Context, clientID, userID, scope string) (*domain.Token, error) {
	access, err := s.newToken(domain.TokenTypeAccess, clientID, userID, scope, s.accessTTL)
	if err != nil {
		return nil, err
	}

	if err := s.repo.StoreTokenPair(ctx, access, nil); err != nil {
		return nil, err
	}

	s.cacheToken(ctx, access)
	return access, nil
}

func (s *TokenService) cacheToken(ctx context.Context, t *domain.Token) {
	err := s.cache.Set(ctx, &cache.TokenEntry{
		ID:         t.ID,
		TokenType:  t.TokenType,
		TokenValue: t.TokenValue,
		ClientID:   t.ClientID,
		UserID:     t.UserID,
		Scope:      t.Scope,
		ExpiresAt:  t.ExpiresAt,
		CreatedAt:  t.CreatedAt,
	})
	if err != nil {
		// Cache failures degrade to repository lookups, never to auth failures.
		s.logger.Warn(ctx, "failed to cache token", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// ValidateAccessToken resolves a bearer token value to its live record.
// Expiry is evaluated lazily here; an expired row answers exactly like a
// missing one.
func (s *TokenService) ValidateAccessToken(ctx context.Context, tokenValue string) (*domain.Token, error) {
	now := time.Now().UTC()

	if entry, err := s.cache.Get(ctx, tokenValue); err == nil {
		token := &domain.Token{
			ID:         entry.ID,
			TokenType:  entry.TokenType,
			TokenValue: entry.TokenValue,
			ClientID:   entry.ClientID,
			UserID:     entry.UserID,
			Scope:      entry.Scope,
			ExpiresAt:  entry.ExpiresAt,
			CreatedAt:  entry.CreatedAt,
		}
		if token.Expired(now) {
			return nil, errors.ErrTokenNotFound
		}
		return token, nil
	}

	token, err := s.repo.GetAccessToken(ctx, tokenValue)
	if err != nil {
		return nil, err
	}
	if token.Expired(now) {
		return nil, errors.ErrTokenNotFound
	}

	s.cacheToken(ctx, token)
	return token, nil
}

// RevokeAccessToken deletes an access token unconditionally, reporting
// whether a record existed. Expired-but-present tokens delete successfully.
func (s *TokenService) RevokeAccessToken(ctx context.Context, tokenValue string) (bool, error) {
	deleted, err := s.repo.DeleteAccessToken(ctx, tokenValue)
	if err != nil {
		return false, err
	}
	if delErr := s.cache.Delete(ctx, tokenValue); delErr != nil {
		s.logger.Warn(ctx, "failed to evict revoked token from cache", map[string]interface{}{
			"error": delErr.Error(),
		})
	}
	return deleted, nil
}

// RevokeRefreshToken deletes a refresh token unconditionally, reporting
// whether a record existed.
func (s *TokenService) RevokeRefreshToken(ctx context.Context, tokenValue string) (bool, error) {
	return s.repo.DeleteRefreshToken(ctx, tokenValue)
}

// Sweep removes expired codes and tokens. Correctness never depends on it;
// expiry is enforced lazily at lookup time.
func (s *TokenService) Sweep(ctx context.Context) error {
	if err := s.repo.DeleteExpiredAuthCodes(ctx); err != nil {
		return err
	}
	if err := s.repo.DeleteExpiredTokens(ctx); err != nil {
		return err
	}
	return s.cache.DeleteExpired(ctx)
}
