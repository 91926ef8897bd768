package services

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelsso/sentinel/cache"
	"github.com/sentinelsso/sentinel/domain"
	"github.com/sentinelsso/sentinel/errors"
	"github.com/sentinelsso/sentinel/log"
	"github.com/sentinelsso/sentinel/storage/memory"
)

func newTokenService(t *testing.T, accessTTL time.Duration) (*TokenService, *memory.Store) {
	t.Helper()

	repo := memory.NewStore()
	tokenCache := cache.NewMemoryTokenStore(time.Hour)
	t.Cleanup(func() { _ = tokenCache.Close() })

	logger := log.NewZerologAdapter(zerolog.Disabled, false)
	return NewTokenService(repo, tokenCache, logger, 10*time.Minute, accessTTL, 168*time.Hour), repo
}

func TestNewSecretEntropyAndUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		value, err := newSecret()
		require.NoError(t, err)

		decoded, err := base64.RawURLEncoding.DecodeString(value)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(decoded)*8, 128, "secret carries at least 128 bits")

		assert.False(t, seen[value], "secret repeated")
		seen[value] = true
	}
}

func TestGenerateAuthCodeBindsRequest(t *testing.T) {
	svc, repo := newTokenService(t, time.Hour)

	code, err := svc.GenerateAuthCode(context.Background(),
		"client-1", "user-1", "https://app.example.com/callback", "profile")
	require.NoError(t, err)

	assert.NotEmpty(t, code.Code)
	assert.Equal(t, "client-1", code.ClientID)
	assert.Equal(t, "user-1", code.UserID)
	assert.Equal(t, "https://app.example.com/callback", code.RedirectURI)
	assert.WithinDuration(t, time.Now().UTC().Add(10*time.Minute), code.ExpiresAt, time.Minute)

	stored, err := repo.ConsumeAuthCode(context.Background(), code.Code)
	require.NoError(t, err)
	assert.Equal(t, code.ID, stored.ID)
}

func TestGenerateTokenPairPersistsBoth(t *testing.T) {
	svc, repo := newTokenService(t, time.Hour)

	access, refresh, err := svc.GenerateTokenPair(context.Background(), "client-1", "user-1", "profile")
	require.NoError(t, err)

	gotAccess, err := repo.GetAccessToken(context.Background(), access.TokenValue)
	require.NoError(t, err)
	assert.Equal(t, domain.TokenTypeAccess, gotAccess.TokenType)

	gotRefresh, err := repo.GetRefreshToken(context.Background(), refresh.TokenValue)
	require.NoError(t, err)
	assert.Equal(t, domain.TokenTypeRefresh, gotRefresh.TokenType)

	// Values are independent secrets, not derived from one another.
	assert.NotEqual(t, access.TokenValue, refresh.TokenValue)
	assert.NotContains(t, refresh.TokenValue, access.TokenValue)
}

func TestValidateAccessTokenLazyExpiry(t *testing.T) {
	svc, _ := newTokenService(t, -time.Minute)

	access, _, err := svc.GenerateTokenPair(context.Background(), "client-1", "user-1", "")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(context.Background(), access.TokenValue)
	assert.ErrorIs(t, err, errors.ErrTokenNotFound)
}

func TestValidateAccessTokenSurvivesCacheEviction(t *testing.T) {
	svc, _ := newTokenService(t, time.Hour)

	access, _, err := svc.GenerateTokenPair(context.Background(), "client-1", "user-1", "")
	require.NoError(t, err)

	// Cold cache falls back to the repository.
	require.NoError(t, svc.cache.Delete(context.Background(), access.TokenValue))

	token, err := svc.ValidateAccessToken(context.Background(), access.TokenValue)
	require.NoError(t, err)
	assert.Equal(t, access.ID, token.ID)
}

func TestRevokeAccessTokenEvictsCache(t *testing.T) {
	svc, _ := newTokenService(t, time.Hour)

	access, _, err := svc.GenerateTokenPair(context.Background(), "client-1", "user-1", "")
	require.NoError(t, err)

	deleted, err := svc.RevokeAccessToken(context.Background(), access.TokenValue)
	require.NoError(t, err)
	assert.True(t, deleted)

	// Neither the cache nor the repository may answer for it afterwards.
	_, err = svc.ValidateAccessToken(context.Background(), access.TokenValue)
	assert.ErrorIs(t, err, errors.ErrTokenNotFound)

	deleted, err = svc.RevokeAccessToken(context.Background(), access.TokenValue)
	require.NoError(t, err)
	assert.False(t, deleted, "second revoke reports nothing deleted")
}

func TestSweepRemovesExpiredRows(t *testing.T) {
	svc, repo := newTokenService(t, -time.Minute)

	access, _, err := svc.GenerateTokenPair(context.Background(), "client-1", "user-1", "")
	require.NoError(t, err)

	require.NoError(t, svc.Sweep(context.Background()))

	_, err = repo.GetAccessToken(context.Background(), access.TokenValue)
	assert.ErrorIs(t, err, errors.ErrTokenNotFound)
}
