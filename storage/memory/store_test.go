package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelsso/sentinel/domain"
	"github.com/sentinelsso/sentinel/errors"
)

func testClient() *domain.Client {
	return &domain.Client{
		ID:          "id-1",
		ClientID:    "client-1",
		Secret:      "secret-1",
		RedirectURI: "https://app.example.com/callback",
		GrantTypes:  []string{domain.GrantTypeAuthorizationCode},
		CreatedAt:   time.Now().UTC(),
	}
}

func TestClientRepositoryRoundTrip(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.CreateClient(ctx, testClient()))
	assert.ErrorIs(t, s.CreateClient(ctx, testClient()), errors.ErrDuplicateClient)

	got, err := s.GetClient(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, "client-1", got.ClientID)

	_, err = s.GetClient(ctx, "missing")
	assert.ErrorIs(t, err, errors.ErrClientNotFound)

	deleted, err := s.DeleteClient(ctx, "client-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteClient(ctx, "client-1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestGetClientWithSecretHidesWhichPartFailed(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.CreateClient(ctx, testClient()))

	_, err := s.GetClientWithSecret(ctx, "client-1", "wrong")
	assert.ErrorIs(t, err, errors.ErrClientNotFound)

	_, err = s.GetClientWithSecret(ctx, "missing", "secret-1")
	assert.ErrorIs(t, err, errors.ErrClientNotFound)

	got, err := s.GetClientWithSecret(ctx, "client-1", "secret-1")
	require.NoError(t, err)
	assert.Equal(t, "client-1", got.ClientID)
}

func TestConsumeAuthCodeExactlyOnceUnderConcurrency(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	code := &domain.AuthCode{
		ID:        "code-id",
		Code:      "the-code",
		ClientID:  "client-1",
		UserID:    "user-1",
		ExpiresAt: time.Now().UTC().Add(10 * time.Minute),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.SaveAuthCode(ctx, code))

	const workers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	var winners int

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ConsumeAuthCode(ctx, "the-code"); err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}

func TestSaveAuthCodeRejectsDuplicateValue(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	code := &domain.AuthCode{ID: "a", Code: "dup", ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, s.SaveAuthCode(ctx, code))
	assert.ErrorIs(t, s.SaveAuthCode(ctx, code), errors.ErrDuplicateCode)
}

func TestDeleteExpiredAuthCodesKeepsLiveOnes(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	live := &domain.AuthCode{ID: "l", Code: "live", ExpiresAt: time.Now().UTC().Add(time.Minute)}
	dead := &domain.AuthCode{ID: "d", Code: "dead", ExpiresAt: time.Now().UTC().Add(-time.Minute)}
	require.NoError(t, s.SaveAuthCode(ctx, live))
	require.NoError(t, s.SaveAuthCode(ctx, dead))

	require.NoError(t, s.DeleteExpiredAuthCodes(ctx))

	_, err := s.ConsumeAuthCode(ctx, "live")
	assert.NoError(t, err)
	_, err = s.ConsumeAuthCode(ctx, "dead")
	assert.ErrorIs(t, err, errors.ErrCodeNotFound)
}

func TestTokenPairStoredTogether(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	access := &domain.Token{ID: "a", TokenType: domain.TokenTypeAccess, TokenValue: "av",
		ExpiresAt: time.Now().UTC().Add(time.Hour)}
	refresh := &domain.Token{ID: "r", TokenType: domain.TokenTypeRefresh, TokenValue: "rv",
		ExpiresAt: time.Now().UTC().Add(24 * time.Hour)}
	require.NoError(t, s.StoreTokenPair(ctx, access, refresh))

	_, err := s.GetAccessToken(ctx, "av")
	assert.NoError(t, err)
	_, err = s.GetRefreshToken(ctx, "rv")
	assert.NoError(t, err)

	// Access-only storage for the refresh grant.
	solo := &domain.Token{ID: "s", TokenType: domain.TokenTypeAccess, TokenValue: "sv",
		ExpiresAt: time.Now().UTC().Add(time.Hour)}
	require.NoError(t, s.StoreTokenPair(ctx, solo, nil))
	_, err = s.GetAccessToken(ctx, "sv")
	assert.NoError(t, err)
}

func TestDeleteTokensReportExistence(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	access := &domain.Token{ID: "a", TokenType: domain.TokenTypeAccess, TokenValue: "av",
		ExpiresAt: time.Now().UTC().Add(time.Hour)}
	require.NoError(t, s.StoreTokenPair(ctx, access, nil))

	deleted, err := s.DeleteAccessToken(ctx, "av")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteAccessToken(ctx, "av")
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = s.DeleteRefreshToken(ctx, "never")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestStoreReturnsCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.CreateClient(ctx, testClient()))

	got, err := s.GetClient(ctx, "client-1")
	require.NoError(t, err)
	got.Secret = "mutated"
	got.GrantTypes[0] = "mutated"

	again, err := s.GetClient(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, "secret-1", again.Secret)
	assert.Equal(t, domain.GrantTypeAuthorizationCode, again.GrantTypes[0])
}

func TestUserRepositoryRoundTrip(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	user := &domain.User{ID: "u1", Username: "alice", PasswordHash: "hash"}
	require.NoError(t, s.CreateUser(ctx, user))
	assert.ErrorIs(t, s.CreateUser(ctx, &domain.User{ID: "u2", Username: "alice"}), errors.ErrDuplicateUser)

	byID, err := s.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byName, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", byName.ID)

	_, err = s.GetUserByUsername(ctx, "bob")
	assert.ErrorIs(t, err, errors.ErrUserNotFound)
}

func TestListClientsSorted(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	for i := 3; i >= 1; i-- {
		c := testClient()
		c.ID = fmt.Sprintf("id-%d", i)
		c.ClientID = fmt.Sprintf("client-%d", i)
		require.NoError(t, s.CreateClient(ctx, c))
	}

	clients, err := s.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 3)
	assert.Equal(t, "client-1", clients[0].ClientID)
	assert.Equal(t, "client-3", clients[2].ClientID)
}
