package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(value string, ttl time.Duration) *TokenEntry {
	now := time.Now().UTC()
	return &TokenEntry{
		ID:         "id-" + value,
		TokenType:  "access_token",
		TokenValue: value,
		ClientID:   "client-1",
		UserID:     "user-1",
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
	}
}

func TestMemoryTokenStoreRoundTrip(t *testing.T) {
	s := NewMemoryTokenStore(time.Hour)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, newEntry("tok-1", time.Hour)))

	got, err := s.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got.TokenValue)
	assert.Equal(t, "client-1", got.ClientID)

	_, err = s.Get(ctx, "tok-2")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestMemoryTokenStoreDelete(t *testing.T) {
	s := NewMemoryTokenStore(time.Hour)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, newEntry("tok-1", time.Hour)))
	require.NoError(t, s.Delete(ctx, "tok-1"))

	_, err := s.Get(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	// Deleting a missing entry is fine.
	assert.NoError(t, s.Delete(ctx, "tok-1"))
}

func TestMemoryTokenStoreSkipsAlreadyExpired(t *testing.T) {
	s := NewMemoryTokenStore(time.Hour)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, newEntry("tok-1", -time.Minute)))

	_, err := s.Get(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.Equal(t, 0, s.Count(ctx))
}

func TestMemoryTokenStoreEntryExpires(t *testing.T) {
	s := NewMemoryTokenStore(time.Hour)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, newEntry("tok-1", 20*time.Millisecond)))
	time.Sleep(50 * time.Millisecond)

	_, err := s.Get(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestHashTokenStableAndOpaque(t *testing.T) {
	h1 := HashToken("secret-value")
	h2 := HashToken("secret-value")
	h3 := HashToken("other-value")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
	assert.NotContains(t, h1, "secret")
}
