package cache

import (
	"context"
	"errors"
	"time"
)

// ErrEntryNotFound is returned by Get when the token is not cached. A cache
// miss is not an authentication failure; callers fall back to the repository.
var ErrEntryNotFound = errors.New("cache entry not found")

// TokenEntry is the cached projection of an issued token. It carries just
// enough to answer bearer authentication without touching the repository.
type TokenEntry struct {
	ID         string    `redis:"id"`
	TokenType  string    `redis:"token_type"`
	TokenValue string    `redis:"token_value"`
	ClientID   string    `redis:"client_id"`
	UserID     string    `redis:"user_id"`
	Scope      string    `redis:"scope"`
	ExpiresAt  time.Time `redis:"expires_at"`
	CreatedAt  time.Time `redis:"created_at"`
}

// TokenStore is a read-through cache keyed by the hash of the token value.
// Entries expire on their own; Delete exists so revocation can evict
// immediately instead of waiting for the TTL.
type TokenStore interface {
	Set(ctx context.Context, entry *TokenEntry) error
	Get(ctx context.Context, tokenValue string) (*TokenEntry, error)
	Delete(ctx context.Context, tokenValue string) error
	DeleteExpired(ctx context.Context) error
	Count(ctx context.Context) int
	Close() error
}
