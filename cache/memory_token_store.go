package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryTokenStore implements TokenStore on ttlcache for single-node
// deployments.
type MemoryTokenStore struct {
	cache *ttlcache.Cache[string, *TokenEntry]
}

// NewMemoryTokenStore creates an in-memory token store. defaultTTL bounds
// entries whose ExpiresAt is not in the future.
func NewMemoryTokenStore(defaultTTL time.Duration) *MemoryTokenStore {
	c := ttlcache.New(
		ttlcache.WithTTL[string, *TokenEntry](defaultTTL),
		ttlcache.WithDisableTouchOnHit[string, *TokenEntry](),
	)

	go c.Start()

	return &MemoryTokenStore{cache: c}
}

// Set caches the entry until its expiry.
func (s *MemoryTokenStore) Set(_ context.Context, entry *TokenEntry) error {
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	s.cache.Set(HashToken(entry.TokenValue), entry, ttl)
	return nil
}

// Get returns the cached entry or ErrEntryNotFound.
func (s *MemoryTokenStore) Get(_ context.Context, tokenValue string) (*TokenEntry, error) {
	item := s.cache.Get(HashToken(tokenValue))
	if item == nil {
		return nil, ErrEntryNotFound
	}
	return item.Value(), nil
}

// Delete evicts the entry. Missing entries are not an error.
func (s *MemoryTokenStore) Delete(_ context.Context, tokenValue string) error {
	s.cache.Delete(HashToken(tokenValue))
	return nil
}

// DeleteExpired forces a cleanup pass. ttlcache expires entries on its own;
// this just makes the housekeeping sweep deterministic.
func (s *MemoryTokenStore) DeleteExpired(_ context.Context) error {
	s.cache.DeleteExpired()
	return nil
}

// Count returns the number of cached entries.
func (s *MemoryTokenStore) Count(_ context.Context) int {
	return s.cache.Len()
}

// Close stops the background cleanup goroutine.
func (s *MemoryTokenStore) Close() error {
	s.cache.Stop()
	return nil
}
