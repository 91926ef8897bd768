package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sentinelsso/sentinel/cache"
)

// TokenStore implements cache.TokenStore on Redis for multi-node
// deployments. Entries are stored as hashes and expired by Redis itself, so
// DeleteExpired has nothing to do beyond returning.
type TokenStore struct {
	client *redis.Client
	prefix string
}

// NewTokenStore creates a Redis-backed token store. prefix namespaces the
// keys so several services can share one Redis.
func NewTokenStore(client *redis.Client, prefix string) *TokenStore {
	return &TokenStore{client: client, prefix: prefix}
}

func (r *TokenStore) redisKey(tokenValue string) string {
	return fmt.Sprintf("%s:token:%s", r.prefix, cache.HashToken(tokenValue))
}

// Set stores the entry and lets Redis expire it at ExpiresAt.
func (r *TokenStore) Set(ctx context.Context, entry *cache.TokenEntry) error {
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	key := r.redisKey(entry.TokenValue)
	fields := map[string]interface{}{
		"id":          entry.ID,
		"token_type":  entry.TokenType,
		"token_value": entry.TokenValue,
		"client_id":   entry.ClientID,
		"user_id":     entry.UserID,
		"scope":       entry.Scope,
		"expires_at":  entry.ExpiresAt.Unix(),
		"created_at":  entry.CreatedAt.Unix(),
	}

	if _, err := r.client.HSet(ctx, key, fields).Result(); err != nil {
		return fmt.Errorf("failed to set token in redis: %w", err)
	}
	if _, err := r.client.Expire(ctx, key, ttl).Result(); err != nil {
		return fmt.Errorf("failed to set token expiry in redis: %w", err)
	}

	return nil
}

// Get returns the cached entry or cache.ErrEntryNotFound.
func (r *TokenStore) Get(ctx context.Context, tokenValue string) (*cache.TokenEntry, error) {
	res, err := r.client.HGetAll(ctx, r.redisKey(tokenValue)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get token from redis: %w", err)
	}
	if len(res) == 0 {
		return nil, cache.ErrEntryNotFound
	}

	expiresAt, err := parseUnix(res["expires_at"])
	if err != nil {
		return nil, fmt.Errorf("corrupt expires_at in redis entry: %w", err)
	}
	createdAt, err := parseUnix(res["created_at"])
	if err != nil {
		return nil, fmt.Errorf("corrupt created_at in redis entry: %w", err)
	}

	return &cache.TokenEntry{
		ID:         res["id"],
		TokenType:  res["token_type"],
		TokenValue: res["token_value"],
		ClientID:   res["client_id"],
		UserID:     res["user_id"],
		Scope:      res["scope"],
		ExpiresAt:  expiresAt,
		CreatedAt:  createdAt,
	}, nil
}

// Delete evicts the entry.
func (r *TokenStore) Delete(ctx context.Context, tokenValue string) error {
	if _, err := r.client.Del(ctx, r.redisKey(tokenValue)).Result(); err != nil {
		return fmt.Errorf("failed to delete token from redis: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op; Redis expires entries via the key TTL.
func (r *TokenStore) DeleteExpired(_ context.Context) error {
	return nil
}

// Count scans for the number of cached entries. Intended for diagnostics,
// not hot paths.
func (r *TokenStore) Count(ctx context.Context) int {
	pattern := fmt.Sprintf("%s:token:*", r.prefix)
	var count int
	var cursor uint64

	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return count
		}
		count += len(keys)
		if next == 0 {
			return count
		}
		cursor = next
	}
}

// Close releases the underlying client connection.
func (r *TokenStore) Close() error {
	return r.client.Close()
}

func parseUnix(s string) (time.Time, error) {
	var sec int64
	if _, err := fmt.Sscanf(s, "%d", &sec); err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0).UTC(), nil
}
