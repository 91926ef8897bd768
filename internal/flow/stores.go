// Package flow carries an authorize request across the interactive login
// detour: the request is suspended under a correlation token, the user
// authenticates, and the request resumes exactly once.
package flow

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

var (
	ErrPendingNotFound = errors.New("pending authorization not found")
	ErrSessionNotFound = errors.New("session not found")
)

// newCorrelationToken mints an unguessable identifier. 32 bytes of entropy,
// URL-safe without padding so it survives query strings and cookies.
func newCorrelationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate correlation token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// PendingStore holds suspended authorize requests. Entries expire on their
// own; Consume removes the entry so each suspension resumes at most once.
type PendingStore struct {
	cache *ttlcache.Cache[string, *PendingAuthorization]
	ttl   time.Duration
}

// NewPendingStore creates a pending-authorization store whose entries live
// for ttl.
func NewPendingStore(ttl time.Duration) *PendingStore {
	c := ttlcache.New(
		ttlcache.WithTTL[string, *PendingAuthorization](ttl),
		ttlcache.WithDisableTouchOnHit[string, *PendingAuthorization](),
	)
	go c.Start()
	return &PendingStore{cache: c, ttl: ttl}
}

// Suspend stores the request under a freshly minted correlation token and
// returns the token.
func (s *PendingStore) Suspend(pending *PendingAuthorization) (string, error) {
	token, err := newCorrelationToken()
	if err != nil {
		return "", err
	}

	now := time.Now()
	pending.ID = token
	pending.CreatedAt = now
	pending.ExpiresAt = now.Add(s.ttl)

	s.cache.Set(token, pending, s.ttl)
	return token, nil
}

// Peek returns the suspended request without consuming it. Used to validate
// the correlation token before showing the login form.
func (s *PendingStore) Peek(token string) (*PendingAuthorization, error) {
	item := s.cache.Get(token)
	if item == nil {
		return nil, ErrPendingNotFound
	}
	return item.Value(), nil
}

// Consume returns the suspended request and removes it in one cache
// operation, so of any number of concurrent callers exactly one receives the
// record and every other fails.
func (s *PendingStore) Consume(token string) (*PendingAuthorization, error) {
	item, present := s.cache.GetAndDelete(token)
	if !present || item == nil {
		return nil, ErrPendingNotFound
	}
	return item.Value(), nil
}

// Close stops the background expiry goroutine.
func (s *PendingStore) Close() {
	s.cache.Stop()
}

// SessionStore holds authenticated browser sessions keyed by the cookie
// value.
type SessionStore struct {
	cache *ttlcache.Cache[string, *Session]
	ttl   time.Duration
}

// NewSessionStore creates a session store whose sessions live for ttl.
func NewSessionStore(ttl time.Duration) *SessionStore {
	c := ttlcache.New(
		ttlcache.WithTTL[string, *Session](ttl),
		ttlcache.WithDisableTouchOnHit[string, *Session](),
	)
	go c.Start()
	return &SessionStore{cache: c, ttl: ttl}
}

// Create opens a session for the user and returns it. The session ID doubles
// as the cookie value, so it is minted with the same entropy as a
// correlation token.
func (s *SessionStore) Create(userID string) (*Session, error) {
	id, err := newCorrelationToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &Session{
		ID:              id,
		UserID:          userID,
		AuthenticatedAt: now,
		ExpiresAt:       now.Add(s.ttl),
	}
	s.cache.Set(id, session, s.ttl)
	return session, nil
}

// Get returns the session for a cookie value, or ErrSessionNotFound.
func (s *SessionStore) Get(id string) (*Session, error) {
	item := s.cache.Get(id)
	if item == nil {
		return nil, ErrSessionNotFound
	}
	return item.Value(), nil
}

// Delete ends a session. Missing sessions are not an error.
func (s *SessionStore) Delete(id string) {
	s.cache.Delete(id)
}

// Close stops the background expiry goroutine.
func (s *SessionStore) Close() {
	s.cache.Stop()
}
