// Package memory implements the persistence contract on process-local maps.
// It backs tests and single-node development deployments; everything is
// guarded by one mutex so multi-key operations stay atomic.
package memory

import (
	"sync"
	"time"

	"github.com/sentinelsso/sentinel/domain"
)

// Store implements domain.OAuthRepository in memory.
type Store struct {
	mu sync.RWMutex

	clients       map[string]*domain.Client   // keyed by public client id
	authCodes     map[string]*domain.AuthCode // keyed by code value
	accessTokens  map[string]*domain.Token    // keyed by token value
	refreshTokens map[string]*domain.Token    // keyed by token value
	users         map[string]*domain.User     // keyed by user id
	usersByName   map[string]*domain.User     // keyed by username

	now func() time.Time
}

var _ domain.OAuthRepository = (*Store)(nil)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		clients:       make(map[string]*domain.Client),
		authCodes:     make(map[string]*domain.AuthCode),
		accessTokens:  make(map[string]*domain.Token),
		refreshTokens: make(map[string]*domain.Token),
		users:         make(map[string]*domain.User),
		usersByName:   make(map[string]*domain.User),
		now:           time.Now,
	}
}

func cloneClient(c *domain.Client) *domain.Client {
	clone := *c
	clone.GrantTypes = append([]string(nil), c.GrantTypes...)
	return &clone
}

func cloneCode(c *domain.AuthCode) *domain.AuthCode {
	clone := *c
	return &clone
}

func cloneToken(t *domain.Token) *domain.Token {
	clone := *t
	return &clone
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	return &clone
}
