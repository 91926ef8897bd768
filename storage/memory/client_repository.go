package memory

import (
	"context"
	"crypto/subtle"
	"sort"

	"github.com/sentinelsso/sentinel/domain"
	"github.com/sentinelsso/sentinel/errors"
)

// CreateClient implements domain.ClientRepository.
func (s *Store) CreateClient(_ context.Context, client *domain.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[client.ClientID]; ok {
		return errors.ErrDuplicateClient
	}
	s.clients[client.ClientID] = cloneClient(client)
	return nil
}

// GetClient implements domain.ClientRepository.
func (s *Store) GetClient(_ context.Context, clientID string) (*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[clientID]
	if !ok {
		return nil, errors.ErrClientNotFound
	}
	return cloneClient(c), nil
}

// GetClientWithSecret implements domain.ClientRepository. The secret check is
// constant time so a missing client and a wrong secret are indistinguishable
// by timing.
func (s *Store) GetClientWithSecret(_ context.Context, clientID, secret string) (*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[clientID]
	if !ok {
		return nil, errors.ErrClientNotFound
	}
	if subtle.ConstantTimeCompare([]byte(c.Secret), []byte(secret)) != 1 {
		return nil, errors.ErrClientNotFound
	}
	return cloneClient(c), nil
}

// ListClients implements domain.ClientRepository.
func (s *Store) ListClients(_ context.Context) ([]*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, cloneClient(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientID < out[j].ClientID })
	return out, nil
}

// DeleteClient implements domain.ClientRepository.
func (s *Store) DeleteClient(_ context.Context, clientID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[clientID]; !ok {
		return false, nil
	}
	delete(s.clients, clientID)
	return true, nil
}
