package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelsso/sentinel/domain"
	"github.com/sentinelsso/sentinel/errors"
	"github.com/sentinelsso/sentinel/log"
)

// ClientService manages client registrations.
type ClientService struct {
	repo   domain.ClientRepository
	logger log.Logger
}

// NewClientService creates the client registry service.
func NewClientService(repo domain.ClientRepository, logger log.Logger) *ClientService {
	return &ClientService{repo: repo, logger: logger}
}

// Register persists a new client. The secret arrives from the operator; it is
// stored as given and compared in constant time at token-endpoint auth.
func (s *ClientService) Register(ctx context.Context, clientID, secret, name, redirectURI string, grantTypes []string) (*domain.Client, error) {
	if clientID == "" || secret == "" || redirectURI == "" {
		return nil, errors.NewInvalidRequest("clientId, secret, and redirectUri are required")
	}
	if len(grantTypes) == 0 {
		grantTypes = []string{domain.GrantTypeAuthorizationCode, domain.GrantTypeRefreshToken}
	}

	client := &domain.Client{
		ID:          uuid.NewString(),
		ClientID:    clientID,
		Secret:      secret,
		Name:        name,
		RedirectURI: redirectURI,
		GrantTypes:  grantTypes,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.CreateClient(ctx, client); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "client registered", map[string]interface{}{
		"client_id": clientID,
	})
	return client.WithoutSecret(), nil
}

// Get returns a client by its public identifier, without the secret.
func (s *ClientService) Get(ctx context.Context, clientID string) (*domain.Client, error) {
	client, err := s.repo.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return client.WithoutSecret(), nil
}

// List returns all registered clients without their secrets.
func (s *ClientService) List(ctx context.Context) ([]*domain.Client, error) {
	clients, err := s.repo.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Client, 0, len(clients))
	for _, c := range clients {
		out = append(out, c.WithoutSecret())
	}
	return out, nil
}

// Delete removes a client registration, reporting whether one existed.
func (s *ClientService) Delete(ctx context.Context, clientID string) (bool, error) {
	deleted, err := s.repo.DeleteClient(ctx, clientID)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Info(ctx, "client deleted", map[string]interface{}{
			"client_id": clientID,
		})
	}
	return deleted, nil
}
