package mongodb

import (
	"context"
	"crypto/subtle"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/sentinelsso/sentinel/domain"
	"github.com/sentinelsso/sentinel/errors"
)

// CreateClient implements domain.ClientRepository.
func (s *Store) CreateClient(ctx context.Context, client *domain.Client) error {
	_, err := s.clients.InsertOne(ctx, client)
	if err != nil {
		if isDuplicateKey(err) {
			return errors.ErrDuplicateClient
		}
		return fmt.Errorf("failed to save client: %w", err)
	}

	s.logger.Debug(ctx, "client registered", map[string]interface{}{
		"client_id": client.ClientID,
	})
	return nil
}

// GetClient implements domain.ClientRepository.
func (s *Store) GetClient(ctx context.Context, clientID string) (*domain.Client, error) {
	var client domain.Client
	err := s.clients.FindOne(ctx, bson.M{"client_id": clientID}).Decode(&client)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to retrieve client: %w", err)
	}
	return &client, nil
}

// GetClientWithSecret implements domain.ClientRepository. The record is
// fetched by id and the secret compared in constant time; a wrong secret is
// reported the same way as a missing client.
func (s *Store) GetClientWithSecret(ctx context.Context, clientID, secret string) (*domain.Client, error) {
	client, err := s.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(client.Secret), []byte(secret)) != 1 {
		return nil, errors.ErrClientNotFound
	}
	return client, nil
}

// ListClients implements domain.ClientRepository.
func (s *Store) ListClients(ctx context.Context) ([]*domain.Client, error) {
	cursor, err := s.clients.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*domain.Client
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode clients: %w", err)
	}
	return out, nil
}

// DeleteClient implements domain.ClientRepository.
func (s *Store) DeleteClient(ctx context.Context, clientID string) (bool, error) {
	res, err := s.clients.DeleteOne(ctx, bson.M{"client_id": clientID})
	if err != nil {
		return false, fmt.Errorf("failed to delete client: %w", err)
	}
	return res.DeletedCount > 0, nil
}
