package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/sentinelsso/sentinel/domain"
	"github.com/sentinelsso/sentinel/errors"
)

// StoreTokenPair implements domain.TokenRepository. The two inserts are not
// transactional, so a failed refresh insert is compensated by deleting the
// access token; the pair is never half-retrievable.
func (s *Store) StoreTokenPair(ctx context.Context, access, refresh *domain.Token) error {
	if _, err := s.accessTokens.InsertOne(ctx, access); err != nil {
		return fmt.Errorf("failed to save access token: %w", err)
	}

	if refresh == nil {
		return nil
	}

	if _, err := s.refreshTokens.InsertOne(ctx, refresh); err != nil {
		if _, delErr := s.accessTokens.DeleteOne(ctx, bson.M{"token_value": access.TokenValue}); delErr != nil {
			s.logger.Error(ctx, "failed to roll back access token after refresh insert failure", delErr, map[string]interface{}{
				"client_id": access.ClientID,
			})
		}
		return fmt.Errorf("failed to save refresh token: %w", err)
	}

	return nil
}

// GetAccessToken implements domain.TokenRepository.
func (s *Store) GetAccessToken(ctx context.Context, tokenValue string) (*domain.Token, error) {
	return s.findToken(ctx, s.accessTokens, tokenValue)
}

// GetRefreshToken implements domain.TokenRepository.
func (s *Store) GetRefreshToken(ctx context.Context, tokenValue string) (*domain.Token, error) {
	return s.findToken(ctx, s.refreshTokens, tokenValue)
}

func (s *Store) findToken(ctx context.Context, col *mongo.Collection, tokenValue string) (*domain.Token, error) {
	var token domain.Token
	err := col.FindOne(ctx, bson.M{"token_value": tokenValue}).Decode(&token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to retrieve token: %w", err)
	}
	return &token, nil
}

// DeleteAccessToken implements domain.TokenRepository.
func (s *Store) DeleteAccessToken(ctx context.Context, tokenValue string) (bool, error) {
	return s.deleteToken(ctx, s.accessTokens, tokenValue)
}

// DeleteRefreshToken implements domain.TokenRepository.
func (s *Store) DeleteRefreshToken(ctx context.Context, tokenValue string) (bool, error) {
	return s.deleteToken(ctx, s.refreshTokens, tokenValue)
}

func (s *Store) deleteToken(ctx context.Context, col *mongo.Collection, tokenValue string) (bool, error) {
	res, err := col.DeleteOne(ctx, bson.M{"token_value": tokenValue})
	if err != nil {
		return false, fmt.Errorf("failed to delete token: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// DeleteExpiredTokens implements domain.TokenRepository.
func (s *Store) DeleteExpiredTokens(ctx context.Context) error {
	filter := bson.M{"expires_at": bson.M{"$lte": time.Now().UTC()}}
	if _, err := s.accessTokens.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete expired access tokens: %w", err)
	}
	if _, err := s.refreshTokens.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	return nil
}
