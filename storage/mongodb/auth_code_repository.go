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

// SaveAuthCode implements domain.AuthCodeRepository.
func (s *Store) SaveAuthCode(ctx context.Context, code *domain.AuthCode) error {
	_, err := s.authCodes.InsertOne(ctx, code)
	if err != nil {
		if isDuplicateKey(err) {
			return errors.ErrDuplicateCode
		}
		return fmt.Errorf("failed to save authorization code: %w", err)
	}

	s.logger.Debug(ctx, "authorization code saved", map[string]interface{}{
		"client_id": code.ClientID,
		"user_id":   code.UserID,
	})
	return nil
}

// ConsumeAuthCode implements domain.AuthCodeRepository. FindOneAndDelete is a
// single server-side operation, so under concurrent exchange attempts exactly
// one caller receives the document and every other sees no match.
func (s *Store) ConsumeAuthCode(ctx context.Context, codeValue string) (*domain.AuthCode, error) {
	var code domain.AuthCode
	err := s.authCodes.FindOneAndDelete(ctx, bson.M{"code": codeValue}).Decode(&code)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to consume authorization code: %w", err)
	}
	return &code, nil
}

// DeleteExpiredAuthCodes implements domain.AuthCodeRepository.
func (s *Store) DeleteExpiredAuthCodes(ctx context.Context) error {
	_, err := s.authCodes.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("failed to delete expired authorization codes: %w", err)
	}
	return nil
}
