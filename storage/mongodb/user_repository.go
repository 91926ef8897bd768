package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/sentinelsso/sentinel/domain"
	"github.com/sentinelsso/sentinel/errors"
)

// CreateUser implements domain.UserRepository.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.users.InsertOne(ctx, user)
	if err != nil {
		if isDuplicateKey(err) {
			return errors.ErrDuplicateUser
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetUserByID implements domain.UserRepository.
func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

// GetUserByUsername implements domain.UserRepository.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"username": username})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := s.users.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &user, nil
}
