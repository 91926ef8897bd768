package mongodb

import (
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/sentinelsso/sentinel/domain"
	"github.com/sentinelsso/sentinel/log"
)

// Store implements domain.OAuthRepository on MongoDB collections.
type Store struct {
	clients       *mongo.Collection
	authCodes     *mongo.Collection
	accessTokens  *mongo.Collection
	refreshTokens *mongo.Collection
	users         *mongo.Collection

	logger log.Logger
}

var _ domain.OAuthRepository = (*Store)(nil)

// NewStore wires the repository onto its collections.
func NewStore(db *mongo.Database, logger log.Logger) *Store {
	return &Store{
		clients:       db.Collection(ClientsCollection),
		authCodes:     db.Collection(CodesCollection),
		accessTokens:  db.Collection(TokensCollection),
		refreshTokens: db.Collection(RefreshCollection),
		users:         db.Collection(UsersCollection),
		logger:        logger,
	}
}
