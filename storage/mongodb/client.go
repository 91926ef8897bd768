// Package mongodb implements the persistence contract on MongoDB. One
// document per client, code, token, and user; uniqueness is enforced by
// indexes so duplicate detection works across nodes.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/v2/mongo/otelmongo"
)

// Collection names.
const (
	ClientsCollection  = "oauth_clients"
	CodesCollection    = "oauth_auth_codes"
	TokensCollection   = "oauth_tokens"
	RefreshCollection  = "oauth_refresh_tokens"
	UsersCollection    = "oauth_users"
	SessionsCollection = "oauth_user_sessions"
)

// Connect establishes an instrumented MongoDB connection and verifies it with
// a ping. Callers own the returned client and must Disconnect it on shutdown.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetMonitor(otelmongo.NewMonitor())

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("failed to ping mongodb primary: %w", err)
	}

	return client, client.Database(dbName), nil
}

// EnsureIndexes creates the unique indexes duplicate detection relies on.
// Index creation is idempotent, so this runs on every startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	indexes := []struct {
		collection string
		key        string
	}{
		{ClientsCollection, "client_id"},
		{CodesCollection, "code"},
		{TokensCollection, "token_value"},
		{RefreshCollection, "token_value"},
		{UsersCollection, "username"},
	}

	for _, idx := range indexes {
		_, err := db.Collection(idx.collection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: idx.key, Value: 1}},
			Options: unique,
		})
		if err != nil {
			return fmt.Errorf("failed to create index on %s: %w", idx.collection, err)
		}
	}

	return nil
}

// isDuplicateKey reports whether err is a unique index violation.
func isDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
