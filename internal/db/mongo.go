package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	CollectionApprehensions = "apprehensions"
	CollectionUsers         = "users"
	CollectionRefreshTokens = "refreshtokens"
)

const connectTimeout = 5 * time.Second

// Connect opens a client, verifies connectivity, and returns the database
// handle the repositories are built on.
func Connect(ctx context.Context, uri, name string) (*mongo.Database, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client.Database(name), nil
}

// EnsureIndexes creates the indexes the query patterns rely on. Safe to run
// on every startup.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	apprehensions := []mongo.IndexModel{
		{Keys: bson.D{{Key: "dateOfApprehension", Value: -1}}},
		{Keys: bson.D{{Key: "agency", Value: 1}}},
		{Keys: bson.D{{Key: "violation", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	if _, err := database.Collection(CollectionApprehensions).Indexes().CreateMany(ctx, apprehensions); err != nil {
		return fmt.Errorf("apprehension indexes: %w", err)
	}

	users := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := database.Collection(CollectionUsers).Indexes().CreateMany(ctx, users); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}

	tokens := []mongo.IndexModel{
		{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
		// TTL index so the store reaps expired refresh tokens on its own.
		{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
	}
	if _, err := database.Collection(CollectionRefreshTokens).Indexes().CreateMany(ctx, tokens); err != nil {
		return fmt.Errorf("refresh token indexes: %w", err)
	}

	return nil
}
