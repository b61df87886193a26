package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"apprehension-service/internal/db"
	"apprehension-service/internal/model"
)

type TokenRepository struct {
	coll *mongo.Collection
}

func NewTokenRepository(database *mongo.Database) *TokenRepository {
	return &TokenRepository{coll: database.Collection(db.CollectionRefreshTokens)}
}

func (r *TokenRepository) Insert(ctx context.Context, token model.RefreshToken) error {
	if _, err := r.coll.InsertOne(ctx, token); err != nil {
		return fmt.Errorf("refresh token insert: %w", err)
	}
	return nil
}

func (r *TokenRepository) Get(ctx context.Context, token string) (*model.RefreshToken, error) {
	var stored model.RefreshToken
	if err := r.coll.FindOne(ctx, bson.M{"token": token}).Decode(&stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *TokenRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"token": token}); err != nil {
		return fmt.Errorf("refresh token delete: %w", err)
	}
	return nil
}

// DeleteForUser revokes every refresh token of one user, used when the user
// is removed.
func (r *TokenRepository) DeleteForUser(ctx context.Context, userID string) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		return fmt.Errorf("refresh token delete for user: %w", err)
	}
	return nil
}
