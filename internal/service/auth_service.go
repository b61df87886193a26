package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/crypto/bcrypt"

	"apprehension-service/internal/auth"
	"apprehension-service/internal/model"
)

// TokenRepository stores opaque refresh tokens.
type TokenRepository interface {
	Insert(ctx context.Context, token model.RefreshToken) error
	Get(ctx context.Context, token string) (*model.RefreshToken, error)
	Delete(ctx context.Context, token string) error
	DeleteForUser(ctx context.Context, userID string) error
}

// UserReader is the slice of the user store the auth flow needs.
type UserReader interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id bson.ObjectID) (*model.User, error)
}

type AuthService struct {
	users      UserReader
	tokens     TokenRepository
	manager    *auth.Manager
	refreshTTL time.Duration
}

func NewAuthService(users UserReader, tokens TokenRepository, manager *auth.Manager, refreshTTL time.Duration) *AuthService {
	return &AuthService{users: users, tokens: tokens, manager: manager, refreshTTL: refreshTTL}
}

// Login verifies the credentials and issues a fresh token pair. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.AuthTokens, *model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return tokens, user, nil
}

// Refresh rotates a refresh token: the presented token is deleted and a new
// pair is issued. Expired tokens are deleted and rejected.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.AuthTokens, *model.User, error) {
	stored, err := s.tokens.Get(ctx, refreshToken)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, nil, err
	}

	if err := s.tokens.Delete(ctx, stored.Token); err != nil {
		return nil, nil, err
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, nil, ErrInvalidRefreshToken
	}

	userID, err := bson.ObjectIDFromHex(stored.UserID)
	if err != nil {
		return nil, nil, ErrInvalidRefreshToken
	}
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return tokens, user, nil
}

// Logout discards the refresh token. A token that is already gone is not an
// error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	err := s.tokens.Delete(ctx, refreshToken)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	return err
}

func (s *AuthService) issueTokens(ctx context.Context, user *model.User) (*model.AuthTokens, error) {
	access, err := s.manager.Issue(user.ID.Hex(), user.Role)
	if err != nil {
		return nil, err
	}

	refresh, err := auth.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	record := model.RefreshToken{
		Token:     refresh,
		UserID:    user.ID.Hex(),
		ExpiresAt: time.Now().Add(s.refreshTTL),
	}
	if err := s.tokens.Insert(ctx, record); err != nil {
		return nil, err
	}

	return &model.AuthTokens{AccessToken: access, RefreshToken: refresh}, nil
}
