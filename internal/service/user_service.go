package service

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/crypto/bcrypt"

	"apprehension-service/internal/model"
)

// UserRepository is the full user store surface for account management.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id bson.ObjectID) (*model.User, error)
	Insert(ctx context.Context, user *model.User) error
	List(ctx context.Context, skip, limit int64) ([]model.User, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id bson.ObjectID) error
}

type UserService struct {
	users  UserRepository
	tokens TokenRepository
}

func NewUserService(users UserRepository, tokens TokenRepository) *UserService {
	return &UserService{users: users, tokens: tokens}
}

func (s *UserService) List(ctx context.Context, page model.Pagination) (*model.PaginatedUsers, error) {
	page = page.Normalize(defaultPageLimit, maxPageLimit)

	users, err := s.users.List(ctx, page.Skip(), int64(page.Limit))
	if err != nil {
		return nil, err
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, user.Response())
	}
	return &model.PaginatedUsers{
		Data:       responses,
		Pagination: model.NewPageMeta(page, total),
	}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*model.UserResponse, error) {
	user, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := user.Response()
	return &response, nil
}

func (s *UserService) Create(ctx context.Context, username, password string, role model.Role) (*model.UserResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, invalidParameterf("username and password are required")
	}
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return nil, invalidParameterf("invalid role %q, must be one of: admin, user", string(role))
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}

	response := user.Response()
	return &response, nil
}

// Update changes any of username, password, and role; empty arguments leave
// the field alone. A password change re-hashes and revokes every session.
func (s *UserService) Update(ctx context.Context, id, username, password string, role model.Role) (*model.UserResponse, error) {
	user, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if username = strings.TrimSpace(username); username != "" && username != user.Username {
		if _, err := s.users.GetByUsername(ctx, username); err == nil {
			return nil, ErrUsernameTaken
		} else if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
		user.Username = username
	}

	if role != "" {
		if !role.Valid() {
			return nil, invalidParameterf("invalid role %q, must be one of: admin, user", string(role))
		}
		user.Role = role
	}

	revokeSessions := false
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
		revokeSessions = true
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if revokeSessions {
		if err := s.tokens.DeleteForUser(ctx, user.ID.Hex()); err != nil {
			return nil, err
		}
	}

	response := user.Response()
	return &response, nil
}

// Delete removes the account and all of its refresh tokens. Callers cannot
// delete themselves.
func (s *UserService) Delete(ctx context.Context, id string, actor model.Principal) error {
	if id == actor.UserID {
		return ErrSelfDelete
	}

	user, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	return s.tokens.DeleteForUser(ctx, user.ID.Hex())
}

func (s *UserService) getByID(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	user, err := s.users.GetByID(ctx, objectID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
