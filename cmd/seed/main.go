// Command seed creates the initial admin account so a fresh deployment can
// log in.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"apprehension-service/internal/config"
	"apprehension-service/internal/db"
	"apprehension-service/internal/logger"
	"apprehension-service/internal/model"
	"apprehension-service/internal/repository"
	"apprehension-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)
	ctx := context.Background()

	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		appLogger.Fatal().Msg("ADMIN_USERNAME and ADMIN_PASSWORD are required")
	}

	database, err := db.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}
	if err := db.EnsureIndexes(ctx, database); err != nil {
		appLogger.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository(database)
	users := service.NewUserService(userRepo, tokenRepo)

	user, err := users.Create(ctx, username, password, model.RoleAdmin)
	if errors.Is(err, service.ErrUsernameTaken) {
		appLogger.Info().Str("username", username).Msg("admin user already exists")
		return
	}
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to create admin user")
	}

	appLogger.Info().Str("id", user.ID).Str("username", user.Username).Msg("admin user created")
}
