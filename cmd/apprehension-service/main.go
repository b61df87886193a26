package main

import (
	"context"
	"fmt"
	"os"

	"apprehension-service/internal/auth"
	"apprehension-service/internal/cache"
	"apprehension-service/internal/config"
	"apprehension-service/internal/db"
	httphandler "apprehension-service/internal/http"
	"apprehension-service/internal/http/middleware"
	"apprehension-service/internal/logger"
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

	database, err := db.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}
	if err := db.EnsureIndexes(ctx, database); err != nil {
		appLogger.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	store, err := cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect redis")
	}

	apprehensionRepo := repository.NewApprehensionRepository(database)
	analyticsRepo := repository.NewAnalyticsRepository(database)
	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository(database)

	tokenManager := auth.NewManager(cfg.Auth.AccessSecret, cfg.Auth.AccessTTL)

	apprehensionService := service.NewApprehensionService(apprehensionRepo, store)
	analyticsService := service.NewAnalyticsService(analyticsRepo)
	authService := service.NewAuthService(userRepo, tokenRepo, tokenManager, cfg.Auth.RefreshTTL)
	userService := service.NewUserService(userRepo, tokenRepo)

	cached := httphandler.CacheMiddleware{
		List:      middleware.Cached(store, cache.PrefixList, cfg.Cache.ListTTL, appLogger),
		Detail:    middleware.Cached(store, cache.PrefixDetail, cfg.Cache.DetailTTL, appLogger),
		Stats:     middleware.Cached(store, cache.PrefixStats, cfg.Cache.AnalyticsTTL, appLogger),
		Analytics: middleware.Cached(store, cache.PrefixAnalytics, cfg.Cache.AnalyticsTTL, appLogger),
	}
	cookie := httphandler.CookieConfig{
		Secure: cfg.Environment != "development",
		MaxAge: int(cfg.Auth.RefreshTTL.Seconds()),
	}

	handler := httphandler.NewHandler(apprehensionService, analyticsService, authService, userService, cached, cookie, appLogger)
	authMiddleware := middleware.Auth(tokenManager)
	adminMiddleware := middleware.RequireAdmin()
	router := httphandler.NewRouter(handler, authMiddleware, adminMiddleware, cfg.Environment, cfg.HTTP.CORSOrigin, appLogger)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting apprehension service")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}
