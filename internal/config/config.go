package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host       string
	Port       int
	CORSOrigin string
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	AccessSecret string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

type CacheConfig struct {
	ListTTL      time.Duration
	DetailTTL    time.Duration
	AnalyticsTTL time.Duration
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	Mongo       MongoConfig
	Redis       RedisConfig
	Auth        AuthConfig
	Cache       CacheConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:       v.GetString("HTTP_HOST"),
			Port:       v.GetInt("HTTP_PORT"),
			CORSOrigin: v.GetString("CORS_ORIGIN"),
		},
		Mongo: MongoConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
			AccessTTL:    v.GetDuration("JWT_ACCESS_TTL"),
			RefreshTTL:   v.GetDuration("JWT_REFRESH_TTL"),
		},
		Cache: CacheConfig{
			ListTTL:      v.GetDuration("CACHE_LIST_TTL"),
			DetailTTL:    v.GetDuration("CACHE_DETAIL_TTL"),
			AnalyticsTTL: v.GetDuration("CACHE_ANALYTICS_TTL"),
		},
	}

	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.CORSOrigin == "" {
		cfg.HTTP.CORSOrigin = "http://localhost:5173"
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "apprehensions"
	}
	if cfg.Auth.AccessTTL <= 0 {
		cfg.Auth.AccessTTL = time.Hour
	}
	if cfg.Auth.RefreshTTL <= 0 {
		cfg.Auth.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.Cache.ListTTL <= 0 {
		cfg.Cache.ListTTL = 5 * time.Minute
	}
	if cfg.Cache.DetailTTL <= 0 {
		cfg.Cache.DetailTTL = 30 * time.Minute
	}
	if cfg.Cache.AnalyticsTTL <= 0 {
		cfg.Cache.AnalyticsTTL = 5 * time.Minute
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Mongo.URI == "" {
		return fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	return nil
}
