package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAccessTokenTTL  = "30m"
	defaultRefreshTokenTTL = "24h"
	defaultJWTSecret       = "change-me-jwt-secret"
	defaultDatabaseURL     = "tunebox.db"
	defaultMediaDir        = "./media"
	defaultBaseURL         = "http://localhost:8080"
	defaultPort            = "8080"
)

type Config struct {
	AppEnv        string
	Port          string
	BaseURL       string
	DatabaseURL   string
	JWTSecret     string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	MediaDir      string
	SpotifyID     string
	SpotifySecret string
}

// Load reads configuration from the environment, after loading .env if
// one is present (missing .env is not an error).
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Port = getEnv("PORT", defaultPort)
	cfg.BaseURL = strings.TrimRight(getEnv("BASE_URL", defaultBaseURL), "/")
	cfg.DatabaseURL = getEnv("DATABASE_URL", defaultDatabaseURL)
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.MediaDir = getEnv("MEDIA_DIR", defaultMediaDir)
	cfg.SpotifyID = strings.TrimSpace(os.Getenv("SPOTIFY_CLIENT_ID"))
	cfg.SpotifySecret = strings.TrimSpace(os.Getenv("SPOTIFY_CLIENT_SECRET"))

	var err error
	cfg.AccessTTL, err = parseDurationEnv("ACCESS_TOKEN_TTL", defaultAccessTokenTTL)
	if err != nil {
		return nil, err
	}
	cfg.RefreshTTL, err = parseDurationEnv("REFRESH_TOKEN_TTL", defaultRefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	if cfg.AppEnv == "prod" && cfg.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set in prod")
	}

	return cfg, nil
}

func getEnv(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(name, def string) (time.Duration, error) {
	raw := getEnv(name, def)
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", name, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: duration must be positive", name)
	}
	return d, nil
}
