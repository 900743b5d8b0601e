package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingDatabaseURL aborts startup: without a connection string there is
// nothing useful the server can do.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set")

type Config struct {
	ServerPort       string
	DatabaseURL      string
	Domain           string
	SessionTTL       time.Duration
	FederationSecret string
	LogLevel         string
}

func Load() (*Config, error) {
	// Best effort: a missing .env file is fine, real env vars win either way.
	_ = godotenv.Load()

	dbURL, ok := os.LookupEnv("DATABASE_URL")
	if !ok || dbURL == "" {
		return nil, ErrMissingDatabaseURL
	}

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		ttl = 24 * time.Hour
	}

	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		DatabaseURL:      dbURL,
		Domain:           getEnv("INSTANCE_DOMAIN", "localhost"),
		SessionTTL:       ttl,
		FederationSecret: getEnv("FEDERATION_SECRET", "dev-secret-change-me"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}
