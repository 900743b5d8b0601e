package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingDatabaseURL)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/commune")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "localhost", cfg.Domain)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/commune")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("INSTANCE_DOMAIN", "a.example")
	t.Setenv("SESSION_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, "a.example", cfg.Domain)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
}

func TestLoadBadTTLFallsBack(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/commune")
	t.Setenv("SESSION_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
}
