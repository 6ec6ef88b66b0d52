package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"APP_ENV", "APP_PORT", "API_BASE_URL", "API_TIMEOUT", "STORAGE_DRIVER",
		"DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_PORT",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"PENDING_WISHLIST_TTL", "SESSION_IDLE_TTL", "ALLOWED_ORIGIN",
		"CATALOG_TTL", "INTERNAL_SECRET_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		clearEnv(t)

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.AppPort)
		assert.Equal(t, "http://localhost:5000", cfg.APIBaseURL)
		assert.Equal(t, 15*time.Second, cfg.APITimeout)
		assert.Equal(t, StorageMemory, cfg.StorageDriver)
		assert.Equal(t, 30*time.Minute, cfg.PendingWishlistTTL)
		assert.Equal(t, 2*time.Hour, cfg.SessionIdleTTL)
		assert.Equal(t, 10*time.Minute, cfg.CatalogTTL)
		assert.Equal(t, "http://localhost:3000", cfg.AllowedOrigin)
	})

	t.Run("Postgres from env", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORAGE_DRIVER", "postgres")
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("DB_USER", "testuser")
		t.Setenv("DB_PASSWORD", "testpass")
		t.Setenv("DB_NAME", "testdb")
		t.Setenv("API_TIMEOUT", "3s")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, 3*time.Second, cfg.APITimeout)
		assert.Equal(t, "host=localhost user=testuser password=testpass dbname=testdb port=5432 sslmode=disable", cfg.DSN())
	})

	t.Run("Postgres without host", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORAGE_DRIVER", "postgres")

		_, err := LoadConfig()
		assert.ErrorIs(t, err, ErrMissingDBConfig)
	})

	t.Run("Redis without addr", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORAGE_DRIVER", "redis")

		_, err := LoadConfig()
		assert.ErrorIs(t, err, ErrMissingRedisConfig)
	})

	t.Run("Unknown driver", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORAGE_DRIVER", "etcd")

		_, err := LoadConfig()
		assert.ErrorIs(t, err, ErrUnknownStorage)
	})

	t.Run("Bad duration", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SESSION_IDLE_TTL", "soon")

		_, err := LoadConfig()
		assert.Error(t, err)
	})
}
