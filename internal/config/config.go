package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

var (
	ErrMissingDBConfig    = errors.New("postgres storage selected but DB_HOST is not set")
	ErrMissingRedisConfig = errors.New("redis storage selected but REDIS_ADDR is not set")
	ErrUnknownStorage     = errors.New("unknown STORAGE_DRIVER")
)

type Config struct {
	AppEnv  string
	AppPort string

	APIBaseURL string
	APITimeout time.Duration

	StorageDriver string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PendingWishlistTTL time.Duration
	SessionIdleTTL     time.Duration
	CatalogTTL         time.Duration

	AllowedOrigin     string
	InternalSecretKey string
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:        os.Getenv("APP_ENV"),
		AppPort:       envOr("APP_PORT", "8080"),
		APIBaseURL:    envOr("API_BASE_URL", "http://localhost:5000"),
		StorageDriver: envOr("STORAGE_DRIVER", StorageMemory),
		DBHost:        os.Getenv("DB_HOST"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		DBPort:        envOr("DB_PORT", "5432"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		AllowedOrigin: envOr("ALLOWED_ORIGIN", "http://localhost:3000"),

		InternalSecretKey: os.Getenv("INTERNAL_SECRET_KEY"),
	}

	var err error
	if cfg.APITimeout, err = durationEnv("API_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.PendingWishlistTTL, err = durationEnv("PENDING_WISHLIST_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTTL, err = durationEnv("SESSION_IDLE_TTL", 2*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CatalogTTL, err = durationEnv("CATALOG_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if cfg.RedisDB, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
	}

	switch cfg.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if cfg.DBHost == "" {
			return nil, ErrMissingDBConfig
		}
	case StorageRedis:
		if cfg.RedisAddr == "" {
			return nil, ErrMissingRedisConfig
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStorage, cfg.StorageDriver)
	}

	return cfg, nil
}

// DSN builds the lib/pq connection string for the postgres storage driver.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
