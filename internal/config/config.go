package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"

	defaultJWTSecret = "dev-secret-change-in-production"
)

type Config struct {
	// Server
	Port string
	Env  string // "development", "production"

	// Storage
	StoreBackend   string // "postgres" or "memory"
	DatabaseURL    string
	MigrateOnStart bool

	// Auth
	JWTSecret string

	// CORS
	AllowedOrigins []string

	// Overview cache, disabled when RedisURL is empty
	RedisURL string
	CacheTTL time.Duration

	// Reconciliation
	ReconcileEnabled  bool
	ReconcileSchedule string        // Cron expression (e.g., "30 2 * * *" for nightly)
	ReconcileTimeout  time.Duration // Timeout for a complete reconciliation run
}

// Load reads configuration from the environment. Variables from a .env file
// in the working directory are applied first without overriding real ones.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Storage
		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", StoreBackendPostgres)),
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/familybudget?sslmode=disable"),
		MigrateOnStart: getBoolEnv("MIGRATE_ON_START", true),

		// Auth
		JWTSecret: getEnv("JWT_SECRET", defaultJWTSecret),

		// CORS
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),

		// Cache
		RedisURL: os.Getenv("REDIS_URL"),
		CacheTTL: getDurationEnv("CACHE_TTL", 5*time.Minute),

		// Reconciliation
		ReconcileEnabled:  getBoolEnv("RECONCILE_ENABLED", true),
		ReconcileSchedule: getEnv("RECONCILE_SCHEDULE", "30 2 * * *"), // Default: nightly at 02:30
		ReconcileTimeout:  getDurationEnv("RECONCILE_TIMEOUT", 5*time.Minute),
	}
}

// Validate reports configuration that would make the server misbehave.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreBackend {
	case StoreBackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	case StoreBackendMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q",
			StoreBackendPostgres, StoreBackendMemory, c.StoreBackend))
	}

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}

	if c.CacheTTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive"))
	}
	if c.ReconcileEnabled && c.ReconcileTimeout <= 0 {
		errs = append(errs, errors.New("RECONCILE_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
