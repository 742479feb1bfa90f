// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Supported storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMemory   = "memory"
)

// DefaultAllowedOrigins is the CORS allow-list used when CORS_ALLOWED_ORIGINS
// is unset: the deployed frontends, any Render subdomain and local dev servers.
var DefaultAllowedOrigins = []string{
	"https://content-creator-frontend-ixsj.onrender.com",
	"https://webtech-projekt-bao-minh.onrender.com",
	"https://*.onrender.com",
	"http://localhost:*",
}

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Storage backend: "postgres", "mysql" or "memory"
	DBDriver string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// MySQL connection (GORM), used when DBDriver is "mysql"
	MySQLDSN string

	// Valkey (Redis-compatible cache)
	CacheEnabled   bool
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Origins allowed to call the API from a browser. "*" allows any.
	AllowedOrigins []string

	// SeedDemoContent inserts the demo content pieces into an empty table.
	SeedDemoContent bool

	// WriteRateLimit caps mutating API requests per client IP per minute.
	// Zero, the default, disables the limiter.
	WriteRateLimit int

	LogLevel string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBDriver: strings.ToLower(envOrDefault("DB_DRIVER", DriverPostgres)),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "contentplanner"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "contentplanner"),

		MySQLDSN: os.Getenv("MYSQL_DSN"),

		CacheEnabled:   envBool("CACHE_ENABLED", false),
		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		AllowedOrigins: envList("CORS_ALLOWED_ORIGINS", DefaultAllowedOrigins),

		LogLevel: strings.ToLower(os.Getenv("LOG_LEVEL")),
	}
	cfg.SeedDemoContent = envBool("SEED_DEMO_CONTENT", cfg.IsDev())

	limit, err := envInt("RATE_LIMIT_WRITES", 0)
	if err != nil {
		return nil, err
	}
	cfg.WriteRateLimit = limit

	switch cfg.DBDriver {
	case DriverPostgres, DriverMemory:
	case DriverMySQL:
		if cfg.MySQLDSN == "" {
			return nil, fmt.Errorf("MYSQL_DSN must be set when DB_DRIVER is mysql")
		}
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.WriteRateLimit < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_WRITES must not be negative, got %d", cfg.WriteRateLimit)
	}

	if cfg.Env == "production" && cfg.DBDriver == DriverPostgres {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// SlogLevel maps LogLevel onto a slog level. Unset or unknown values mean
// debug in development and info everywhere else.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		return slog.LevelInfo
	}
	if c.IsDev() {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envBool parses a boolean environment variable. Unparseable values use the fallback.
func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// envInt parses an integer environment variable, returning fallback when unset.
func envInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

// envList splits a comma-separated environment variable, dropping blanks.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
