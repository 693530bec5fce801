// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const minSecretLen = 32

type Config struct {
	// HTTP Server
	Port            string
	CORSOrigins     []string
	ShutdownTimeout time.Duration

	// Database
	DBDriver    string
	DBPath      string
	DatabaseURL string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// Idempotency keys; disabled when RedisAddr is empty
	RedisAddr      string
	IdempotencyTTL time.Duration

	LogLevel string
}

// Load reads the configuration from environment variables, falling back to
// defaults for anything unset. Call Validate before using the result.
func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		CORSOrigins:     getEnvList("CORS_ORIGINS", []string{"*"}),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DBPath:      getEnv("DB_PATH", "./data/ledger.db"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 24*time.Hour),

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		IdempotencyTTL: getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			problems = append(problems, "DB_PATH cannot be empty when using the sqlite driver")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required when using the postgres driver")
		} else if u, err := url.Parse(c.DatabaseURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid DATABASE_URL: %v", err))
		} else if u.Scheme != "postgres" && u.Scheme != "postgresql" {
			problems = append(problems, fmt.Sprintf("invalid DATABASE_URL scheme '%s': must be 'postgres' or 'postgresql'", u.Scheme))
		}
	case "memory":
	default:
		problems = append(problems, fmt.Sprintf("invalid database driver '%s': must be one of [sqlite postgres memory]", c.DBDriver))
	}

	if len(c.JWTSecret) < minSecretLen {
		problems = append(problems, fmt.Sprintf("JWT_SECRET must be at least %d bytes", minSecretLen))
	}
	if c.TokenTTL < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid token TTL %v: must be at least 1 minute", c.TokenTTL))
	}

	if c.RedisAddr != "" && c.IdempotencyTTL < time.Second {
		problems = append(problems, fmt.Sprintf("invalid idempotency TTL %v: must be at least 1 second", c.IdempotencyTTL))
	}
	if c.ShutdownTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
