package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds the application configuration.
type Config struct {
	ServerPort     int
	AppEnv         string
	LogLevel       string
	DatabaseDriver string // "sqlite" or "postgres"
	DatabasePath   string
	DatabaseURL    string
	JWTSecret      string
	JWTIssuer      string
	TokenTTL       time.Duration
	PasswordHasher string // "argon2id" or "bcrypt"
	CORSOrigins    []string

	EventRetention  time.Duration
	MaintenanceCron string
}

// minSecretLength is the HS256 key size.
const minSecretLength = 32

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil || port <= 0 {
		return nil, fmt.Errorf("invalid PORT: %q", os.Getenv("PORT"))
	}

	ttlMinutes, err := strconv.Atoi(getEnv("JWT_TTL_MINUTES", "60"))
	if err != nil || ttlMinutes <= 0 {
		return nil, fmt.Errorf("invalid JWT_TTL_MINUTES: %q", os.Getenv("JWT_TTL_MINUTES"))
	}

	retentionDays, err := strconv.Atoi(getEnv("EVENT_RETENTION_DAYS", "30"))
	if err != nil || retentionDays <= 0 {
		return nil, fmt.Errorf("invalid EVENT_RETENTION_DAYS: %q", os.Getenv("EVENT_RETENTION_DAYS"))
	}

	cfg := &Config{
		ServerPort:      port,
		AppEnv:          getEnv("APP_ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DatabaseDriver:  strings.ToLower(getEnv("DATABASE_DRIVER", "sqlite")),
		DatabasePath:    getEnv("DATABASE_PATH", "./bookfinder.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTIssuer:       getEnv("JWT_ISSUER", "bookfinder"),
		TokenTTL:        time.Duration(ttlMinutes) * time.Minute,
		PasswordHasher:  strings.ToLower(getEnv("PASSWORD_HASHER", "argon2id")),
		CORSOrigins:     parseCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		EventRetention:  time.Duration(retentionDays) * 24 * time.Hour,
		MaintenanceCron: getEnv("MAINTENANCE_CRON", "0 3 * * *"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLength)
	}
	switch c.DatabaseDriver {
	case "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when DATABASE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	switch c.PasswordHasher {
	case "argon2id", "bcrypt":
	default:
		return fmt.Errorf("unsupported PASSWORD_HASHER %q", c.PasswordHasher)
	}
	if _, err := cron.ParseStandard(c.MaintenanceCron); err != nil {
		return fmt.Errorf("invalid MAINTENANCE_CRON: %w", err)
	}
	return nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseCSV(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
