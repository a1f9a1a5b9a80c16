package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Decision storage backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendRemote   = "remote"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

const maxGraceDays = int(math.MaxInt64 / int64(24*time.Hour))

type Config struct {
	PostgresURI    string
	RedisURI       string
	MongoURI       string // optional; document collection routes are disabled when empty
	JWTSecret      string
	Port           string
	FrontendURL    string
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	Host           string   // Raw HOST env (e.g. https://api.example.com)
	AllowedHost    string   // Hostname only for strict host check (production only)
	Environment    string   // ENV: production, development, etc.
	AdminEmails    []string

	DecisionBackend  string
	RemoteAPIURL     string
	RemoteAPITimeout time.Duration
	ReviewGraceDays  int

	LogLevel  string
	LogFormat string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	host := getEnv("HOST", "http://localhost:8080")

	// AllowedHost is only set in production; host check is skipped in development
	var allowedHost string
	if env == "production" {
		allowedHost = hostname(host)
	}

	allowedOrigins := parseList(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:5173"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}

	logFormat := "console"
	if env == "production" {
		logFormat = "json"
	}

	return &Config{
		PostgresURI:      getEnv("POSTGRES_URI", "postgres://localhost:5432/decision_journal?sslmode=disable"),
		RedisURI:         getEnv("REDIS_URI", "redis://localhost:6379/0"),
		MongoURI:         getEnv("MONGODB_URI", getEnv("MONGO_URI", "")),
		JWTSecret:        getEnv("JWT_SECRET", defaultJWTSecret),
		Host:             host,
		AllowedHost:      allowedHost,
		Environment:      env,
		Port:             getEnv("PORT", "8080"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:5173"),
		AllowedOrigins:   allowedOrigins,
		AdminEmails:      parseList(getEnv("ADMIN_EMAILS", "")),
		DecisionBackend:  strings.ToLower(strings.TrimSpace(getEnv("DECISION_BACKEND", BackendPostgres))),
		RemoteAPIURL:     strings.TrimSpace(getEnv("REMOTE_API_URL", "")),
		RemoteAPITimeout: getDuration("REMOTE_API_TIMEOUT", 10*time.Second),
		ReviewGraceDays:  getInt("REVIEW_GRACE_DAYS", 7),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:        strings.ToLower(getEnv("LOG_FORMAT", logFormat)),
	}
}

// Validate reports configuration that the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	switch c.DecisionBackend {
	case BackendPostgres, BackendMemory:
	case BackendRemote:
		if c.RemoteAPIURL == "" {
			errs = append(errs, errors.New("REMOTE_API_URL is required when DECISION_BACKEND=remote"))
		} else if !strings.HasPrefix(c.RemoteAPIURL, "http://") && !strings.HasPrefix(c.RemoteAPIURL, "https://") {
			errs = append(errs, fmt.Errorf("REMOTE_API_URL must be an http(s) URL, got %q", c.RemoteAPIURL))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DECISION_BACKEND %q", c.DecisionBackend))
	}

	if c.ReviewGraceDays < 0 || c.ReviewGraceDays > maxGraceDays {
		errs = append(errs, fmt.Errorf("REVIEW_GRACE_DAYS must be between 0 and %d, got %d", maxGraceDays, c.ReviewGraceDays))
	}
	if c.RemoteAPITimeout <= 0 {
		errs = append(errs, errors.New("REMOTE_API_TIMEOUT must be positive"))
	}
	if c.IsProduction() && (c.JWTSecret == defaultJWTSecret || len(c.JWTSecret) < 32) {
		errs = append(errs, errors.New("JWT_SECRET must be set to at least 32 characters in production"))
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("PORT must be numeric, got %q", c.Port))
	}

	return errors.Join(errs...)
}

// ReviewGrace returns the configured review grace interval.
func (c *Config) ReviewGrace() time.Duration {
	return time.Duration(c.ReviewGraceDays) * 24 * time.Hour
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// hostname strips scheme, path and port from a HOST value.
func hostname(host string) string {
	for _, prefix := range []string{"https://", "http://"} {
		host = strings.TrimPrefix(host, prefix)
	}
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return strings.TrimSpace(host)
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return v
}
