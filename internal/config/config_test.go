package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"ENV", "DECISION_BACKEND", "REVIEW_GRACE_DAYS", "ALLOWED_ORIGINS", "FRONTEND_URL", "ADMIN_EMAILS", "LOG_FORMAT", "REMOTE_API_TIMEOUT"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, BackendPostgres, cfg.DecisionBackend)
	assert.Equal(t, 7, cfg.ReviewGraceDays)
	assert.Equal(t, 7*24*time.Hour, cfg.ReviewGrace())
	assert.Equal(t, 10*time.Second, cfg.RemoteAPITimeout)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Empty(t, cfg.AllowedHost)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV", "Production")
	t.Setenv("HOST", "https://api.journal.example:443/v1")
	t.Setenv("ALLOWED_ORIGINS", "https://journal.example, https://www.journal.example ,")
	t.Setenv("ADMIN_EMAILS", "root@journal.example")
	t.Setenv("DECISION_BACKEND", "Remote")
	t.Setenv("REMOTE_API_URL", "https://upstream.example")
	t.Setenv("REMOTE_API_TIMEOUT", "3s")
	t.Setenv("REVIEW_GRACE_DAYS", "14")
	t.Setenv("LOG_FORMAT", "")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "api.journal.example", cfg.AllowedHost)
	assert.Equal(t, []string{"https://journal.example", "https://www.journal.example"}, cfg.AllowedOrigins)
	assert.Equal(t, []string{"root@journal.example"}, cfg.AdminEmails)
	assert.Equal(t, BackendRemote, cfg.DecisionBackend)
	assert.Equal(t, 3*time.Second, cfg.RemoteAPITimeout)
	assert.Equal(t, 14*24*time.Hour, cfg.ReviewGrace())
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Environment:      "development",
			Port:             "8080",
			DecisionBackend:  BackendMemory,
			RemoteAPITimeout: time.Second,
			ReviewGraceDays:  7,
			JWTSecret:        defaultJWTSecret,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown backend", func(c *Config) { c.DecisionBackend = "sqlite" }, "unknown DECISION_BACKEND"},
		{"remote without url", func(c *Config) { c.DecisionBackend = BackendRemote }, "REMOTE_API_URL is required"},
		{"remote bad scheme", func(c *Config) { c.DecisionBackend = BackendRemote; c.RemoteAPIURL = "ftp://x" }, "http(s) URL"},
		{"negative grace", func(c *Config) { c.ReviewGraceDays = -1 }, "REVIEW_GRACE_DAYS"},
		{"grace overflows duration", func(c *Config) { c.ReviewGraceDays = maxGraceDays + 1 }, "REVIEW_GRACE_DAYS"},
		{"zero timeout", func(c *Config) { c.RemoteAPITimeout = 0 }, "REMOTE_API_TIMEOUT"},
		{"default secret in production", func(c *Config) { c.Environment = "production" }, "JWT_SECRET"},
		{"bad port", func(c *Config) { c.Port = "http" }, "PORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
