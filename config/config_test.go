package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSecret = "0123456789abcdef0123456789abcdef"

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SESSION_SECRET", validSecret)
	t.Setenv("EMAIL_PROVIDER", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_OUTPUT", "")
	t.Setenv("BCRYPT_COST", "")
}

func TestFromEnv_Defaults(t *testing.T) {
	setValidEnv(t)

	cfg := FromEnv()
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:aether.db?_foreign_keys=on", cfg.Database.URL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "aether_session", cfg.Session.CookieName)
	assert.True(t, cfg.Session.CookieSecure)
	assert.Equal(t, EmailProviderDisabled, cfg.Email.Provider)
	assert.False(t, cfg.AI.Enabled())
	assert.False(t, cfg.App.IsProduction())
	assert.NoError(t, ValidateConfig(cfg))
}

func TestFromEnv_Overrides(t *testing.T) {
	setValidEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://aetherinc.xyz, ,https://www.aetherinc.xyz")
	t.Setenv("SITE_URL", "https://aetherinc.xyz/")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("APP_ENV", "Production")

	cfg := FromEnv()
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, []string{"https://aetherinc.xyz", "https://www.aetherinc.xyz"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, "https://aetherinc.xyz", cfg.App.SiteURL)
	assert.True(t, cfg.AI.Enabled())
	assert.True(t, cfg.App.IsProduction())
}

func TestFromEnv_MalformedValuesFallBack(t *testing.T) {
	setValidEnv(t)
	t.Setenv("SERVER_PORT", "eighty")
	t.Setenv("SESSION_TTL", "forever")
	t.Setenv("CACHE_ENABLED", "maybe")

	cfg := FromEnv()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.False(t, cfg.Cache.Enabled)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing session secret",
			mutate:  func(c *Config) { c.Session.Secret = "" },
			wantErr: "SESSION_SECRET is required",
		},
		{
			name:    "short session secret",
			mutate:  func(c *Config) { c.Session.Secret = "short" },
			wantErr: "at least 32 characters",
		},
		{
			name: "postgres without url",
			mutate: func(c *Config) {
				c.Database.Driver = "postgres"
				c.Database.URL = ""
			},
			wantErr: "DATABASE_URL is required",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "mysql" },
			wantErr: "DB_DRIVER must be one of",
		},
		{
			name:    "smtp without host",
			mutate:  func(c *Config) { c.Email.Provider = EmailProviderSMTP },
			wantErr: "SMTP_HOST is required",
		},
		{
			name:    "unknown email provider",
			mutate:  func(c *Config) { c.Email.Provider = "pigeon" },
			wantErr: "EMAIL_PROVIDER must be one of",
		},
		{
			name:    "bcrypt cost out of range",
			mutate:  func(c *Config) { c.Security.BcryptCost = 4 },
			wantErr: "BCRYPT_COST",
		},
		{
			name:    "relative site url",
			mutate:  func(c *Config) { c.App.SiteURL = "aetherinc.xyz" },
			wantErr: "SITE_URL must be an absolute URL",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "LOG_LEVEL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setValidEnv(t)
			cfg := FromEnv()
			tt.mutate(cfg)

			err := ValidateConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateConfig_ReportsAllProblems(t *testing.T) {
	setValidEnv(t)
	cfg := FromEnv()
	cfg.Session.Secret = ""
	cfg.Server.Port = 0

	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Equal(t, 2, strings.Count(err.Error(), ";")+1)
}
