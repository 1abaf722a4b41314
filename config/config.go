// Package config loads process configuration from the environment and an optional .env file
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the complete runtime configuration of the AetherInc backend
type Config struct {
	App      AppConfig      `json:"app"`
	Database DatabaseConfig `json:"database"`
	Server   ServerConfig   `json:"server"`
	Security SecurityConfig `json:"security"`
	Session  SessionConfig  `json:"session"`
	Email    EmailConfig    `json:"email"`
	AI       AIConfig       `json:"ai"`
	Logging  LoggingConfig  `json:"logging"`
	Cache    CacheConfig    `json:"cache"`
	Captcha  CaptchaConfig  `json:"captcha"`
}

type AppConfig struct {
	Environment string `json:"environment"` // development, production, test
	Version     string `json:"version"`
	SiteURL     string `json:"site_url"`
}

// IsProduction reports whether APP_ENV is production
func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

type DatabaseConfig struct {
	Driver          string        `json:"driver"` // postgres, sqlite
	URL             string        `json:"url"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	SlowQueryTime   time.Duration `json:"slow_query_time"`
}

type ServerConfig struct {
	Host              string        `json:"host"`
	Port              int           `json:"port"`
	ReadTimeout       time.Duration `json:"read_timeout"`
	WriteTimeout      time.Duration `json:"write_timeout"`
	IdleTimeout       time.Duration `json:"idle_timeout"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout"`
	BodyLimit         int           `json:"body_limit"`
	EnableMetrics     bool          `json:"enable_metrics"`
	EnableCompression bool          `json:"enable_compression"`
	TrustedProxies    []string      `json:"trusted_proxies"`
	ProxyHeader       string        `json:"proxy_header"`
}

type SecurityConfig struct {
	AllowedOrigins   []string      `json:"allowed_origins"`
	AllowedMethods   []string      `json:"allowed_methods"`
	AllowedHeaders   []string      `json:"allowed_headers"`
	AllowCredentials bool          `json:"allow_credentials"`
	CORSMaxAge       int           `json:"cors_max_age"`
	HSTSMaxAge       int           `json:"hsts_max_age"`
	CSPPolicy        string        `json:"csp_policy"`
	ReferrerPolicy   string        `json:"referrer_policy"`
	GlobalRateLimit  int           `json:"global_rate_limit"`  // requests per window per IP
	PublicRateLimit  int           `json:"public_rate_limit"`  // writes to the public API per window per IP
	AuthRateLimit    int           `json:"auth_rate_limit"`    // login attempts per window per IP
	ChatRateLimit    int           `json:"chat_rate_limit"`    // chat requests per window per IP
	RateLimitWindow  time.Duration `json:"rate_limit_window"`
	BcryptCost       int           `json:"bcrypt_cost"`
}

type SessionConfig struct {
	Secret       string        `json:"-"`
	TTL          time.Duration `json:"ttl"`
	CookieName   string        `json:"cookie_name"`
	CookieSecure bool          `json:"cookie_secure"`
	Issuer       string        `json:"issuer"`
	Audience     string        `json:"audience"`
}

type EmailConfig struct {
	Provider      string        `json:"provider"` // disabled, smtp, resend
	From          string        `json:"from"`
	AdminEmail    string        `json:"admin_email"`
	SMTPHost      string        `json:"smtp_host"`
	SMTPPort      int           `json:"smtp_port"`
	SMTPUsername  string        `json:"smtp_username"`
	SMTPPassword  string        `json:"-"`
	ResendAPIKey  string        `json:"-"`
	ResendBaseURL string        `json:"resend_base_url"`
	Timeout       time.Duration `json:"timeout"`
}

type AIConfig struct {
	GeminiAPIKey      string        `json:"-"`
	GeminiModel       string        `json:"gemini_model"`
	GeminiBaseURL     string        `json:"gemini_base_url"`
	RequestsPerMinute int           `json:"requests_per_minute"`
	Timeout           time.Duration `json:"timeout"`
	SystemPrompt      string        `json:"system_prompt"`
}

// Enabled reports whether a Gemini key is configured
func (c AIConfig) Enabled() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != ""
}

type LoggingConfig struct {
	Level      string `json:"level"`  // debug, info, warn, error
	Output     string `json:"output"` // stdout, file, both
	FilePath   string `json:"file_path"`
	MaxSize    int    `json:"max_size"` // MB
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"` // days
	Compress   bool   `json:"compress"`
	Caller     bool   `json:"enable_caller"`
	AccessLog  bool   `json:"enable_access_log"`
}

type CacheConfig struct {
	Enabled     bool   `json:"enabled"`
	RedisURL    string `json:"redis_url"`
	RedisDB     int    `json:"redis_db"`
	RedisPrefix string `json:"redis_prefix"`
}

type CaptchaConfig struct {
	Enabled   bool          `json:"enabled"`
	TTL       time.Duration `json:"ttl"`
	Padding   int           `json:"padding"`
	ImageSize int           `json:"image_size"`
}

// Email providers accepted by EMAIL_PROVIDER
const (
	EmailProviderDisabled = "disabled"
	EmailProviderSMTP     = "smtp"
	EmailProviderResend   = "resend"
)

// LoadConfig reads .env when present, then the environment, and validates the result
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := FromEnv()
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a Config from the current environment without validating it
func FromEnv() *Config {
	cfg := &Config{
		App: AppConfig{
			Environment: getEnvString("APP_ENV", "development"),
			Version:     getEnvString("VERSION", "1.0.0"),
			SiteURL:     strings.TrimRight(getEnvString("SITE_URL", "http://localhost:8080"), "/"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getEnvString("DB_DRIVER", "postgres")),
			URL:             getEnvString("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 15*time.Minute),
			SlowQueryTime:   getEnvDuration("DB_SLOW_QUERY_TIME", 500*time.Millisecond),
		},
		Server: ServerConfig{
			Host:              getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:              getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:       getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:      getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:       getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout:   getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			BodyLimit:         getEnvInt("SERVER_BODY_LIMIT", 4*1024*1024), // 4MB
			EnableMetrics:     getEnvBool("SERVER_ENABLE_METRICS", true),
			EnableCompression: getEnvBool("SERVER_ENABLE_COMPRESSION", true),
			TrustedProxies:    getEnvStringSlice("SERVER_TRUSTED_PROXIES", []string{"127.0.0.1"}),
			ProxyHeader:       getEnvString("SERVER_PROXY_HEADER", "X-Forwarded-For"),
		},
		Security: SecurityConfig{
			AllowedOrigins:   getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:8080"}),
			AllowedMethods:   getEnvStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}),
			AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", true),
			CORSMaxAge:       getEnvInt("CORS_MAX_AGE", 86400),
			HSTSMaxAge:       getEnvInt("HSTS_MAX_AGE", 31536000), // 1 year
			CSPPolicy:        getEnvString("CSP_POLICY", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'"),
			ReferrerPolicy:   getEnvString("REFERRER_POLICY", "strict-origin-when-cross-origin"),
			GlobalRateLimit:  getEnvInt("GLOBAL_RATE_LIMIT", 600),
			PublicRateLimit:  getEnvInt("PUBLIC_RATE_LIMIT", 60),
			AuthRateLimit:    getEnvInt("AUTH_RATE_LIMIT", 10),
			ChatRateLimit:    getEnvInt("CHAT_RATE_LIMIT", 20),
			RateLimitWindow:  getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
			BcryptCost:       getEnvInt("BCRYPT_COST", 12),
		},
		Session: SessionConfig{
			Secret:       getEnvString("SESSION_SECRET", ""),
			TTL:          getEnvDuration("SESSION_TTL", 24*time.Hour),
			CookieName:   getEnvString("SESSION_COOKIE_NAME", "aether_session"),
			CookieSecure: getEnvBool("SESSION_COOKIE_SECURE", true),
			Issuer:       getEnvString("SESSION_ISSUER", "aetherinc"),
			Audience:     getEnvString("SESSION_AUDIENCE", "aetherinc-admin"),
		},
		Email: EmailConfig{
			Provider:      strings.ToLower(getEnvString("EMAIL_PROVIDER", EmailProviderDisabled)),
			From:          getEnvString("EMAIL_FROM", "AetherInc <noreply@aetherinc.xyz>"),
			AdminEmail:    getEnvString("ADMIN_EMAIL", ""),
			SMTPHost:      getEnvString("SMTP_HOST", ""),
			SMTPPort:      getEnvInt("SMTP_PORT", 587),
			SMTPUsername:  getEnvString("SMTP_USERNAME", ""),
			SMTPPassword:  getEnvString("SMTP_PASSWORD", ""),
			ResendAPIKey:  getEnvString("RESEND_API_KEY", ""),
			ResendBaseURL: getEnvString("RESEND_BASE_URL", "https://api.resend.com"),
			Timeout:       getEnvDuration("EMAIL_TIMEOUT", 15*time.Second),
		},
		AI: AIConfig{
			GeminiAPIKey:      getEnvString("GEMINI_API_KEY", ""),
			GeminiModel:       getEnvString("GEMINI_MODEL", "gemini-1.5-flash"),
			GeminiBaseURL:     getEnvString("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			RequestsPerMinute: getEnvInt("AI_REQUESTS_PER_MINUTE", 30),
			Timeout:           getEnvDuration("AI_TIMEOUT", 30*time.Second),
			SystemPrompt:      getEnvString("AI_SYSTEM_PROMPT", ""),
		},
		Logging: LoggingConfig{
			Level:      getEnvString("LOG_LEVEL", "info"),
			Output:     getEnvString("LOG_OUTPUT", "stdout"),
			FilePath:   getEnvString("LOG_FILE_PATH", "logs/aether.log"),
			MaxSize:    getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 10),
			MaxAge:     getEnvInt("LOG_MAX_AGE", 30),
			Compress:   getEnvBool("LOG_COMPRESS", true),
			Caller:     getEnvBool("LOG_ENABLE_CALLER", true),
			AccessLog:  getEnvBool("LOG_ENABLE_ACCESS", true),
		},
		Cache: CacheConfig{
			Enabled:     getEnvBool("CACHE_ENABLED", false),
			RedisURL:    getEnvString("CACHE_REDIS_URL", "redis://localhost:6379"),
			RedisDB:     getEnvInt("CACHE_REDIS_DB", 0),
			RedisPrefix: getEnvString("CACHE_REDIS_PREFIX", "aether:"),
		},
		Captcha: CaptchaConfig{
			Enabled:   getEnvBool("ADMIN_CAPTCHA_ENABLED", false),
			TTL:       getEnvDuration("ADMIN_CAPTCHA_TTL", 2*time.Minute),
			Padding:   getEnvInt("ADMIN_CAPTCHA_PADDING", 8),
			ImageSize: getEnvInt("ADMIN_CAPTCHA_IMAGE_SIZE", 220),
		},
	}

	// sqlite is the zero-setup default for local runs
	if cfg.Database.URL == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.URL = "file:aether.db?_foreign_keys=on"
	}
	return cfg
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// ValidateConfig reports every problem at once.
// Optional integrations with missing keys are not errors; they run disabled.
func ValidateConfig(cfg *Config) error {
	var errs []string

	// Database
	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.URL == "" {
			errs = append(errs, "DATABASE_URL is required for the postgres driver")
		}
	case "sqlite":
	default:
		errs = append(errs, "DB_DRIVER must be one of: postgres, sqlite")
	}
	if cfg.Database.MaxOpenConns <= 0 {
		errs = append(errs, "DB_MAX_OPEN_CONNS must be positive")
	}

	// Session
	if cfg.Session.Secret == "" {
		errs = append(errs, "SESSION_SECRET is required")
	} else if len(cfg.Session.Secret) < 32 {
		errs = append(errs, "SESSION_SECRET must be at least 32 characters long")
	}
	if cfg.Session.TTL <= 0 {
		errs = append(errs, "SESSION_TTL must be positive")
	}
	if cfg.Session.CookieName == "" {
		errs = append(errs, "SESSION_COOKIE_NAME is required")
	}

	// Server
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "SERVER_PORT must be between 1 and 65535")
	}
	if cfg.Server.ReadTimeout <= 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be positive")
	}
	if cfg.Server.WriteTimeout <= 0 {
		errs = append(errs, "SERVER_WRITE_TIMEOUT must be positive")
	}
	if cfg.Server.BodyLimit <= 0 {
		errs = append(errs, "SERVER_BODY_LIMIT must be positive")
	}

	// Security
	if cfg.Security.BcryptCost < 10 || cfg.Security.BcryptCost > 14 {
		errs = append(errs, "BCRYPT_COST must be between 10 and 14")
	}
	if cfg.Security.RateLimitWindow <= 0 {
		errs = append(errs, "RATE_LIMIT_WINDOW must be positive")
	}
	if cfg.App.SiteURL != "" {
		if u, err := url.Parse(cfg.App.SiteURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, "SITE_URL must be an absolute URL")
		}
	}

	// Email
	switch cfg.Email.Provider {
	case EmailProviderDisabled, EmailProviderResend:
	case EmailProviderSMTP:
		if cfg.Email.SMTPHost == "" {
			errs = append(errs, "SMTP_HOST is required when EMAIL_PROVIDER is smtp")
		}
		if cfg.Email.SMTPPort <= 0 || cfg.Email.SMTPPort > 65535 {
			errs = append(errs, "SMTP_PORT must be between 1 and 65535")
		}
	default:
		errs = append(errs, "EMAIL_PROVIDER must be one of: disabled, smtp, resend")
	}
	if cfg.Email.Provider != EmailProviderDisabled && cfg.Email.From == "" {
		errs = append(errs, "EMAIL_FROM is required when an email provider is configured")
	}

	// Logging
	validLevels := []string{"debug", "info", "warn", "error"}
	if cfg.Logging.Level != "" && !slices.Contains(validLevels, strings.ToLower(cfg.Logging.Level)) {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL must be one of: %v", validLevels))
	}
	validOutputs := []string{"stdout", "file", "both"}
	if !slices.Contains(validOutputs, strings.ToLower(cfg.Logging.Output)) {
		errs = append(errs, fmt.Sprintf("LOG_OUTPUT must be one of: %v", validOutputs))
	}

	// Cache
	if cfg.Cache.Enabled && cfg.Cache.RedisURL == "" {
		errs = append(errs, "CACHE_REDIS_URL is required when cache is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
