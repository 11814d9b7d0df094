package config

import (
	"fmt"
	"net/url"
	"slices"
	"time"

	pkgconfig "github.com/utafrali/FreshMarket/pkg/config"
	"github.com/utafrali/FreshMarket/pkg/middleware"
)

// Storage drivers for session snapshots.
const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

const defaultJWTSecret = "change-this-to-a-secure-secret"

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8012"`

	// Snapshot storage
	StorageDriver string `env:"STOREFRONT_STORAGE" envDefault:"redis"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass     string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Snapshot TTL in hours (default: 30 days)
	SnapshotTTL int `env:"SNAPSHOT_TTL_HOURS" envDefault:"720"`

	// Sessions unused for this many minutes are dropped from memory.
	SessionIdleMinutes int `env:"SESSION_IDLE_MINUTES" envDefault:"30"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Marketplace API
	MarketplaceURL     string `env:"MARKETPLACE_API_URL" envDefault:"http://localhost:8080/api/v1"`
	MarketplaceTimeout int    `env:"MARKETPLACE_TIMEOUT_SECONDS" envDefault:"10"`

	// Circuit breaker settings for marketplace calls
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// Auth
	JWTSecret string `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTIssuer string `env:"JWT_ISSUER" envDefault:"freshmarket"`

	// Session collections
	NotificationLimit int `env:"NOTIFICATION_LIMIT" envDefault:"50"`
	ComparisonLimit   int `env:"COMPARISON_LIMIT" envDefault:"4"`

	// Browser origins of the storefront SPA
	CORSAllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	CORSAllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`

	// Rate limiting per session
	RateLimitRPS   int `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"100"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom reads configuration from the given environment map.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadFrom(cfg, environ); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if !slices.Contains([]string{StorageRedis, StorageMemory}, c.StorageDriver) {
		return fmt.Errorf("STOREFRONT_STORAGE must be %q or %q, got %q", StorageRedis, StorageMemory, c.StorageDriver)
	}
	if c.StorageDriver == StorageRedis && c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}
	if c.SnapshotTTL < 1 {
		return fmt.Errorf("SNAPSHOT_TTL_HOURS must be positive, got %d", c.SnapshotTTL)
	}
	if c.SessionIdleMinutes < 1 {
		return fmt.Errorf("SESSION_IDLE_MINUTES must be positive, got %d", c.SessionIdleMinutes)
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.MarketplaceURL == "" {
		return fmt.Errorf("MARKETPLACE_API_URL is required")
	}
	if _, err := url.ParseRequestURI(c.MarketplaceURL); err != nil {
		return fmt.Errorf("invalid MARKETPLACE_API_URL %q: %w", c.MarketplaceURL, err)
	}
	if c.MarketplaceTimeout < 1 {
		return fmt.Errorf("MARKETPLACE_TIMEOUT_SECONDS must be positive, got %d", c.MarketplaceTimeout)
	}
	if c.NotificationLimit < 1 {
		return fmt.Errorf("NOTIFICATION_LIMIT must be positive, got %d", c.NotificationLimit)
	}
	if c.ComparisonLimit < 1 {
		return fmt.Errorf("COMPARISON_LIMIT must be positive, got %d", c.ComparisonLimit)
	}
	if c.RateLimitRPS < 1 || c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}

	// In non-development environments, require an explicitly set, strong JWT secret.
	if c.Environment != "development" {
		if c.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", c.Environment)
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(c.JWTSecret))
		}
		if slices.Contains(c.CORSAllowedOrigins, "*") {
			return fmt.Errorf("CORS_ALLOWED_ORIGINS must list explicit origins in %q mode", c.Environment)
		}
	}
	return nil
}

// SnapshotTTLDuration returns the snapshot TTL.
func (c *Config) SnapshotTTLDuration() time.Duration {
	return time.Duration(c.SnapshotTTL) * time.Hour
}

// SessionIdle returns how long a session may stay unused in memory.
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

// CORS returns the CORS settings for the HTTP router.
func (c *Config) CORS() middleware.CORSConfig {
	return middleware.CORSConfig{
		AllowedOrigins:   c.CORSAllowedOrigins,
		AllowCredentials: c.CORSAllowCredentials,
	}
}

// MarketplaceTimeoutDuration returns the per-request marketplace timeout.
func (c *Config) MarketplaceTimeoutDuration() time.Duration {
	return time.Duration(c.MarketplaceTimeout) * time.Second
}
