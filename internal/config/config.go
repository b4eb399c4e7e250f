package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the moderation service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"moderation-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"MODERATION_API_PORT" envDefault:"8290"`
	LogLevel        string        `env:"MODERATION_LOG_LEVEL" envDefault:"info"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database (required, no default)
	DatabaseURL    string        `env:"MODERATION_DATABASE_URL,notEmpty"`
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Storage Backend Selection
	StorageBackend string `env:"MEDIA_STORAGE_BACKEND" envDefault:"s3"` // Options: "s3" or "local"

	// Local Storage Configuration
	LocalStoragePath string `env:"MEDIA_LOCAL_STORAGE_PATH"`

	// S3 Storage Configuration
	S3Endpoint     string        `env:"MEDIA_S3_ENDPOINT"`
	S3Region       string        `env:"MEDIA_S3_REGION" envDefault:"us-west-2"`
	S3Bucket       string        `env:"MEDIA_S3_BUCKET" envDefault:"media"`
	S3AccessKeyID  string        `env:"MEDIA_S3_ACCESS_KEY_ID"`
	S3SecretKey    string        `env:"MEDIA_S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle bool          `env:"MEDIA_S3_USE_PATH_STYLE" envDefault:"true"`
	SignedURLTTL   time.Duration `env:"MEDIA_SIGNED_URL_TTL" envDefault:"5m"`

	// Upload Policy Webhook
	PolicyWebhookURL     string        `env:"UPLOAD_POLICY_WEBHOOK_URL"`
	PolicyWebhookToken   string        `env:"UPLOAD_POLICY_WEBHOOK_TOKEN"`
	PolicyStrictMode     string        `env:"UPLOAD_POLICY_STRICT_MODE"`
	PolicyWebhookTimeout time.Duration `env:"UPLOAD_POLICY_WEBHOOK_TIMEOUT" envDefault:"10s"`

	// Policy Checks
	PolicyCheckMaxAge time.Duration `env:"MEDIA_POLICY_MAX_AGE" envDefault:"48h"`

	// Authentication
	AuthEnabled  bool   `env:"AUTH_ENABLED" envDefault:"false"`
	AuthIssuer   string `env:"AUTH_ISSUER"`
	AuthAudience string `env:"AUTH_AUDIENCE"`
	AuthJWKSURL  string `env:"AUTH_JWKS_URL"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.S3AccessKeyID = strings.TrimSpace(cfg.S3AccessKeyID)
	cfg.S3SecretKey = strings.TrimSpace(cfg.S3SecretKey)
	cfg.S3Endpoint = strings.TrimSpace(cfg.S3Endpoint)
	cfg.PolicyWebhookURL = strings.TrimSpace(cfg.PolicyWebhookURL)
	cfg.PolicyWebhookToken = strings.TrimSpace(cfg.PolicyWebhookToken)

	if cfg.SignedURLTTL <= 0 {
		cfg.SignedURLTTL = 5 * time.Minute
	}
	if cfg.PolicyCheckMaxAge <= 0 {
		cfg.PolicyCheckMaxAge = 48 * time.Hour
	}
	if cfg.AuthEnabled {
		if strings.TrimSpace(cfg.AuthIssuer) == "" {
			return nil, fmt.Errorf("AUTH_ISSUER is required when AUTH_ENABLED is true")
		}
		if strings.TrimSpace(cfg.AuthJWKSURL) == "" {
			return nil, fmt.Errorf("AUTH_JWKS_URL is required when AUTH_ENABLED is true")
		}
	}
	return cfg, nil
}

// StrictMode reports whether provider failures fail closed. Accepts the
// truthy strings 1/true/yes, case-insensitive.
func (c *Config) StrictMode() bool {
	switch strings.ToLower(strings.TrimSpace(c.PolicyStrictMode)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsLocalStorage returns true if local storage backend is configured.
func (c *Config) IsLocalStorage() bool {
	return strings.ToLower(strings.TrimSpace(c.StorageBackend)) == "local"
}
