package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/cardhouse/storefront/pkg/config"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8010"`

	// Commerce API
	ShopDomain      string        `env:"STOREFRONT_SHOP_DOMAIN,required"`
	APIToken        string        `env:"STOREFRONT_API_TOKEN,required"`
	APIVersion      string        `env:"STOREFRONT_API_VERSION" envDefault:"2025-01"`
	CommerceTimeout time.Duration `env:"STOREFRONT_COMMERCE_TIMEOUT" envDefault:"10s"`

	// Redis (cart identity storage)
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// IdentityTTL bounds how long a session's cart identity is kept. Zero
	// means no expiry; the remote cart's own lifetime is the real bound.
	IdentityTTL time.Duration `env:"IDENTITY_TTL" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"0.1"`
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

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.CommerceTimeout <= 0 {
		return fmt.Errorf("commerce timeout must be positive, got %s", c.CommerceTimeout)
	}
	if c.IdentityTTL < 0 {
		return fmt.Errorf("identity TTL must not be negative, got %s", c.IdentityTTL)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("otel sample rate must be within [0, 1], got %f", c.OTELSampleRate)
	}
	return nil
}
