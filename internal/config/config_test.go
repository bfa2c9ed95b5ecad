package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STOREFRONT_SHOP_DOMAIN", "shop.example.com")
	t.Setenv("STOREFRONT_API_TOKEN", "token-123")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8010, cfg.HTTPPort)
	assert.Equal(t, "2025-01", cfg.APIVersion)
	assert.Equal(t, 10*time.Second, cfg.CommerceTimeout)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Zero(t, cfg.IdentityTTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.OTELEnabled)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("STOREFRONT_SHOP_DOMAIN", "shop.example.com")
	// STOREFRONT_API_TOKEN intentionally unset.

	_, err := Load()

	require.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STOREFRONT_HTTP_PORT", "9001")
	t.Setenv("STOREFRONT_COMMERCE_TIMEOUT", "3s")
	t.Setenv("IDENTITY_TTL", "24h")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.com,https://staging.example.com")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.HTTPPort)
	assert.Equal(t, 3*time.Second, cfg.CommerceTimeout)
	assert.Equal(t, 24*time.Hour, cfg.IdentityTTL)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
	assert.Len(t, cfg.CORSAllowedOrigins, 2)
}

func TestLoad_InvalidPort(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STOREFRONT_HTTP_PORT", "70000")

	_, err := Load()

	require.Error(t, err)
}

func TestLoad_InvalidSampleRate(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OTEL_SAMPLE_RATE", "1.5")

	_, err := Load()

	require.Error(t, err)
}

func TestLoad_NegativeTimeout(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STOREFRONT_COMMERCE_TIMEOUT", "-1s")

	_, err := Load()

	require.Error(t, err)
}
