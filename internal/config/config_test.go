package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("POCKETBASE_URL", "")
	t.Setenv("FEATURE_PAYMENTS", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8090", cfg.PocketBase.URL)
	assert.False(t, cfg.Payments.Enabled)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 30, cfg.HealthRetries)
	assert.Equal(t, time.Second, cfg.HealthDelay)
	assert.False(t, cfg.SMTP.Enabled())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("POCKETBASE_URL", "https://pb.example.com/")
	t.Setenv("POCKETBASE_ADMIN_EMAIL", "root@example.com")
	t.Setenv("POCKETBASE_ADMIN_PASSWORD", "s3cret")
	t.Setenv("FEATURE_PAYMENTS", "true")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_abc")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("REDIS_URL", "redis://cache")
	t.Setenv("HEALTH_RETRIES", "5")
	t.Setenv("HEALTH_DELAY", "250ms")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://pb.example.com", cfg.PocketBase.URL)
	assert.True(t, cfg.Payments.Enabled)
	assert.Equal(t, "sk_test_abc", cfg.Payments.StripeSecretKey)
	assert.True(t, cfg.SMTP.Enabled())
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, 5, cfg.HealthRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.HealthDelay)
	assert.NoError(t, cfg.RequireAdmin())
}

func TestRequireAdmin(t *testing.T) {
	cfg := &Config{PocketBase: PocketBase{AdminEmail: "root@example.com"}}
	assert.ErrorIs(t, cfg.RequireAdmin(), ErrMissingAdminCredentials)

	cfg = &Config{PocketBase: PocketBase{AdminPassword: "x"}}
	assert.ErrorIs(t, cfg.RequireAdmin(), ErrMissingAdminCredentials)
}

func TestParseRedisAddr(t *testing.T) {
	assert.Equal(t, "localhost:6379", parseRedisAddr("redis://localhost:6379/"))
	assert.Equal(t, "h:1", parseRedisAddr("rediss://h:1"))
	assert.Equal(t, "h:6379", parseRedisAddr("h"))
}
