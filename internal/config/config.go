package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingAdminCredentials is returned by RequireAdmin when the superuser
// email or password is not configured.
var ErrMissingAdminCredentials = errors.New("config: POCKETBASE_ADMIN_EMAIL and POCKETBASE_ADMIN_PASSWORD are required")

type Config struct {
	// Server
	Env       string
	Version   string
	LogLevel  string
	LogFormat string

	// Redis
	RedisURL  string
	RedisAddr string // host:port format for Asynq

	PocketBase PocketBase
	Payments   Payments
	SMTP       SMTP

	// SeedPassword is the shared password for seeded users.
	SeedPassword string

	HealthRetries int
	HealthDelay   time.Duration

	// SnapshotSchedule is the cron spec for tenant health snapshots.
	SnapshotSchedule string

	// EncryptionKey seals tenant integration credentials (64 hex chars).
	EncryptionKey string
}

type PocketBase struct {
	URL           string
	AdminEmail    string
	AdminPassword string
}

type Payments struct {
	Enabled         bool
	StripeSecretKey string
}

type SMTP struct {
	Host          string
	Port          int
	Username      string
	Password      string
	TLS           bool
	SenderAddress string
	SenderName    string
}

// Enabled reports whether an SMTP host is configured.
func (s SMTP) Enabled() bool { return s.Host != "" }

var defaults = map[string]any{
	"ENV":                    "development",
	"VERSION":                "0.1.0",
	"LOG_LEVEL":              "info",
	"LOG_FORMAT":             "json",
	"REDIS_URL":              "",
	"POCKETBASE_URL":         "http://127.0.0.1:8090",
	"FEATURE_PAYMENTS":       false,
	"SMTP_PORT":              587,
	"SMTP_TLS":               false,
	"SMTP_SENDER_NAME":       "Grow Your Need",
	"HEALTH_RETRIES":         30,
	"HEALTH_DELAY":           "1s",
	"TENANT_HEALTH_SCHEDULE": "@every 1h",
}

// Load reads configuration from the environment, after loading .env if present.
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Env:       v.GetString("ENV"),
		Version:   v.GetString("VERSION"),
		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),
		RedisURL:  v.GetString("REDIS_URL"),
		PocketBase: PocketBase{
			URL:           strings.TrimRight(v.GetString("POCKETBASE_URL"), "/"),
			AdminEmail:    v.GetString("POCKETBASE_ADMIN_EMAIL"),
			AdminPassword: v.GetString("POCKETBASE_ADMIN_PASSWORD"),
		},
		Payments: Payments{
			Enabled:         v.GetBool("FEATURE_PAYMENTS"),
			StripeSecretKey: v.GetString("STRIPE_SECRET_KEY"),
		},
		SMTP: SMTP{
			Host:          v.GetString("SMTP_HOST"),
			Port:          v.GetInt("SMTP_PORT"),
			Username:      v.GetString("SMTP_USER"),
			Password:      v.GetString("SMTP_PASSWORD"),
			TLS:           v.GetBool("SMTP_TLS"),
			SenderAddress: v.GetString("SMTP_SENDER_ADDRESS"),
			SenderName:    v.GetString("SMTP_SENDER_NAME"),
		},
		SeedPassword:     v.GetString("SEED_USER_PASSWORD"),
		HealthRetries:    v.GetInt("HEALTH_RETRIES"),
		HealthDelay:      v.GetDuration("HEALTH_DELAY"),
		SnapshotSchedule: v.GetString("TENANT_HEALTH_SCHEDULE"),
		EncryptionKey:    v.GetString("GYN_ENCRYPTION_KEY"),
	}

	if cfg.RedisURL != "" {
		cfg.RedisAddr = parseRedisAddr(cfg.RedisURL)
	}
	if cfg.PocketBase.URL == "" {
		cfg.PocketBase.URL = "http://127.0.0.1:8090"
	}
	if cfg.HealthRetries < 1 {
		cfg.HealthRetries = 1
	}
	if cfg.HealthDelay <= 0 {
		cfg.HealthDelay = time.Second
	}
	return cfg
}

// RequireAdmin fails when superuser credentials are missing. Commands that
// talk to a remote instance call it before doing anything else.
func (c *Config) RequireAdmin() error {
	if strings.TrimSpace(c.PocketBase.AdminEmail) == "" || c.PocketBase.AdminPassword == "" {
		return ErrMissingAdminCredentials
	}
	return nil
}

// parseRedisAddr extracts host:port from Redis URL
// Supports: redis://host:port, host:port, host
func parseRedisAddr(redisURL string) string {
	addr := strings.TrimPrefix(redisURL, "redis://")
	addr = strings.TrimPrefix(addr, "rediss://")
	addr = strings.TrimSuffix(addr, "/")

	// If no port specified, add default Redis port
	if !strings.Contains(addr, ":") {
		addr = addr + ":6379"
	}
	return addr
}
