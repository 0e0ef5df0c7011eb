package app

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/campusauth/pkg/httpx"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadConfigFrom_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfigFrom(map[string]string{})
	require.NoError(t, err)

	require.Equal(t, "auth.db", cfg.DatabaseFile)
	require.Equal(t, "pepper", cfg.PepperFile)
	require.Equal(t, 5*time.Second, cfg.GoogleVerifyTimeout)
	require.Equal(t, 10*time.Minute, cfg.ResetCodeTTL)
	require.Equal(t, "outbox", cfg.NotifyDropDir)
	require.Equal(t, 15*time.Second, cfg.NotifyTimeout)
	require.Equal(t, 1024, cfg.AuditBufferSize)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.RequestTimeout)
	require.Equal(t, time.Hour, cfg.HousekeepingInterval)
	require.Equal(t, "json", cfg.LogFormat)

	require.Equal(t, uint32(19456), cfg.Hash.MemoryKiB)
	require.Equal(t, uint32(2), cfg.Hash.Iterations)
	require.Equal(t, uint8(1), cfg.Hash.Parallelism)
	require.Zero(t, cfg.Hash.Concurrency)

	require.Equal(t, httpx.StrictLimit, cfg.RateLimits.Strict)
	require.Equal(t, httpx.ModerateLimit, cfg.RateLimits.Moderate)
	require.Equal(t, httpx.PublicLimit, cfg.RateLimits.Public)

	require.ErrorIs(t, cfg.Validate(), ErrMissingJWTSecret)
}

func TestLoadConfigFrom_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfigFrom(map[string]string{
		"AUTH_JWT_SECRET":           testSecret,
		"GOOGLE_CLIENT_ID":          "client.apps.googleusercontent.com",
		"AUTH_HASH_MEMORY_KIB":      "65536",
		"AUTH_HASH_CONCURRENCY":     "4",
		"RESET_CODE_TTL":            "15m",
		"PORT":                      "9090",
		"RATELIMIT_STRICT_REQUESTS": "10",
		"RATELIMIT_PUBLIC_WINDOW":   "30s",
	})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, "client.apps.googleusercontent.com", cfg.GoogleClientID)
	require.Equal(t, uint32(65536), cfg.Hash.MemoryKiB)
	require.Equal(t, 4, cfg.Hash.Concurrency)
	require.Equal(t, 15*time.Minute, cfg.ResetCodeTTL)
	require.Equal(t, 9090, cfg.Port)

	require.Equal(t, 10, cfg.RateLimits.Strict.RequestsPerWindow)
	require.Equal(t, httpx.StrictLimit.Window, cfg.RateLimits.Strict.Window)
	require.Equal(t, httpx.StrictLimit.Burst, cfg.RateLimits.Strict.Burst)
	require.Equal(t, 30*time.Second, cfg.RateLimits.Public.Window)
}

func TestLoadConfigFrom_BadValue(t *testing.T) {
	t.Parallel()

	_, err := LoadConfigFrom(map[string]string{"PORT": "eighty"})
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		cfg, err := LoadConfigFrom(map[string]string{"AUTH_JWT_SECRET": testSecret})
		require.NoError(t, err)
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "at least 32 bytes"},
		{"blank secret", func(c *Config) { c.JWTSecret = "   " }, "AUTH_JWT_SECRET is required"},
		{"port", func(c *Config) { c.Port = 70000 }, "PORT"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
		{"reset ttl", func(c *Config) { c.ResetCodeTTL = 0 }, "RESET_CODE_TTL"},
		{"postmark sender", func(c *Config) { c.PostmarkServerToken = "pm" }, "MAIL_SENDER"},
		{"drop dir", func(c *Config) { c.NotifyDropDir = "" }, "NOTIFY_DROP_DIR"},
		{"notify timeout", func(c *Config) { c.NotifyTimeout = 0 }, "NOTIFY_TIMEOUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}
