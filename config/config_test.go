package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LOG_MODE", "STORE_DRIVER", "DATA_DIR", "BOLT_PATH", "MONGODB_URI", "MONGODB_DB",
		"AWS_S3_BUCKET", "AWS_REGION", "S3_PREFIX", "ISSUE_PERIOD_DAYS", "FINE_PER_DAY",
		"STORE_MAX_RETRIES", "JWT_SECRET", "AUTH_EMAIL", "AUTH_PASSWORD",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverBolt, cfg.StoreDriver)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "data/library.db", cfg.BoltPath)
	assert.Equal(t, 7*24*time.Hour, cfg.IssuePeriod)
	assert.Equal(t, 5.0, cfg.FinePerDay)
	assert.Equal(t, 3, cfg.StoreMaxRetries)
	assert.False(t, cfg.AuthEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "FILE")
	t.Setenv("DATA_DIR", "/var/lib/library")
	t.Setenv("ISSUE_PERIOD_DAYS", "14")
	t.Setenv("FINE_PER_DAY", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverFile, cfg.StoreDriver)
	assert.Equal(t, "/var/lib/library/library.db", cfg.BoltPath)
	assert.Equal(t, 14*24*time.Hour, cfg.IssuePeriod)
	assert.Equal(t, 2.5, cfg.FinePerDay)
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("FINE_PER_DAY", "five")

	_, err := Load()
	assert.ErrorContains(t, err, "FINE_PER_DAY")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{StoreDriver: DriverBolt, IssuePeriod: time.Hour, FinePerDay: 1, StoreMaxRetries: 1}
	}

	cases := map[string]func(c *Config){
		"unknown driver":     func(c *Config) { c.StoreDriver = "redis" },
		"s3 without bucket":  func(c *Config) { c.StoreDriver = DriverS3 },
		"zero period":        func(c *Config) { c.IssuePeriod = 0 },
		"negative fine":      func(c *Config) { c.FinePerDay = -1 },
		"no retries":         func(c *Config) { c.StoreMaxRetries = 0 },
		"auth without creds": func(c *Config) { c.JWTSecret = "secret" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, base().Validate())
}
