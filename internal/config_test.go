package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("ALBUMCACHE_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("ALBUMCACHE_REDIS_DB", "2")
	t.Setenv("ALBUMCACHE_SEARCH_TTL", "30m")
	t.Setenv("ALBUMCACHE_SEARCH_INDEX_ENABLED", "true")
	t.Setenv("ALBUMCACHE_RATE_LIMIT_BURST", "3")
	t.Setenv("ALBUMCACHE_USER_AGENT", "TestAgent/0.1 ( test@example.com )")
	t.Setenv("ALBUMCACHE_RETRY_MAX_ATTEMPTS", "5")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "redis.internal:6380", config.RedisAddr)
	assert.Equal(t, 2, config.RedisDB)
	assert.Equal(t, 30*time.Minute, config.SearchTTL)
	assert.True(t, config.SearchIndexEnabled)
	assert.Equal(t, 3, config.RateLimitBurst)
	assert.Equal(t, "TestAgent/0.1 ( test@example.com )", config.UserAgent)
	require.NotNil(t, config.RetryConfig)
	assert.Equal(t, 5, config.RetryConfig.MaxAttempts)

	// untouched values keep their defaults
	assert.Equal(t, 24*time.Hour, config.EntityTTL)
	assert.Equal(t, "idx:albums", config.SearchIndexName)
	assert.Contains(t, config.RetryConfig.RetryableOps, "scan")
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Run("unparseable duration", func(t *testing.T) {
		t.Setenv("ALBUMCACHE_ENTITY_TTL", "forever")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("parses but fails validation", func(t *testing.T) {
		t.Setenv("ALBUMCACHE_REDIS_DB", "42")
		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis database must be between 0 and 15")
	})
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{name: "valid default config", mutate: func(*Config) {}},
		{name: "empty redis address", mutate: func(c *Config) { c.RedisAddr = "" }, errorMsg: "redis address cannot be empty"},
		{name: "negative redis database", mutate: func(c *Config) { c.RedisDB = -1 }, errorMsg: "redis database must be between 0 and 15"},
		{name: "redis database too high", mutate: func(c *Config) { c.RedisDB = 16 }, errorMsg: "redis database must be between 0 and 15"},
		{name: "negative max retries", mutate: func(c *Config) { c.MaxRetries = -1 }, errorMsg: "max retries cannot be negative"},
		{name: "zero dial timeout", mutate: func(c *Config) { c.DialTimeout = 0 }, errorMsg: "dial timeout must be positive"},
		{name: "zero pool size", mutate: func(c *Config) { c.PoolSize = 0 }, errorMsg: "pool size must be positive"},
		{name: "zero default TTL", mutate: func(c *Config) { c.DefaultTTL = 0 }, errorMsg: "default TTL"},
		{name: "zero search TTL", mutate: func(c *Config) { c.SearchTTL = 0 }, errorMsg: "TTL cannot be zero"},
		{name: "negative cover art TTL", mutate: func(c *Config) { c.CoverArtTTL = -time.Hour }, errorMsg: "TTL cannot be negative"},
		{name: "entity TTL over a year", mutate: func(c *Config) { c.EntityTTL = 400 * 24 * time.Hour }, errorMsg: "entity TTL"},
		{name: "enabled index without a name", mutate: func(c *Config) { c.SearchIndexEnabled = true; c.SearchIndexName = "" }, errorMsg: "search index name cannot be empty"},
		{name: "empty user agent", mutate: func(c *Config) { c.UserAgent = "" }, errorMsg: "user agent cannot be empty"},
		{name: "zero rate limit burst", mutate: func(c *Config) { c.RateLimitBurst = 0 }, errorMsg: "rate limit burst must be at least 1"},
		{name: "zero rate limit window", mutate: func(c *Config) { c.RateLimitWindow = 0 }, errorMsg: "rate limit window must be positive"},
		{name: "spacing disabled", mutate: func(c *Config) { c.RateLimitMinSpacing = 0 }},
		{name: "retry multiplier below one", mutate: func(c *Config) { c.RetryConfig.Multiplier = 0.5 }, errorMsg: "multiplier must be >= 1.0"},
		{name: "retry delays inverted", mutate: func(c *Config) { c.RetryConfig.InitialDelay = 10 * time.Second }, errorMsg: "cannot be greater than max delay"},
		{name: "no retry config", mutate: func(c *Config) { c.RetryConfig = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := ValidateConfig(config)
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	assert.Equal(t, 3, config.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, config.InitialDelay)
	assert.Equal(t, 5*time.Second, config.MaxDelay)
	assert.Equal(t, 2.0, config.Multiplier)
	assert.True(t, config.Jitter)
	assert.Equal(t, []string{"ping", "get", "set", "del", "exists", "expire", "scan", "hget", "hset", "hgetall"}, config.RetryableOps)
}
