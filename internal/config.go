package internal

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment variable read by LoadConfig
const EnvPrefix = "ALBUMCACHE_"

// Config holds Redis connection, TTL, upstream and rate limit configuration
type Config struct {
	// Redis connection settings
	RedisAddr     string `json:"redis_addr" env:"REDIS_ADDR"`         // Redis server address (host:port)
	RedisPassword string `json:"redis_password" env:"REDIS_PASSWORD"` // Redis password (optional)
	RedisDB       int    `json:"redis_db" env:"REDIS_DB"`             // Redis database number

	// Connection pool settings
	MaxRetries   int           `json:"max_retries" env:"REDIS_MAX_RETRIES"`
	DialTimeout  time.Duration `json:"dial_timeout" env:"REDIS_DIAL_TIMEOUT"`
	ReadTimeout  time.Duration `json:"read_timeout" env:"REDIS_READ_TIMEOUT"`
	WriteTimeout time.Duration `json:"write_timeout" env:"REDIS_WRITE_TIMEOUT"`
	PoolSize     int           `json:"pool_size" env:"REDIS_POOL_SIZE"`

	// Cache settings
	DefaultTTL  time.Duration `json:"default_ttl" env:"DEFAULT_TTL"`
	EntityTTL   time.Duration `json:"entity_ttl" env:"ENTITY_TTL"`      // albums, artists, release groups and their collections
	SearchTTL   time.Duration `json:"search_ttl" env:"SEARCH_TTL"`      // cached query results
	CoverArtTTL time.Duration `json:"cover_art_ttl" env:"COVER_ART_TTL"` // resolved cover art URLs

	// Full-text index over cached albums (requires the RediSearch module)
	SearchIndexEnabled bool   `json:"search_index_enabled" env:"SEARCH_INDEX_ENABLED"`
	SearchIndexName    string `json:"search_index_name" env:"SEARCH_INDEX_NAME"`

	// Upstream providers
	MetadataBaseURL string        `json:"metadata_base_url" env:"METADATA_BASE_URL"`
	CoverArtBaseURL string        `json:"cover_art_base_url" env:"COVER_ART_BASE_URL"`
	UserAgent       string        `json:"user_agent" env:"USER_AGENT"`
	HTTPTimeout     time.Duration `json:"http_timeout" env:"HTTP_TIMEOUT"`

	// Outbound rate limiting, shared by every upstream call
	RateLimitBurst      int           `json:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
	RateLimitWindow     time.Duration `json:"rate_limit_window" env:"RATE_LIMIT_WINDOW"`
	RateLimitMinSpacing time.Duration `json:"rate_limit_min_spacing" env:"RATE_LIMIT_MIN_SPACING"`

	// Resilience settings
	RetryConfig *RetryConfig `json:"retry_config" envPrefix:"RETRY_"`
}

// RetryConfig defines retry behavior with exponential backoff
type RetryConfig struct {
	MaxAttempts  int           `json:"max_attempts" env:"MAX_ATTEMPTS"`
	InitialDelay time.Duration `json:"initial_delay" env:"INITIAL_DELAY"`
	MaxDelay     time.Duration `json:"max_delay" env:"MAX_DELAY"`
	Multiplier   float64       `json:"multiplier" env:"MULTIPLIER"`
	Jitter       bool          `json:"jitter" env:"JITTER"`
	RetryableOps []string      `json:"retryable_ops"`
}

// DefaultRetryConfig returns a RetryConfig with sensible default values
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
		RetryableOps: []string{"ping", "get", "set", "del", "exists", "expire", "scan", "hget", "hset", "hgetall"},
	}
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		RedisAddr:           "localhost:6379",
		RedisPassword:       "",
		RedisDB:             0,
		MaxRetries:          3,
		DialTimeout:         5 * time.Second,
		ReadTimeout:         3 * time.Second,
		WriteTimeout:        3 * time.Second,
		PoolSize:            10,
		DefaultTTL:          24 * time.Hour,
		EntityTTL:           24 * time.Hour,
		SearchTTL:           time.Hour,
		CoverArtTTL:         7 * 24 * time.Hour,
		SearchIndexEnabled:  false,
		SearchIndexName:     "idx:albums",
		MetadataBaseURL:     "https://musicbrainz.org/ws/2",
		CoverArtBaseURL:     "https://coverartarchive.org",
		UserAgent:           "DailyAlbum/1.0 ( https://github.com/kengibson1111/go-album-metadata-cache )",
		HTTPTimeout:         15 * time.Second,
		RateLimitBurst:      5,
		RateLimitWindow:     time.Second,
		RateLimitMinSpacing: 100 * time.Millisecond,
		RetryConfig:         DefaultRetryConfig(),
	}
}

// LoadConfig returns DefaultConfig overlaid with any ALBUMCACHE_* environment
// variables that are set, then validates the result.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ValidateConfig validates the configuration parameters
func ValidateConfig(config *Config) error {
	if config.RedisAddr == "" {
		return fmt.Errorf("redis address cannot be empty")
	}

	if config.RedisDB < 0 || config.RedisDB > 15 {
		return fmt.Errorf("redis database must be between 0 and 15, got %d", config.RedisDB)
	}

	if config.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative, got %d", config.MaxRetries)
	}

	if config.DialTimeout <= 0 {
		return fmt.Errorf("dial timeout must be positive, got %v", config.DialTimeout)
	}

	if config.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %v", config.ReadTimeout)
	}

	if config.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive, got %v", config.WriteTimeout)
	}

	if config.PoolSize <= 0 {
		return fmt.Errorf("pool size must be positive, got %d", config.PoolSize)
	}

	validator := NewInputValidator()
	for name, ttl := range map[string]time.Duration{
		"default TTL":   config.DefaultTTL,
		"entity TTL":    config.EntityTTL,
		"search TTL":    config.SearchTTL,
		"cover art TTL": config.CoverArtTTL,
	} {
		if err := validator.ValidateTTL(ttl, false); err != nil {
			return fmt.Errorf("%s %v: %w", name, ttl, err)
		}
	}

	if config.SearchIndexEnabled && config.SearchIndexName == "" {
		return fmt.Errorf("search index name cannot be empty when the index is enabled")
	}

	if config.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	if config.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit burst must be at least 1, got %d", config.RateLimitBurst)
	}

	if config.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit window must be positive, got %v", config.RateLimitWindow)
	}

	if config.RateLimitMinSpacing < 0 {
		return fmt.Errorf("rate limit spacing cannot be negative, got %v", config.RateLimitMinSpacing)
	}

	// Validate retry configuration if provided
	if config.RetryConfig != nil {
		if err := validateRetryConfig(config.RetryConfig); err != nil {
			return fmt.Errorf("invalid retry configuration: %w", err)
		}
	}

	return nil
}

// validateRetryConfig validates the retry configuration parameters
func validateRetryConfig(config *RetryConfig) error {
	if config.MaxAttempts < 0 {
		return fmt.Errorf("max attempts cannot be negative, got %d", config.MaxAttempts)
	}

	if config.InitialDelay < 0 {
		return fmt.Errorf("initial delay cannot be negative, got %v", config.InitialDelay)
	}

	if config.MaxDelay < 0 {
		return fmt.Errorf("max delay cannot be negative, got %v", config.MaxDelay)
	}

	if config.Multiplier < 1.0 {
		return fmt.Errorf("multiplier must be >= 1.0, got %f", config.Multiplier)
	}

	if config.InitialDelay > config.MaxDelay {
		return fmt.Errorf("initial delay (%v) cannot be greater than max delay (%v)", config.InitialDelay, config.MaxDelay)
	}

	return nil
}
