package cache

import (
	"github.com/kengibson1111/go-album-metadata-cache/internal"
	"github.com/kengibson1111/go-album-metadata-cache/internal/models"
)

// Configuration types
type (
	RedisConfig      = internal.Config
	RedisRetryConfig = internal.RetryConfig
)

// DefaultRedisConfig returns the default configuration
func DefaultRedisConfig() *RedisConfig {
	return internal.DefaultConfig()
}

// DefaultRedisRetryConfig returns the default retry configuration
func DefaultRedisRetryConfig() *RedisRetryConfig {
	return internal.DefaultRetryConfig()
}

// LoadRedisConfig returns the default configuration overlaid with ALBUMCACHE_* environment variables
func LoadRedisConfig() (*RedisConfig, error) {
	return internal.LoadConfig()
}

// Record types
type (
	Album        = models.Album
	Track        = models.Track
	Artist       = models.Artist
	ReleaseGroup = models.ReleaseGroup
	SearchResult = models.SearchResult
)

// Error types
type (
	CacheError     = internal.CacheError
	CacheErrorType = internal.ErrorType
)

// Error type values
const (
	CacheErrorTypeConnection        = internal.ErrorTypeConnection
	CacheErrorTypeKeyInvalid        = internal.ErrorTypeKeyInvalid
	CacheErrorTypeNotFound          = internal.ErrorTypeNotFound
	CacheErrorTypeSerialization     = internal.ErrorTypeSerialization
	CacheErrorTypeTimeout           = internal.ErrorTypeTimeout
	CacheErrorTypeCapacity          = internal.ErrorTypeCapacity
	CacheErrorTypeValidation        = internal.ErrorTypeValidation
	CacheErrorTypeUpstream          = internal.ErrorTypeUpstream
	CacheErrorTypeMalformedResponse = internal.ErrorTypeMalformedResponse
	CacheErrorTypeRetryExhausted    = internal.ErrorTypeRetryExhausted
)

// Error helpers
var (
	IsConnectionError        = internal.IsConnectionError
	IsNotFoundError          = internal.IsNotFoundError
	IsValidationError        = internal.IsValidationError
	IsTimeoutError           = internal.IsTimeoutError
	IsUpstreamError          = internal.IsUpstreamError
	IsMalformedResponseError = internal.IsMalformedResponseError
	IsRetryExhaustedError    = internal.IsRetryExhaustedError
)
