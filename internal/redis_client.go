package internal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// scanBatchSize is the COUNT hint passed to every SCAN call
const scanBatchSize = 200

// RedisClientInterface defines the interface for Redis client operations
type RedisClientInterface interface {
	KeyValueStore
	SearchIndexer

	Health(ctx context.Context) error
	HealthWithRetry(ctx context.Context) error
	Config() *Config
	Close() error
}

// RedisClient wraps the go-redis client with additional functionality
type RedisClient struct {
	client *redis.Client
	config *Config
}

var _ RedisClientInterface = (*RedisClient)(nil)

// NewRedisClient creates a new Redis client with the provided configuration.
// The connection is established lazily by the pool and reused for the process lifetime.
func NewRedisClient(config *Config) (*RedisClient, error) {
	if config == nil {
		config = DefaultConfig()
	}

	// Validate configuration
	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	opts := &redis.Options{
		Addr:         config.RedisAddr,
		Password:     config.RedisPassword,
		DB:           config.RedisDB,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolSize:     config.PoolSize,
		// FT.* replies are only parsed into typed results over RESP2.
		Protocol: 2,
	}

	return &RedisClient{
		client: redis.NewClient(opts),
		config: config,
	}, nil
}

// Health performs a health check on the Redis connection
func (rc *RedisClient) Health(ctx context.Context) error {
	pong, err := rc.client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}

	if pong != "PONG" {
		return fmt.Errorf("unexpected ping response: %s", pong)
	}

	return nil
}

// Config returns the Redis client configuration
func (rc *RedisClient) Config() *Config {
	return rc.config
}

// Close closes the Redis client connection
func (rc *RedisClient) Close() error {
	return rc.client.Close()
}

// isRetryableError determines if an error should trigger a retry
func (rc *RedisClient) isRetryableError(err error) bool {
	if err == nil || errors.Is(err, redis.Nil) {
		return false
	}

	if isConnection(err) {
		return true
	}

	errorStr := strings.ToLower(err.Error())
	if strings.Contains(errorStr, "connection timeout") || strings.Contains(errorStr, "i/o timeout") {
		return true
	}

	// Redis-specific errors that might be retryable
	msg := err.Error()
	return strings.HasPrefix(msg, "LOADING") ||
		strings.HasPrefix(msg, "BUSY") ||
		strings.HasPrefix(msg, "TRYAGAIN")
}

// isOperationRetryable checks if the given operation should be retried
func (rc *RedisClient) isOperationRetryable(operation string) bool {
	if rc.config.RetryConfig == nil {
		return false
	}
	return slices.Contains(rc.config.RetryConfig.RetryableOps, operation)
}

// calculateBackoffDelay calculates the delay for the next retry attempt
func (rc *RedisClient) calculateBackoffDelay(attempt int) time.Duration {
	if rc.config.RetryConfig == nil {
		return time.Second
	}

	config := rc.config.RetryConfig

	delay := float64(config.InitialDelay) * math.Pow(config.Multiplier, float64(attempt))

	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}

	if config.Jitter {
		jitter := rand.Float64() * 0.1 * delay // 10% jitter
		delay += jitter
	}

	return time.Duration(delay)
}

// executeWithRetry executes a function with retry logic
func (rc *RedisClient) executeWithRetry(ctx context.Context, operation string, fn func() error) error {
	if !rc.isOperationRetryable(operation) || rc.config.RetryConfig.MaxAttempts <= 1 {
		return fn()
	}

	var lastErr error
	maxAttempts := rc.config.RetryConfig.MaxAttempts

	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if !rc.isRetryableError(err) {
			return err
		}

		// Don't wait after the last attempt
		if attempt == maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rc.calculateBackoffDelay(attempt)):
		}
	}

	return NewRetryExhaustedError(operation, maxAttempts, lastErr)
}

// HealthWithRetry performs a health check with retry logic
func (rc *RedisClient) HealthWithRetry(ctx context.Context) error {
	return rc.executeWithRetry(ctx, "ping", func() error {
		return rc.Health(ctx)
	})
}

// SetWithRetry performs a SET operation with retry logic. A zero expiration keeps the key forever.
func (rc *RedisClient) SetWithRetry(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return rc.executeWithRetry(ctx, "set", func() error {
		return rc.client.Set(ctx, key, value, expiration).Err()
	})
}

// GetWithRetry performs a GET operation with retry logic. A missing key yields redis.Nil.
func (rc *RedisClient) GetWithRetry(ctx context.Context, key string) (string, error) {
	var result string
	err := rc.executeWithRetry(ctx, "get", func() error {
		val, err := rc.client.Get(ctx, key).Result()
		if err != nil {
			return err
		}
		result = val
		return nil
	})
	return result, err
}

// DelWithRetry performs a DEL operation with retry logic and returns the number of removed keys
func (rc *RedisClient) DelWithRetry(ctx context.Context, keys ...string) (int64, error) {
	var removed int64
	err := rc.executeWithRetry(ctx, "del", func() error {
		n, err := rc.client.Del(ctx, keys...).Result()
		if err != nil {
			return err
		}
		removed = n
		return nil
	})
	return removed, err
}

// ExpireWithRetry performs an EXPIRE operation with retry logic
func (rc *RedisClient) ExpireWithRetry(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	var applied bool
	err := rc.executeWithRetry(ctx, "expire", func() error {
		ok, err := rc.client.Expire(ctx, key, expiration).Result()
		if err != nil {
			return err
		}
		applied = ok
		return nil
	})
	return applied, err
}

// ScanWithRetry walks the keyspace with SCAN and returns every key matching pattern
func (rc *RedisClient) ScanWithRetry(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	err := rc.executeWithRetry(ctx, "scan", func() error {
		keys = keys[:0]
		// SCAN may return a key more than once while the keyspace rehashes
		seen := make(map[string]struct{})
		iter := rc.client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()
		for iter.Next(ctx) {
			key := iter.Val()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
		return iter.Err()
	})
	return keys, err
}

// Get implements KeyValueStore
func (rc *RedisClient) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := rc.GetWithRetry(ctx, key)
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set implements KeyValueStore. The key never expires.
func (rc *RedisClient) Set(ctx context.Context, key, value string) error {
	return rc.SetWithRetry(ctx, key, value, 0)
}

// SetWithExpiry implements KeyValueStore
func (rc *RedisClient) SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return NewValidationError("expiry must be positive", nil)
	}
	return rc.SetWithRetry(ctx, key, value, ttl)
}

// Delete implements KeyValueStore
func (rc *RedisClient) Delete(ctx context.Context, key string) (bool, error) {
	n, err := rc.DelWithRetry(ctx, key)
	return n > 0, err
}

// ListKeys implements KeyValueStore using SCAN so large keyspaces are never blocked
func (rc *RedisClient) ListKeys(ctx context.Context, pattern string) ([]string, error) {
	return rc.ScanWithRetry(ctx, pattern)
}

// HashGet implements KeyValueStore
func (rc *RedisClient) HashGet(ctx context.Context, key, field string) (string, bool, error) {
	var result string
	err := rc.executeWithRetry(ctx, "hget", func() error {
		val, err := rc.client.HGet(ctx, key, field).Result()
		if err != nil {
			return err
		}
		result = val
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return result, true, nil
}

// HashSet implements KeyValueStore
func (rc *RedisClient) HashSet(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return NewValidationError("hash fields cannot be empty", nil)
	}
	values := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		values[k] = v
	}
	return rc.executeWithRetry(ctx, "hset", func() error {
		return rc.client.HSet(ctx, key, values).Err()
	})
}

// HashGetAll implements KeyValueStore. A missing key yields an empty map.
func (rc *RedisClient) HashGetAll(ctx context.Context, key string) (map[string]string, error) {
	var result map[string]string
	err := rc.executeWithRetry(ctx, "hgetall", func() error {
		val, err := rc.client.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		result = val
		return nil
	})
	return result, err
}

// Expire implements KeyValueStore
func (rc *RedisClient) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return rc.ExpireWithRetry(ctx, key, ttl)
}

// CreateSearchIndex creates a full-text index over hashes whose keys start with
// prefix. An index that already exists is left untouched.
func (rc *RedisClient) CreateSearchIndex(ctx context.Context, index, prefix string, fields ...string) error {
	schema := make([]*redis.FieldSchema, 0, len(fields))
	for _, field := range fields {
		schema = append(schema, &redis.FieldSchema{
			FieldName: field,
			FieldType: redis.SearchFieldTypeText,
		})
	}

	err := rc.client.FTCreate(ctx, index, &redis.FTCreateOptions{
		OnHash: true,
		Prefix: []interface{}{prefix},
	}, schema...).Err()
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "index already exists") {
		return nil
	}
	return err
}

// SearchIndex runs a full-text query and returns matching document keys in relevance order
func (rc *RedisClient) SearchIndex(ctx context.Context, index, query string, limit int) ([]string, error) {
	res, err := rc.client.FTSearchWithArgs(ctx, index, query, &redis.FTSearchOptions{
		NoContent:   true,
		LimitOffset: 0,
		Limit:       limit,
	}).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(res.Docs))
	for _, doc := range res.Docs {
		ids = append(ids, doc.ID)
	}
	return ids, nil
}
