package internal

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newTestRedisClient(t *testing.T, mutate func(*Config)) *RedisClient {
	t.Helper()
	config := DefaultConfig()
	if mutate != nil {
		mutate(config)
	}
	client, err := NewRedisClient(config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// fastRetries keeps retry tests quick and deterministic
func fastRetries(attempts int) func(*Config) {
	return func(c *Config) {
		c.RetryConfig.MaxAttempts = attempts
		c.RetryConfig.InitialDelay = time.Millisecond
		c.RetryConfig.Jitter = false
	}
}

func TestNewRedisClient(t *testing.T) {
	t.Run("with valid config", func(t *testing.T) {
		config := DefaultConfig()
		config.RedisAddr = "cache.internal:6380"
		client, err := NewRedisClient(config)
		require.NoError(t, err)
		defer client.Close()
		assert.Same(t, config, client.Config())
	})

	t.Run("with nil config uses defaults", func(t *testing.T) {
		client, err := NewRedisClient(nil)
		require.NoError(t, err)
		defer client.Close()
		assert.Equal(t, DefaultConfig(), client.Config())
	})

	t.Run("with invalid config", func(t *testing.T) {
		config := DefaultConfig()
		config.PoolSize = 0
		_, err := NewRedisClient(config)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}

func TestIsRetryableError(t *testing.T) {
	client := newTestRedisClient(t, nil)

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp 127.0.0.1:6379: connect: connection refused"), true},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"i/o timeout", errors.New("read tcp 127.0.0.1:6379: i/o timeout"), true},
		{"closed client", errors.New("redis: client is closed"), true},
		{"redis loading", errors.New("LOADING Redis is loading the dataset in memory"), true},
		{"redis busy", errors.New("BUSY Redis is busy running a script"), true},
		{"redis tryagain", errors.New("TRYAGAIN Multiple keys request during rehashing of slot"), true},
		{"wrong type", errors.New("WRONGTYPE Operation against a key holding the wrong kind of value"), false},
		{"authentication", errors.New("NOAUTH Authentication required"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, client.isRetryableError(tt.err))
		})
	}
}

func TestIsOperationRetryable(t *testing.T) {
	client := newTestRedisClient(t, nil)

	for _, op := range []string{"ping", "get", "set", "del", "expire", "scan", "hget", "hset", "hgetall"} {
		assert.True(t, client.isOperationRetryable(op), op)
	}
	// index creation is not idempotent enough to retry blindly
	assert.False(t, client.isOperationRetryable("ft.create"))

	client.config.RetryConfig = nil
	assert.False(t, client.isOperationRetryable("get"))
}

func TestCalculateBackoffDelay(t *testing.T) {
	t.Run("exponential without jitter", func(t *testing.T) {
		client := newTestRedisClient(t, func(c *Config) { c.RetryConfig.Jitter = false })
		assert.Equal(t, 100*time.Millisecond, client.calculateBackoffDelay(0))
		assert.Equal(t, 200*time.Millisecond, client.calculateBackoffDelay(1))
		assert.Equal(t, 400*time.Millisecond, client.calculateBackoffDelay(2))
	})

	t.Run("jitter adds at most ten percent", func(t *testing.T) {
		client := newTestRedisClient(t, nil)
		for attempt, base := range []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond} {
			delay := client.calculateBackoffDelay(attempt)
			assert.GreaterOrEqual(t, delay, base)
			assert.LessOrEqual(t, delay, base+base/10)
		}
	})

	t.Run("capped at max delay", func(t *testing.T) {
		client := newTestRedisClient(t, func(c *Config) {
			c.RetryConfig.Jitter = false
			c.RetryConfig.MaxDelay = 300 * time.Millisecond
		})
		assert.Equal(t, 300*time.Millisecond, client.calculateBackoffDelay(2))
	})
}

func TestExecuteWithRetry(t *testing.T) {
	refused := errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")

	t.Run("success runs once", func(t *testing.T) {
		client := newTestRedisClient(t, fastRetries(3))
		calls := 0
		err := client.executeWithRetry(context.Background(), "get", func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("operation outside the retry list runs once", func(t *testing.T) {
		client := newTestRedisClient(t, fastRetries(3))
		calls := 0
		err := client.executeWithRetry(context.Background(), "flushall", func() error {
			calls++
			return refused
		})
		assert.Same(t, refused, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("permanent error is not retried", func(t *testing.T) {
		client := newTestRedisClient(t, fastRetries(3))
		wrongType := errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")
		calls := 0
		err := client.executeWithRetry(context.Background(), "get", func() error {
			calls++
			return wrongType
		})
		assert.Same(t, wrongType, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("exhausted retries wrap the last failure", func(t *testing.T) {
		client := newTestRedisClient(t, fastRetries(3))
		calls := 0
		err := client.executeWithRetry(context.Background(), "set", func() error {
			calls++
			return refused
		})
		require.Error(t, err)
		assert.True(t, IsRetryExhaustedError(err))
		assert.ErrorIs(t, err, refused)
		assert.Contains(t, err.Error(), "failed after 3 attempts")
		assert.Equal(t, 3, calls)
	})

	t.Run("eventual success", func(t *testing.T) {
		client := newTestRedisClient(t, fastRetries(3))
		calls := 0
		err := client.executeWithRetry(context.Background(), "scan", func() error {
			calls++
			if calls < 3 {
				return refused
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("context cancellation stops the backoff", func(t *testing.T) {
		client := newTestRedisClient(t, func(c *Config) {
			c.RetryConfig.MaxAttempts = 10
			c.RetryConfig.InitialDelay = 100 * time.Millisecond
			c.RetryConfig.Jitter = false
		})
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		calls := 0
		err := client.executeWithRetry(ctx, "ping", func() error {
			calls++
			return refused
		})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 1, calls)
	})
}

func TestRedisClient_ArgumentValidation(t *testing.T) {
	client := newTestRedisClient(t, nil)
	ctx := context.Background()

	// both are rejected before any command is sent
	assert.True(t, IsValidationError(client.SetWithExpiry(ctx, "/search/x", "v", 0)))
	assert.True(t, IsValidationError(client.SetWithExpiry(ctx, "/search/x", "v", -time.Second)))
	assert.True(t, IsValidationError(client.HashSet(ctx, "/index/albums/x", nil)))
}

func TestRedisClient_UnreachableServer(t *testing.T) {
	client := newTestRedisClient(t, func(c *Config) {
		c.RedisAddr = "localhost:1"
		c.DialTimeout = 100 * time.Millisecond
		fastRetries(2)(c)
	})
	ctx := context.Background()

	err := client.HealthWithRetry(ctx)
	assert.True(t, IsRetryExhaustedError(err), "got %v", err)

	_, found, err := client.Get(ctx, "/albums/id/a1")
	assert.False(t, found)
	assert.True(t, IsRetryExhaustedError(err), "got %v", err)

	removed, err := client.Delete(ctx, "/albums/id/a1")
	assert.False(t, removed)
	assert.True(t, IsRetryExhaustedError(err), "got %v", err)

	_, err = client.ListKeys(ctx, "/albums/*")
	assert.True(t, IsRetryExhaustedError(err), "got %v", err)
}

// startRedisStack runs a Redis Stack container, which carries the search module
func startRedisStack(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis/redis-stack-server:latest",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skip("Docker not available for testing:", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err, "failed to get container endpoint")
	return endpoint
}

func TestRedisClient_Contract(t *testing.T) {
	addr := startRedisStack(t)
	client := newTestRedisClient(t, func(c *Config) { c.RedisAddr = addr })
	ctx := context.Background()

	require.NoError(t, client.HealthWithRetry(ctx))

	t.Run("missing key reads as not found", func(t *testing.T) {
		value, found, err := client.Get(ctx, "/albums/id/missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, value)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "/albums/id/c1", `{"id":"c1"}`))
		value, found, err := client.Get(ctx, "/albums/id/c1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `{"id":"c1"}`, value)

		ttl, err := client.client.TTL(ctx, "/albums/id/c1").Result()
		require.NoError(t, err)
		assert.Equal(t, time.Duration(-1), ttl, "Set keeps the key forever")
	})

	t.Run("set with expiry applies the TTL", func(t *testing.T) {
		require.NoError(t, client.SetWithExpiry(ctx, "/search/c2", "{}", time.Hour))
		ttl, err := client.client.TTL(ctx, "/search/c2").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 59*time.Minute)
		assert.LessOrEqual(t, ttl, time.Hour)
	})

	t.Run("delete reports whether the key was present", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "/artists/id/c3", "{}"))

		removed, err := client.Delete(ctx, "/artists/id/c3")
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = client.Delete(ctx, "/artists/id/c3")
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("list keys walks every scan page", func(t *testing.T) {
		const n = 3 * scanBatchSize
		want := make([]string, 0, n)
		for i := 0; i < n; i++ {
			key := fmt.Sprintf("/coverart/page-%d", i)
			require.NoError(t, client.SetWithExpiry(ctx, key, "u", time.Hour))
			want = append(want, key)
		}
		require.NoError(t, client.SetWithExpiry(ctx, "/coverart/other", "u", time.Hour))

		keys, err := client.ListKeys(ctx, "/coverart/page-*")
		require.NoError(t, err)
		assert.ElementsMatch(t, want, keys)
	})

	t.Run("hash reads", func(t *testing.T) {
		_, found, err := client.HashGet(ctx, "/index/albums/none", "title")
		require.NoError(t, err)
		assert.False(t, found, "missing key")

		require.NoError(t, client.HashSet(ctx, "/index/albums/c4", map[string]string{"title": "Abbey Road", "artistName": "The Beatles"}))

		title, found, err := client.HashGet(ctx, "/index/albums/c4", "title")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "Abbey Road", title)

		_, found, err = client.HashGet(ctx, "/index/albums/c4", "data")
		require.NoError(t, err)
		assert.False(t, found, "missing field")

		all, err := client.HashGetAll(ctx, "/index/albums/c4")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"title": "Abbey Road", "artistName": "The Beatles"}, all)

		all, err = client.HashGetAll(ctx, "/index/albums/none")
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("expire", func(t *testing.T) {
		applied, err := client.Expire(ctx, "/index/albums/none", time.Minute)
		require.NoError(t, err)
		assert.False(t, applied)

		require.NoError(t, client.HashSet(ctx, "/index/albums/c5", map[string]string{"title": "Let It Be"}))
		applied, err = client.Expire(ctx, "/index/albums/c5", time.Minute)
		require.NoError(t, err)
		assert.True(t, applied)
	})

	t.Run("search index", func(t *testing.T) {
		require.NoError(t, client.CreateSearchIndex(ctx, "idx:contract", "/index/albums/", "title", "artistName"))
		require.NoError(t, client.CreateSearchIndex(ctx, "idx:contract", "/index/albums/", "title", "artistName"),
			"an existing index is not an error")

		require.NoError(t, client.HashSet(ctx, "/index/albums/c6", map[string]string{"title": "Abbey Road Revisited"}))

		require.Eventually(t, func() bool {
			keys, err := client.SearchIndex(ctx, "idx:contract", "@title:(*revisit*)", 10)
			return err == nil && len(keys) == 1 && keys[0] == "/index/albums/c6"
		}, 5*time.Second, 100*time.Millisecond)

		_, err := client.SearchIndex(ctx, "idx:missing", "@title:(*abbey*)", 10)
		assert.Error(t, err)
	})
}
