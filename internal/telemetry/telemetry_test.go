package telemetry

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetenv removes key for the duration of the test
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ALBUMCACHE_OTEL_ENDPOINT", "")
	unsetenv(t, "ALBUMCACHE_OTEL_ENABLED")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.Endpoint)
	assert.True(t, cfg.Enabled)
}

func TestLoadConfig_InvalidEnabled(t *testing.T) {
	t.Setenv("ALBUMCACHE_OTEL_ENABLED", "sometimes")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv("ALBUMCACHE_OTEL_ENDPOINT", "")
	unsetenv(t, "ALBUMCACHE_OTEL_ENABLED")

	shutdown, err := Setup(context.Background(), "test-service")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_NoopWhenExplicitlyDisabled(t *testing.T) {
	t.Setenv("ALBUMCACHE_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("ALBUMCACHE_OTEL_ENABLED", "false")

	shutdown, err := Setup(context.Background(), "test-service")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	// non-routable address, nothing is exported before shutdown
	t.Setenv("ALBUMCACHE_OTEL_ENDPOINT", "http://192.0.2.1:4318")
	unsetenv(t, "ALBUMCACHE_OTEL_ENABLED")

	shutdown, err := Setup(context.Background(), "test-service")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
