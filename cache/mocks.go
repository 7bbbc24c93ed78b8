package cache

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/kengibson1111/go-album-metadata-cache/internal"
)

// MockRedisClient is a mock implementation of the RedisClientInterface for testing
type MockRedisClient struct {
	mock.Mock
}

var _ internal.RedisClientInterface = (*MockRedisClient)(nil)

// NewMockRedisClient creates a new mock Redis client
func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{}
}

// Health mocks the Health method
func (m *MockRedisClient) Health(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// HealthWithRetry mocks the HealthWithRetry method
func (m *MockRedisClient) HealthWithRetry(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Get mocks the Get method
func (m *MockRedisClient) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

// Set mocks the Set method
func (m *MockRedisClient) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// SetWithExpiry mocks the SetWithExpiry method
func (m *MockRedisClient) SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// Delete mocks the Delete method
func (m *MockRedisClient) Delete(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// ListKeys mocks the ListKeys method
func (m *MockRedisClient) ListKeys(ctx context.Context, pattern string) ([]string, error) {
	args := m.Called(ctx, pattern)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// HashGet mocks the HashGet method
func (m *MockRedisClient) HashGet(ctx context.Context, key, field string) (string, bool, error) {
	args := m.Called(ctx, key, field)
	return args.String(0), args.Bool(1), args.Error(2)
}

// HashSet mocks the HashSet method
func (m *MockRedisClient) HashSet(ctx context.Context, key string, fields map[string]string) error {
	args := m.Called(ctx, key, fields)
	return args.Error(0)
}

// HashGetAll mocks the HashGetAll method
func (m *MockRedisClient) HashGetAll(ctx context.Context, key string) (map[string]string, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

// Expire mocks the Expire method
func (m *MockRedisClient) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

// CreateSearchIndex mocks the CreateSearchIndex method
func (m *MockRedisClient) CreateSearchIndex(ctx context.Context, index, prefix string, fields ...string) error {
	args := m.Called(ctx, index, prefix, fields)
	return args.Error(0)
}

// SearchIndex mocks the SearchIndex method
func (m *MockRedisClient) SearchIndex(ctx context.Context, index, query string, limit int) ([]string, error) {
	args := m.Called(ctx, index, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// Config mocks the Config method
func (m *MockRedisClient) Config() *RedisConfig {
	args := m.Called()
	return args.Get(0).(*RedisConfig)
}

// Close mocks the Close method
func (m *MockRedisClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockKeyGenerator is a mock implementation of the KeyGenerator for testing
type MockKeyGenerator struct {
	mock.Mock
}

var _ internal.KeyGenerator = (*MockKeyGenerator)(nil)

// NewMockKeyGenerator creates a new mock key generator
func NewMockKeyGenerator() *MockKeyGenerator {
	return &MockKeyGenerator{}
}

func (m *MockKeyGenerator) AlbumKey(id string) string {
	return m.Called(id).String(0)
}

func (m *MockKeyGenerator) AlbumExternalKey(externalID string) string {
	return m.Called(externalID).String(0)
}

func (m *MockKeyGenerator) ArtistKey(id string) string {
	return m.Called(id).String(0)
}

func (m *MockKeyGenerator) ArtistExternalKey(externalID string) string {
	return m.Called(externalID).String(0)
}

func (m *MockKeyGenerator) ArtistAlbumsKey(artistID string) string {
	return m.Called(artistID).String(0)
}

func (m *MockKeyGenerator) ReleaseGroupKey(id string) string {
	return m.Called(id).String(0)
}

func (m *MockKeyGenerator) ReleaseGroupExternalKey(externalID string) string {
	return m.Called(externalID).String(0)
}

func (m *MockKeyGenerator) ReleaseGroupReleasesKey(groupID string) string {
	return m.Called(groupID).String(0)
}

func (m *MockKeyGenerator) SearchKey(normalizedQuery string) string {
	return m.Called(normalizedQuery).String(0)
}

func (m *MockKeyGenerator) CoverArtKey(releaseID string) string {
	return m.Called(releaseID).String(0)
}

func (m *MockKeyGenerator) AlbumIndexKey(id string) string {
	return m.Called(id).String(0)
}

func (m *MockKeyGenerator) AlbumIndexPrefix() string {
	return m.Called().String(0)
}

// ValidateKey mocks the ValidateKey method
func (m *MockKeyGenerator) ValidateKey(key string) error {
	args := m.Called(key)
	return args.Error(0)
}
