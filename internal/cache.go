package internal

import (
	"context"
	"time"
)

// KeyValueStore is the minimal store contract every cache component is built on.
//
// Reads report absence through the found flag and only return an error for
// transport failures. Writes of several keys for one logical record are
// independent; there is no multi-key atomicity.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) (wasPresent bool, err error)
	ListKeys(ctx context.Context, pattern string) ([]string, error)
	HashGet(ctx context.Context, key, field string) (value string, found bool, err error)
	HashSet(ctx context.Context, key string, fields map[string]string) error
	HashGetAll(ctx context.Context, key string) (map[string]string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// SearchIndexer is implemented by stores that support a full-text index over hashes
type SearchIndexer interface {
	CreateSearchIndex(ctx context.Context, index, prefix string, fields ...string) error
	SearchIndex(ctx context.Context, index, query string, limit int) ([]string, error)
}
