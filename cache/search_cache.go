package cache

import (
	"context"
	"strings"

	"golang.org/x/text/cases"

	"github.com/kengibson1111/go-album-metadata-cache/internal/models"
)

// NormalizeQuery trims surrounding whitespace and case-folds the query so
// "Abbey Road", "abbey road" and " ABBEY ROAD " share one cache entry.
// Inner whitespace is kept as typed.
func NormalizeQuery(query string) string {
	// Casers keep state and are not shared between goroutines
	return cases.Fold().String(strings.TrimSpace(query))
}

// CacheResults stores a whole search result under the normalized query
func (rc *RedisCache) CacheResults(ctx context.Context, query string, result *models.SearchResult) error {
	normalized, err := rc.validator.ValidateQuery(query)
	if err != nil {
		return err
	}
	if result == nil {
		result = &models.SearchResult{}
	}
	return rc.store(ctx, rc.keyGen.SearchKey(NormalizeQuery(normalized)), result, rc.config.SearchTTL, "search result")
}

// GetCachedResults returns the cached result for a query, if any
func (rc *RedisCache) GetCachedResults(ctx context.Context, query string) (*models.SearchResult, bool, error) {
	normalized, err := rc.validator.ValidateQuery(query)
	if err != nil {
		return nil, false, err
	}
	return fetch[models.SearchResult](ctx, rc, rc.keyGen.SearchKey(NormalizeQuery(normalized)), "search result")
}
