// Package catalog is the read-through entry point the rest of the application
// uses. Queries check the search result cache, then the local album index,
// then the upstream provider. Record lookups check the entity cache by
// external id and fall through to the provider on a miss.
package catalog

import (
	"context"
	"log/slog"

	"github.com/kengibson1111/go-album-metadata-cache/cache"
	"github.com/kengibson1111/go-album-metadata-cache/internal"
	"github.com/kengibson1111/go-album-metadata-cache/internal/models"
)

// Upstream is the subset of the metadata client the service reads through to
type Upstream interface {
	SearchDetailed(ctx context.Context, query string, limit int) (*models.SearchResult, error)
	GetRelease(ctx context.Context, externalID string) (*models.Album, bool, error)
	GetArtist(ctx context.Context, externalID string) (*models.Artist, bool, error)
	GetArtistReleases(ctx context.Context, externalID string, limit int) ([]models.Album, error)
	GetReleaseGroup(ctx context.Context, externalID string) (*models.ReleaseGroup, bool, error)
	GetReleaseGroupReleases(ctx context.Context, groupID string, limit int) ([]models.Album, error)
}

// Service reads through the caches to the upstream provider. Store read
// failures count as misses; store write failures are logged and the upstream
// value is still returned.
type Service struct {
	entities  cache.EntityCache
	results   cache.SearchResultCache
	upstream  Upstream
	validator *internal.InputValidator
	logger    *slog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the service's logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService wires the caches to the upstream client
func NewService(entities cache.EntityCache, results cache.SearchResultCache, upstream Upstream, opts ...Option) *Service {
	s := &Service{
		entities:  entities,
		results:   results,
		upstream:  upstream,
		validator: internal.NewInputValidator(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search answers a query from the result cache, the local album index or the
// provider, in that order. An error is returned only when the provider's
// search itself fails; the result is never nil.
func (s *Service) Search(ctx context.Context, query string, limit int) (*models.SearchResult, error) {
	if err := s.validator.ValidateContext(ctx); err != nil {
		return emptyResult(), err
	}
	normalized := cache.NormalizeQuery(query)
	if normalized == "" {
		return emptyResult(), internal.NewValidationError("query cannot be empty", nil)
	}

	cached, found, err := s.results.GetCachedResults(ctx, normalized)
	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "search cache read failed", "query", normalized, "error", err)
	case found:
		return cached, nil
	}

	if local := s.entities.SearchAlbums(ctx, normalized, limit); len(local) > 0 {
		result := &models.SearchResult{Albums: local, Artists: []models.Artist{}, Total: len(local)}
		s.remember(ctx, normalized, result)
		return result, nil
	}

	result, err := s.upstream.SearchDetailed(ctx, query, limit)
	if err != nil {
		if result == nil {
			result = emptyResult()
		}
		return result, err
	}
	s.remember(ctx, normalized, result)
	return result, nil
}

func (s *Service) remember(ctx context.Context, query string, result *models.SearchResult) {
	if err := s.results.CacheResults(ctx, query, result); err != nil {
		s.logger.WarnContext(ctx, "failed to cache search results", "query", query, "error", err)
	}
}

// Album returns the release with the given provider id
func (s *Service) Album(ctx context.Context, externalID string) (*models.Album, bool, error) {
	return readThrough(ctx, s, "album", externalID,
		s.entities.GetCachedAlbumByExternalID,
		s.upstream.GetRelease,
		s.entities.CacheAlbum,
		s.entities.CacheAlbumByExternalID,
	)
}

// Artist returns the artist with the given provider id
func (s *Service) Artist(ctx context.Context, externalID string) (*models.Artist, bool, error) {
	return readThrough(ctx, s, "artist", externalID,
		s.entities.GetCachedArtistByExternalID,
		s.upstream.GetArtist,
		s.entities.CacheArtist,
		s.entities.CacheArtistByExternalID,
	)
}

// ReleaseGroup returns the release group with the given provider id
func (s *Service) ReleaseGroup(ctx context.Context, externalID string) (*models.ReleaseGroup, bool, error) {
	return readThrough(ctx, s, "release group", externalID,
		s.entities.GetCachedReleaseGroupByExternalID,
		s.upstream.GetReleaseGroup,
		s.entities.CacheReleaseGroup,
		s.entities.CacheReleaseGroupByExternalID,
	)
}

// ReleaseGroupReleases returns up to limit releases of a group
func (s *Service) ReleaseGroupReleases(ctx context.Context, groupID string, limit int) ([]models.Album, error) {
	return readThroughList(ctx, s, "release group releases", groupID, limit,
		s.entities.GetCachedReleaseGroupReleases,
		s.upstream.GetReleaseGroupReleases,
		s.entities.CacheReleaseGroupReleases,
	)
}

// ArtistAlbums returns up to limit releases of an artist
func (s *Service) ArtistAlbums(ctx context.Context, artistID string, limit int) ([]models.Album, error) {
	return readThroughList(ctx, s, "artist albums", artistID, limit,
		s.entities.GetCachedArtistAlbums,
		s.upstream.GetArtistReleases,
		s.entities.CacheArtistAlbums,
	)
}

// readThrough serves a record from the external-id cache entry, else fetches
// it and writes the internal-id entry followed by the external-id entry. The
// two writes are independent; a failure of either is only logged.
func readThrough[T any](
	ctx context.Context,
	s *Service,
	kind, externalID string,
	cached func(context.Context, string) (*T, bool, error),
	fetch func(context.Context, string) (*T, bool, error),
	store func(context.Context, *T) error,
	storeExternal func(context.Context, string, *T) error,
) (*T, bool, error) {
	if err := s.validator.ValidateContext(ctx); err != nil {
		return nil, false, err
	}

	value, found, err := cached(ctx, externalID)
	switch {
	case internal.IsValidationError(err):
		return nil, false, err
	case err != nil:
		s.logger.WarnContext(ctx, "cache read failed, treating as miss", "kind", kind, "id", externalID, "error", err)
	case found:
		return value, true, nil
	}

	value, found, err = fetch(ctx, externalID)
	if err != nil || !found {
		return nil, false, err
	}

	if err := store(ctx, value); err != nil {
		s.logger.WarnContext(ctx, "failed to cache record", "kind", kind, "id", externalID, "error", err)
	}
	if err := storeExternal(ctx, externalID, value); err != nil {
		s.logger.WarnContext(ctx, "failed to cache record by external id", "kind", kind, "id", externalID, "error", err)
	}
	return value, true, nil
}

// readThroughList is readThrough for the secondary collections. A miss always
// fetches internal.MaxLimit entries so the cached list can serve any later
// limit; callers get it trimmed to the limit they asked for.
func readThroughList(
	ctx context.Context,
	s *Service,
	kind, id string,
	limit int,
	cached func(context.Context, string) ([]models.Album, bool, error),
	fetch func(context.Context, string, int) ([]models.Album, error),
	store func(context.Context, string, []models.Album) error,
) ([]models.Album, error) {
	if err := s.validator.ValidateContext(ctx); err != nil {
		return nil, err
	}
	limit, err := s.validator.ValidateLimit(limit)
	if err != nil {
		return nil, err
	}

	list, found, err := cached(ctx, id)
	switch {
	case internal.IsValidationError(err):
		return nil, err
	case err != nil:
		s.logger.WarnContext(ctx, "cache read failed, treating as miss", "kind", kind, "id", id, "error", err)
	case found:
		return truncate(list, limit), nil
	}

	list, err = fetch(ctx, id, internal.MaxLimit)
	if err != nil {
		return nil, err
	}
	if err := store(ctx, id, list); err != nil {
		s.logger.WarnContext(ctx, "failed to cache list", "kind", kind, "id", id, "error", err)
	}
	return truncate(list, limit), nil
}

func truncate(list []models.Album, limit int) []models.Album {
	if len(list) > limit {
		return list[:limit]
	}
	return list
}

func emptyResult() *models.SearchResult {
	return &models.SearchResult{Albums: []models.Album{}, Artists: []models.Artist{}}
}
