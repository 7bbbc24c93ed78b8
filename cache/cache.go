package cache

import (
	"context"

	"github.com/kengibson1111/go-album-metadata-cache/internal/models"
)

// CacheStats counts live keys per kind. It is a diagnostic snapshot taken by
// scanning the keyspace and is not used for correctness.
type CacheStats struct {
	Albums                    int64 `json:"albums"`
	AlbumsByExternalID        int64 `json:"albums_by_external_id"`
	Artists                   int64 `json:"artists"`
	ArtistsByExternalID       int64 `json:"artists_by_external_id"`
	ArtistAlbums              int64 `json:"artist_albums"`
	ReleaseGroups             int64 `json:"release_groups"`
	ReleaseGroupsByExternalID int64 `json:"release_groups_by_external_id"`
	ReleaseGroupReleases      int64 `json:"release_group_releases"`
	SearchResults             int64 `json:"search_results"`
	CoverArt                  int64 `json:"cover_art"`
	IndexedAlbums             int64 `json:"indexed_albums"`
	TotalKeys                 int64 `json:"total_keys"`
}

// EntityCache caches albums, artists and release groups under their internal
// id and, independently, under the provider's external id.
//
// Reads return found=false for absent or expired entries and only fail on
// store transport or decoding errors. Writes always report store failures.
type EntityCache interface {
	// Album operations
	CacheAlbum(ctx context.Context, album *models.Album) error
	GetCachedAlbum(ctx context.Context, id string) (*models.Album, bool, error)
	CacheAlbumByExternalID(ctx context.Context, externalID string, album *models.Album) error
	GetCachedAlbumByExternalID(ctx context.Context, externalID string) (*models.Album, bool, error)
	InvalidateAlbum(ctx context.Context, id string) (bool, error)

	// Artist operations
	CacheArtist(ctx context.Context, artist *models.Artist) error
	GetCachedArtist(ctx context.Context, id string) (*models.Artist, bool, error)
	CacheArtistByExternalID(ctx context.Context, externalID string, artist *models.Artist) error
	GetCachedArtistByExternalID(ctx context.Context, externalID string) (*models.Artist, bool, error)
	InvalidateArtist(ctx context.Context, id string) (bool, error)

	// Release group operations
	CacheReleaseGroup(ctx context.Context, group *models.ReleaseGroup) error
	GetCachedReleaseGroup(ctx context.Context, id string) (*models.ReleaseGroup, bool, error)
	CacheReleaseGroupByExternalID(ctx context.Context, externalID string, group *models.ReleaseGroup) error
	GetCachedReleaseGroupByExternalID(ctx context.Context, externalID string) (*models.ReleaseGroup, bool, error)
	InvalidateReleaseGroup(ctx context.Context, id string) (bool, error)

	// Secondary collections, overwritten whole on every write
	CacheArtistAlbums(ctx context.Context, artistID string, albums []models.Album) error
	GetCachedArtistAlbums(ctx context.Context, artistID string) ([]models.Album, bool, error)
	CacheReleaseGroupReleases(ctx context.Context, groupID string, releases []models.Album) error
	GetCachedReleaseGroupReleases(ctx context.Context, groupID string) ([]models.Album, bool, error)

	// Cover art URL cache
	CacheCoverArt(ctx context.Context, releaseID, url string) error
	GetCachedCoverArt(ctx context.Context, releaseID string) (string, bool, error)

	// Local full-text path; empty when no index is available
	SearchAlbums(ctx context.Context, query string, limit int) []models.Album

	// Management operations
	Stats(ctx context.Context) (*CacheStats, error)
}

// SearchResultCache caches whole query results under the normalized query text
type SearchResultCache interface {
	CacheResults(ctx context.Context, query string, result *models.SearchResult) error
	GetCachedResults(ctx context.Context, query string) (*models.SearchResult, bool, error)
}

// Cache is the full surface of the Redis-backed implementation
type Cache interface {
	EntityCache
	SearchResultCache

	EnsureSearchIndex(ctx context.Context) error
	Cleanup(ctx context.Context, pattern string) (int, error)
	Health(ctx context.Context) error
	Close() error
}
