package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kengibson1111/go-album-metadata-cache/internal"
	"github.com/kengibson1111/go-album-metadata-cache/internal/models"
)

// Hash fields of an album index document
const (
	indexFieldTitle  = "title"
	indexFieldArtist = "artistName"
	indexFieldData   = "data"
)

// RedisCache implements the Cache interface using Redis as the backend
type RedisCache struct {
	client    internal.RedisClientInterface
	keyGen    internal.KeyGenerator
	config    *internal.Config
	validator *internal.InputValidator
	logger    *slog.Logger
}

var _ Cache = (*RedisCache)(nil)

// Option configures a RedisCache
type Option func(*RedisCache)

// WithLogger sets the structured logger used for fail-open diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(rc *RedisCache) {
		if logger != nil {
			rc.logger = logger
		}
	}
}

// NewRedisCache creates a new Redis-backed cache implementation
func NewRedisCache(config *RedisConfig, opts ...Option) (*RedisCache, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client, err := internal.NewRedisClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis client: %w", err)
	}

	return NewRedisCacheWithDependencies(client, internal.NewKeyGenerator(), config, opts...), nil
}

// NewRedisCacheWithDependencies creates a new Redis cache with injected dependencies for testing
func NewRedisCacheWithDependencies(client internal.RedisClientInterface, keyGen internal.KeyGenerator, config *RedisConfig, opts ...Option) *RedisCache {
	if config == nil {
		config = DefaultRedisConfig()
	}

	rc := &RedisCache{
		client:    client,
		keyGen:    keyGen,
		config:    config,
		validator: internal.NewInputValidator(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// CacheAlbum stores an album under its internal id and, when the search index
// is enabled, writes its index document.
func (rc *RedisCache) CacheAlbum(ctx context.Context, album *models.Album) error {
	if album == nil {
		return internal.NewValidationError("album cannot be nil", nil)
	}
	if err := rc.validator.ValidateEntityData(album, "album"); err != nil {
		return err
	}
	// keyed exactly as GetCachedAlbum looks it up
	id, err := rc.validator.ValidateID(album.ID, "album ID")
	if err != nil {
		return err
	}

	if err := rc.store(ctx, rc.keyGen.AlbumKey(id), album, rc.config.EntityTTL, "album"); err != nil {
		return err
	}

	if rc.config.SearchIndexEnabled {
		return rc.indexAlbum(ctx, id, album)
	}
	return nil
}

// GetCachedAlbum retrieves an album by internal id
func (rc *RedisCache) GetCachedAlbum(ctx context.Context, id string) (*models.Album, bool, error) {
	id, err := rc.validator.ValidateID(id, "album ID")
	if err != nil {
		return nil, false, err
	}
	return fetch[models.Album](ctx, rc, rc.keyGen.AlbumKey(id), "album")
}

// CacheAlbumByExternalID stores an album under the provider's id. The internal-id entry is not touched.
func (rc *RedisCache) CacheAlbumByExternalID(ctx context.Context, externalID string, album *models.Album) error {
	externalID, err := rc.validator.ValidateID(externalID, "album external ID")
	if err != nil {
		return err
	}
	if album == nil {
		return internal.NewValidationError("album cannot be nil", nil)
	}
	if err := rc.validator.ValidateEntityData(album, "album"); err != nil {
		return err
	}
	return rc.store(ctx, rc.keyGen.AlbumExternalKey(externalID), album, rc.config.EntityTTL, "album")
}

// GetCachedAlbumByExternalID retrieves an album by the provider's id
func (rc *RedisCache) GetCachedAlbumByExternalID(ctx context.Context, externalID string) (*models.Album, bool, error) {
	externalID, err := rc.validator.ValidateID(externalID, "album external ID")
	if err != nil {
		return nil, false, err
	}
	return fetch[models.Album](ctx, rc, rc.keyGen.AlbumExternalKey(externalID), "album")
}

// InvalidateAlbum deletes the internal-id entry only. The external-id entry,
// artist collections, index document and cached search results are left as they are.
func (rc *RedisCache) InvalidateAlbum(ctx context.Context, id string) (bool, error) {
	id, err := rc.validator.ValidateID(id, "album ID")
	if err != nil {
		return false, err
	}
	return rc.remove(ctx, rc.keyGen.AlbumKey(id), "album")
}

// CacheArtist stores an artist under its internal id
func (rc *RedisCache) CacheArtist(ctx context.Context, artist *models.Artist) error {
	if artist == nil {
		return internal.NewValidationError("artist cannot be nil", nil)
	}
	if err := rc.validator.ValidateEntityData(artist, "artist"); err != nil {
		return err
	}
	id, err := rc.validator.ValidateID(artist.ID, "artist ID")
	if err != nil {
		return err
	}
	return rc.store(ctx, rc.keyGen.ArtistKey(id), artist, rc.config.EntityTTL, "artist")
}

// GetCachedArtist retrieves an artist by internal id
func (rc *RedisCache) GetCachedArtist(ctx context.Context, id string) (*models.Artist, bool, error) {
	id, err := rc.validator.ValidateID(id, "artist ID")
	if err != nil {
		return nil, false, err
	}
	return fetch[models.Artist](ctx, rc, rc.keyGen.ArtistKey(id), "artist")
}

// CacheArtistByExternalID stores an artist under the provider's id
func (rc *RedisCache) CacheArtistByExternalID(ctx context.Context, externalID string, artist *models.Artist) error {
	externalID, err := rc.validator.ValidateID(externalID, "artist external ID")
	if err != nil {
		return err
	}
	if artist == nil {
		return internal.NewValidationError("artist cannot be nil", nil)
	}
	if err := rc.validator.ValidateEntityData(artist, "artist"); err != nil {
		return err
	}
	return rc.store(ctx, rc.keyGen.ArtistExternalKey(externalID), artist, rc.config.EntityTTL, "artist")
}

// GetCachedArtistByExternalID retrieves an artist by the provider's id
func (rc *RedisCache) GetCachedArtistByExternalID(ctx context.Context, externalID string) (*models.Artist, bool, error) {
	externalID, err := rc.validator.ValidateID(externalID, "artist external ID")
	if err != nil {
		return nil, false, err
	}
	return fetch[models.Artist](ctx, rc, rc.keyGen.ArtistExternalKey(externalID), "artist")
}

// InvalidateArtist deletes the internal-id entry only
func (rc *RedisCache) InvalidateArtist(ctx context.Context, id string) (bool, error) {
	id, err := rc.validator.ValidateID(id, "artist ID")
	if err != nil {
		return false, err
	}
	return rc.remove(ctx, rc.keyGen.ArtistKey(id), "artist")
}

// CacheReleaseGroup stores a release group under its internal id
func (rc *RedisCache) CacheReleaseGroup(ctx context.Context, group *models.ReleaseGroup) error {
	if group == nil {
		return internal.NewValidationError("release group cannot be nil", nil)
	}
	if err := rc.validator.ValidateEntityData(group, "release group"); err != nil {
		return err
	}
	id, err := rc.validator.ValidateID(group.ID, "release group ID")
	if err != nil {
		return err
	}
	return rc.store(ctx, rc.keyGen.ReleaseGroupKey(id), group, rc.config.EntityTTL, "release group")
}

// GetCachedReleaseGroup retrieves a release group by internal id
func (rc *RedisCache) GetCachedReleaseGroup(ctx context.Context, id string) (*models.ReleaseGroup, bool, error) {
	id, err := rc.validator.ValidateID(id, "release group ID")
	if err != nil {
		return nil, false, err
	}
	return fetch[models.ReleaseGroup](ctx, rc, rc.keyGen.ReleaseGroupKey(id), "release group")
}

// CacheReleaseGroupByExternalID stores a release group under the provider's id
func (rc *RedisCache) CacheReleaseGroupByExternalID(ctx context.Context, externalID string, group *models.ReleaseGroup) error {
	externalID, err := rc.validator.ValidateID(externalID, "release group external ID")
	if err != nil {
		return err
	}
	if group == nil {
		return internal.NewValidationError("release group cannot be nil", nil)
	}
	if err := rc.validator.ValidateEntityData(group, "release group"); err != nil {
		return err
	}
	return rc.store(ctx, rc.keyGen.ReleaseGroupExternalKey(externalID), group, rc.config.EntityTTL, "release group")
}

// GetCachedReleaseGroupByExternalID retrieves a release group by the provider's id
func (rc *RedisCache) GetCachedReleaseGroupByExternalID(ctx context.Context, externalID string) (*models.ReleaseGroup, bool, error) {
	externalID, err := rc.validator.ValidateID(externalID, "release group external ID")
	if err != nil {
		return nil, false, err
	}
	return fetch[models.ReleaseGroup](ctx, rc, rc.keyGen.ReleaseGroupExternalKey(externalID), "release group")
}

// InvalidateReleaseGroup deletes the internal-id entry only
func (rc *RedisCache) InvalidateReleaseGroup(ctx context.Context, id string) (bool, error) {
	id, err := rc.validator.ValidateID(id, "release group ID")
	if err != nil {
		return false, err
	}
	return rc.remove(ctx, rc.keyGen.ReleaseGroupKey(id), "release group")
}

// CacheArtistAlbums replaces the cached album list of an artist
func (rc *RedisCache) CacheArtistAlbums(ctx context.Context, artistID string, albums []models.Album) error {
	artistID, err := rc.validator.ValidateID(artistID, "artist ID")
	if err != nil {
		return err
	}
	if albums == nil {
		albums = []models.Album{}
	}
	return rc.store(ctx, rc.keyGen.ArtistAlbumsKey(artistID), albums, rc.config.EntityTTL, "artist albums")
}

// GetCachedArtistAlbums returns the cached album list of an artist in stored order
func (rc *RedisCache) GetCachedArtistAlbums(ctx context.Context, artistID string) ([]models.Album, bool, error) {
	artistID, err := rc.validator.ValidateID(artistID, "artist ID")
	if err != nil {
		return nil, false, err
	}
	albums, found, err := fetch[[]models.Album](ctx, rc, rc.keyGen.ArtistAlbumsKey(artistID), "artist albums")
	if err != nil || !found {
		return nil, found, err
	}
	return *albums, true, nil
}

// CacheReleaseGroupReleases replaces the cached release list of a group
func (rc *RedisCache) CacheReleaseGroupReleases(ctx context.Context, groupID string, releases []models.Album) error {
	groupID, err := rc.validator.ValidateID(groupID, "release group ID")
	if err != nil {
		return err
	}
	if releases == nil {
		releases = []models.Album{}
	}
	return rc.store(ctx, rc.keyGen.ReleaseGroupReleasesKey(groupID), releases, rc.config.EntityTTL, "release group releases")
}

// GetCachedReleaseGroupReleases returns the cached release list of a group in stored order
func (rc *RedisCache) GetCachedReleaseGroupReleases(ctx context.Context, groupID string) ([]models.Album, bool, error) {
	groupID, err := rc.validator.ValidateID(groupID, "release group ID")
	if err != nil {
		return nil, false, err
	}
	releases, found, err := fetch[[]models.Album](ctx, rc, rc.keyGen.ReleaseGroupReleasesKey(groupID), "release group releases")
	if err != nil || !found {
		return nil, found, err
	}
	return *releases, true, nil
}

// CacheCoverArt stores a resolved cover art URL or local path for a release
func (rc *RedisCache) CacheCoverArt(ctx context.Context, releaseID, url string) error {
	releaseID, err := rc.validator.ValidateID(releaseID, "release ID")
	if err != nil {
		return err
	}
	if strings.TrimSpace(url) == "" {
		return internal.NewValidationError("cover art URL cannot be empty", nil)
	}

	key := rc.keyGen.CoverArtKey(releaseID)
	if err := rc.keyGen.ValidateKey(key); err != nil {
		return internal.NewKeyInvalidError(key, fmt.Sprintf("invalid key generated: %v", err))
	}
	if err := rc.client.SetWithExpiry(ctx, key, url, rc.config.CoverArtTTL); err != nil {
		return internal.ClassifyStoreError(key, "failed to store cover art", err)
	}
	return nil
}

// GetCachedCoverArt returns the cached cover art reference for a release
func (rc *RedisCache) GetCachedCoverArt(ctx context.Context, releaseID string) (string, bool, error) {
	releaseID, err := rc.validator.ValidateID(releaseID, "release ID")
	if err != nil {
		return "", false, err
	}

	key := rc.keyGen.CoverArtKey(releaseID)
	if err := rc.keyGen.ValidateKey(key); err != nil {
		return "", false, internal.NewKeyInvalidError(key, fmt.Sprintf("invalid key generated: %v", err))
	}
	url, found, err := rc.client.Get(ctx, key)
	if err != nil {
		return "", false, internal.ClassifyStoreError(key, "failed to retrieve cover art", err)
	}
	return url, found, nil
}

// Cleanup removes cache entries matching a pattern inside a cache namespace
// and returns the number of keys deleted.
func (rc *RedisCache) Cleanup(ctx context.Context, pattern string) (int, error) {
	if err := rc.validator.ValidateCleanupPattern(pattern); err != nil {
		return 0, err
	}

	keys, err := rc.client.ListKeys(ctx, pattern)
	if err != nil {
		return 0, internal.ClassifyStoreError("", "failed to scan keys for cleanup", err)
	}

	deleted := 0
	for _, key := range keys {
		removed, err := rc.client.Delete(ctx, key)
		if err != nil {
			return deleted, internal.ClassifyStoreError(key, "failed to delete key during cleanup", err)
		}
		if removed {
			deleted++
		}
	}
	return deleted, nil
}

// Stats counts live keys per kind by pattern-scanning the store
func (rc *RedisCache) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{}
	counters := []struct {
		pattern string
		dst     *int64
	}{
		{internal.PatternForSegment(internal.NamespaceAlbums, internal.SegmentID), &stats.Albums},
		{internal.PatternForSegment(internal.NamespaceAlbums, internal.SegmentExternalID), &stats.AlbumsByExternalID},
		{internal.PatternForSegment(internal.NamespaceArtists, internal.SegmentID), &stats.Artists},
		{internal.PatternForSegment(internal.NamespaceArtists, internal.SegmentExternalID), &stats.ArtistsByExternalID},
		{internal.PatternForSegment(internal.NamespaceArtists, internal.SegmentArtistAlbum), &stats.ArtistAlbums},
		{internal.PatternForSegment(internal.NamespaceReleaseGroups, internal.SegmentID), &stats.ReleaseGroups},
		{internal.PatternForSegment(internal.NamespaceReleaseGroups, internal.SegmentExternalID), &stats.ReleaseGroupsByExternalID},
		{internal.PatternForSegment(internal.NamespaceReleaseGroups, internal.SegmentReleases), &stats.ReleaseGroupReleases},
		{internal.PatternForSegment(internal.NamespaceSearch, ""), &stats.SearchResults},
		{internal.PatternForSegment(internal.NamespaceCoverArt, ""), &stats.CoverArt},
		{internal.PatternForSegment(internal.NamespaceIndex, internal.NamespaceAlbums), &stats.IndexedAlbums},
	}

	for _, c := range counters {
		keys, err := rc.client.ListKeys(ctx, c.pattern)
		if err != nil {
			return nil, internal.ClassifyStoreError("", fmt.Sprintf("failed to scan %s", c.pattern), err)
		}
		*c.dst = int64(len(keys))
		stats.TotalKeys += int64(len(keys))
	}
	return stats, nil
}

// Health performs a health check on the cache
func (rc *RedisCache) Health(ctx context.Context) error {
	return rc.client.HealthWithRetry(ctx)
}

// Close closes the cache connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// store serializes value and writes it with the given TTL
func (rc *RedisCache) store(ctx context.Context, key string, value interface{}, ttl time.Duration, what string) error {
	if err := rc.keyGen.ValidateKey(key); err != nil {
		return internal.NewKeyInvalidError(key, fmt.Sprintf("invalid key generated: %v", err))
	}

	data, err := json.Marshal(value)
	if err != nil {
		return internal.NewSerializationError(key, "failed to marshal "+what, err)
	}

	if ttl <= 0 {
		ttl = rc.config.DefaultTTL
	}

	if err := rc.client.SetWithExpiry(ctx, key, string(data), ttl); err != nil {
		return internal.ClassifyStoreError(key, "failed to store "+what, err)
	}
	return nil
}

func (rc *RedisCache) remove(ctx context.Context, key, what string) (bool, error) {
	if err := rc.keyGen.ValidateKey(key); err != nil {
		return false, internal.NewKeyInvalidError(key, fmt.Sprintf("invalid key generated: %v", err))
	}
	removed, err := rc.client.Delete(ctx, key)
	if err != nil {
		return false, internal.ClassifyStoreError(key, "failed to delete "+what, err)
	}
	return removed, nil
}

// fetch reads and decodes a JSON record. A missing key is reported as found=false.
func fetch[T any](ctx context.Context, rc *RedisCache, key, what string) (*T, bool, error) {
	if err := rc.keyGen.ValidateKey(key); err != nil {
		return nil, false, internal.NewKeyInvalidError(key, fmt.Sprintf("invalid key generated: %v", err))
	}

	data, found, err := rc.client.Get(ctx, key)
	if err != nil {
		return nil, false, internal.ClassifyStoreError(key, "failed to retrieve "+what, err)
	}
	if !found {
		return nil, false, nil
	}

	var value T
	if err := json.Unmarshal([]byte(data), &value); err != nil {
		return nil, false, internal.NewSerializationError(key, "failed to unmarshal "+what, err)
	}
	return &value, true, nil
}
