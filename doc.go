// Package albumcache provides a Redis-backed read-through cache for music
// metadata: albums, artists and release groups fetched from a rate-limited
// upstream provider, plus whole search results and resolved cover art.
//
// This module implements a caching layer that supports:
//   - Album, artist and release group records addressed by internal id and,
//     independently, by the provider's external id
//   - Ordered secondary collections (artist albums, release group releases)
//   - Query result caching under case-folded query text
//   - An optional RediSearch full-text index over cached albums
//   - An upstream client with a shared sliding-window rate limiter
//   - Cover art resolution with local artwork persistence
//
// # Architecture
//
// The cache uses a hierarchical key structure in Redis:
//   - Albums: /albums/id/<id> and /albums/mbid/<external id>
//   - Artists: /artists/id/<id>, /artists/mbid/<external id>, /artists/albums/<artist id>
//   - Release groups: /release-groups/id/<id>, /release-groups/mbid/<external id>,
//     /release-groups/releases/<group id>
//   - Search results: /search/<escaped normalized query>
//   - Cover art: /coverart/<release id>
//   - Index documents: /index/albums/<id>
//
// Entity records live for 24 hours, search results for 1 hour and cover art
// references for 7 days by default.
//
// # Basic Usage
//
// Create a cache, an upstream client and the read-through service:
//
//	config, err := cache.LoadRedisConfig()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	redisCache, err := cache.NewRedisCache(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer redisCache.Close()
//
//	client, err := metadata.NewClient(config, metadata.WithCache(redisCache))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	svc := catalog.NewService(redisCache, redisCache, client)
//
//	result, err := svc.Search(ctx, "abbey road", 10)
//	album, found, err := svc.Album(ctx, "b10bbbfc-cf9e-42e0-be17-e2c3e1d2600d")
//
// # Error Handling
//
// Lookups return (value, found, err). A missing or expired record is
// found=false with a nil error; err is reserved for store and provider
// failures so callers can tell "no such record" from "unavailable":
//
//	album, found, err := redisCache.GetCachedAlbum(ctx, "r1")
//	switch {
//	case err != nil && cache.IsConnectionError(err):
//	    // Redis is unreachable
//	case err != nil:
//	    // decoding or validation failure
//	case !found:
//	    // cache miss
//	}
//
// Writes always report store failures. The composite search and batch cover
// art operations never fail because of a single sub-request.
//
// # Invalidation
//
// InvalidateAlbum, InvalidateArtist and InvalidateReleaseGroup delete the
// internal-id entry only. External-id entries, collections and cached search
// results expire on their own.
//
// # Rate Limiting
//
// Every metadata request waits on one shared RateLimiter: at most
// RateLimitBurst requests inside any RateLimitWindow, spaced at least
// RateLimitMinSpacing apart. Clients built with metadata.WithRateLimiter share
// one limiter.
//
// # Configuration
//
// Settings are read from ALBUMCACHE_* environment variables on top of the
// defaults, e.g. ALBUMCACHE_REDIS_ADDR, ALBUMCACHE_SEARCH_TTL,
// ALBUMCACHE_USER_AGENT and ALBUMCACHE_RETRY_MAX_ATTEMPTS. Artwork storage
// reads ALBUMCACHE_ARTWORK_* and tracing reads ALBUMCACHE_OTEL_ENDPOINT.
//
// # Examples
//
// See the examples directory for complete programs:
//   - examples/album_cache_example/ - Caching and reading records
//   - examples/search_example/ - Read-through search against the provider
//   - examples/cleanup_example/ - Stats and pattern cleanup
//   - examples/error_handling_example/ - Error classification
//
// # Testing
//
// Run tests with:
//
//	go test ./...                          # Unit tests (no Redis required)
//	go test ./test/integration -v          # Integration tests (requires Redis)
package albumcache
