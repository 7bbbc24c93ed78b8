package metadata

import (
	"context"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/kengibson1111/go-album-metadata-cache/internal/models"
)

// Search resolves a query into albums and artists. It never fails: a failed
// group query yields an empty result.
func (c *Client) Search(ctx context.Context, query string, limit int) *models.SearchResult {
	result, err := c.SearchDetailed(ctx, query, limit)
	if err != nil {
		c.logger.WarnContext(ctx, "metadata search failed", "query", query, "error", err)
	}
	return result
}

// SearchDetailed is Search with the release-group query's failure reported.
// Failures resolving individual groups never surface; those groups degrade to
// an album built from the group itself. The returned result is never nil.
func (c *Client) SearchDetailed(ctx context.Context, query string, limit int) (*models.SearchResult, error) {
	empty := &models.SearchResult{Albums: []models.Album{}, Artists: []models.Artist{}}

	query, err := c.validator.ValidateQuery(query)
	if err != nil {
		return empty, err
	}
	limit, err = c.validator.ValidateLimit(limit)
	if err != nil {
		return empty, err
	}

	var found mbReleaseGroupSearch
	if _, err := c.getMetadata(ctx, "/release-group", "", url.Values{
		"query": {query},
		"limit": {strconv.Itoa(limit)},
	}, &found); err != nil {
		return empty, err
	}

	groups := make([]models.ReleaseGroup, 0, len(found.ReleaseGroups))
	for _, rg := range found.ReleaseGroups {
		group := rg.toModel()
		if group.ID == "" || !group.IsAlbumOrEP() {
			continue
		}
		groups = append(groups, group)
	}

	albums := make([]models.Album, len(groups))
	var g errgroup.Group
	// a zero limit would admit no goroutine at all
	g.SetLimit(max(1, c.config.RateLimitBurst))
	for i, group := range groups {
		g.Go(func() error {
			albums[i] = c.resolveGroup(ctx, group)
			return nil
		})
	}
	_ = g.Wait()

	artists := artistsOf(found.ReleaseGroups, groups)
	c.populate(ctx, albums, groups, artists)

	return &models.SearchResult{Albums: albums, Artists: artists, Total: len(albums)}, nil
}

// resolveGroup returns the group's earliest release with cover art attached,
// or an album synthesized from the group when no release can be resolved.
func (c *Client) resolveGroup(ctx context.Context, group models.ReleaseGroup) models.Album {
	releases, err := c.fetchReleases(ctx, "release-group", group.ID, releasesPerGroup)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to resolve release group", "release_group_id", group.ID, "error", err)
		return models.AlbumFromReleaseGroup(group)
	}

	release, ok := earliestRelease(releases)
	if !ok || release.ID == "" {
		return models.AlbumFromReleaseGroup(group)
	}

	album := release.toModel()
	album.ReleaseGroupID = group.ID
	if album.Title == "" {
		album.Title = group.Title
	}
	if album.ArtistName == "" {
		album.ArtistName = group.ArtistName
		album.ArtistID = group.ArtistID
	}
	if coverArt, ok := c.ResolveCoverArt(ctx, release.ID); ok {
		album.CoverArtURL = coverArt
	}

	if c.cache != nil {
		list := make([]models.Album, 0, len(releases))
		for _, r := range releases {
			list = append(list, r.toModel())
		}
		if err := c.cache.CacheReleaseGroupReleases(ctx, group.ID, list); err != nil {
			c.logger.WarnContext(ctx, "failed to cache release group releases", "release_group_id", group.ID, "error", err)
		}
	}
	return album
}

// artistsOf returns the first credited artist of each kept group, deduplicated
// in order of first appearance
func artistsOf(raw []mbReleaseGroup, kept []models.ReleaseGroup) []models.Artist {
	keep := make(map[string]bool, len(kept))
	for _, g := range kept {
		keep[g.ID] = true
	}

	seen := map[string]bool{}
	artists := []models.Artist{}
	for _, rg := range raw {
		if !keep[rg.ID] || len(rg.ArtistCredit) == 0 {
			continue
		}
		artist := rg.ArtistCredit[0].Artist
		if artist.ID == "" || artist.Name == "" || seen[artist.ID] {
			continue
		}
		seen[artist.ID] = true
		artists = append(artists, artist.toModel())
	}
	return artists
}

// populate writes every resolved record under both its internal and external
// id. Write failures are logged and do not affect the search result.
func (c *Client) populate(ctx context.Context, albums []models.Album, groups []models.ReleaseGroup, artists []models.Artist) {
	if c.cache == nil {
		return
	}

	for i := range albums {
		album := &albums[i]
		if err := c.cache.CacheAlbum(ctx, album); err != nil {
			c.logger.WarnContext(ctx, "failed to cache album", "album_id", album.ID, "error", err)
			continue
		}
		if err := c.cache.CacheAlbumByExternalID(ctx, album.ID, album); err != nil {
			c.logger.WarnContext(ctx, "failed to cache album by external id", "album_id", album.ID, "error", err)
		}
	}

	for i := range groups {
		group := &groups[i]
		if err := c.cache.CacheReleaseGroup(ctx, group); err != nil {
			c.logger.WarnContext(ctx, "failed to cache release group", "release_group_id", group.ID, "error", err)
			continue
		}
		if err := c.cache.CacheReleaseGroupByExternalID(ctx, group.ID, group); err != nil {
			c.logger.WarnContext(ctx, "failed to cache release group by external id", "release_group_id", group.ID, "error", err)
		}
	}

	for i := range artists {
		artist := &artists[i]
		if err := c.cache.CacheArtist(ctx, artist); err != nil {
			c.logger.WarnContext(ctx, "failed to cache artist", "artist_id", artist.ID, "error", err)
			continue
		}
		if err := c.cache.CacheArtistByExternalID(ctx, artist.ID, artist); err != nil {
			c.logger.WarnContext(ctx, "failed to cache artist by external id", "artist_id", artist.ID, "error", err)
		}
	}
}
