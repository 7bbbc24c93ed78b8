package metadata

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// maxCoverArtFanOut bounds concurrent cover art lookups in one batch
const maxCoverArtFanOut = 8

// ResolveCoverArt returns the cover art reference for a release: the local
// artwork path when the image could be saved, else the provider URL. It
// reports false, never an error, when no artwork can be found.
func (c *Client) ResolveCoverArt(ctx context.Context, releaseID string) (string, bool) {
	id, err := c.validator.ValidateID(releaseID, "release ID")
	if err != nil {
		return "", false
	}

	if c.cache != nil {
		cached, found, err := c.cache.GetCachedCoverArt(ctx, id)
		if err != nil {
			c.logger.WarnContext(ctx, "cover art cache read failed", "release_id", id, "error", err)
		} else if found {
			return cached, true
		}
	}

	path := "/release/" + url.PathEscape(id)
	var images caaImageList
	found, err := c.get(ctx, "coverart", path, strings.TrimRight(c.config.CoverArtBaseURL, "/")+path, &images)
	if err != nil {
		c.logger.WarnContext(ctx, "cover art lookup failed", "release_id", id, "error", err)
		return "", false
	}
	if !found {
		return "", false
	}

	ref, ok := images.pick()
	if !ok {
		return "", false
	}

	if c.artwork != nil {
		local, saved, err := c.artwork.Save(ctx, id, ref)
		switch {
		case err != nil:
			c.logger.WarnContext(ctx, "failed to save artwork", "release_id", id, "error", err)
		case saved:
			ref = local
		}
	}

	if c.cache != nil {
		if err := c.cache.CacheCoverArt(ctx, id, ref); err != nil {
			c.logger.WarnContext(ctx, "failed to cache cover art", "release_id", id, "error", err)
		}
	}
	return ref, true
}

// ResolveCoverArtBatch resolves cover art for every id concurrently. The map
// holds an entry for each id; ids without artwork map to "".
func (c *Client) ResolveCoverArtBatch(ctx context.Context, releaseIDs []string) map[string]string {
	result := make(map[string]string, len(releaseIDs))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(maxCoverArtFanOut)
	for _, id := range releaseIDs {
		g.Go(func() error {
			ref, _ := c.ResolveCoverArt(ctx, id)
			mu.Lock()
			result[id] = ref
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return result
}
