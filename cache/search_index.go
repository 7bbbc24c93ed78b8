package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/kengibson1111/go-album-metadata-cache/internal"
	"github.com/kengibson1111/go-album-metadata-cache/internal/models"
)

// EnsureSearchIndex creates the album full-text index if it does not exist.
// It is a no-op when the index is disabled in configuration.
func (rc *RedisCache) EnsureSearchIndex(ctx context.Context) error {
	if !rc.config.SearchIndexEnabled {
		return nil
	}

	err := rc.client.CreateSearchIndex(ctx, rc.config.SearchIndexName, rc.keyGen.AlbumIndexPrefix(), indexFieldTitle, indexFieldArtist)
	if err != nil {
		return internal.ClassifyStoreError("", fmt.Sprintf("failed to create search index %s", rc.config.SearchIndexName), err)
	}
	return nil
}

// indexAlbum writes the hash document the full-text index covers
func (rc *RedisCache) indexAlbum(ctx context.Context, id string, album *models.Album) error {
	key := rc.keyGen.AlbumIndexKey(id)
	if err := rc.keyGen.ValidateKey(key); err != nil {
		return internal.NewKeyInvalidError(key, fmt.Sprintf("invalid key generated: %v", err))
	}

	data, err := json.Marshal(album)
	if err != nil {
		return internal.NewSerializationError(key, "failed to marshal album index document", err)
	}

	err = rc.client.HashSet(ctx, key, map[string]string{
		indexFieldTitle:  album.Title,
		indexFieldArtist: album.ArtistName,
		indexFieldData:   string(data),
	})
	if err != nil {
		return internal.ClassifyStoreError(key, "failed to write album index document", err)
	}

	if _, err := rc.client.Expire(ctx, key, rc.config.EntityTTL); err != nil {
		return internal.ClassifyStoreError(key, "failed to expire album index document", err)
	}
	return nil
}

// SearchAlbums runs a prefix/infix title query against the local index. Any
// failure, including a missing index, yields an empty result.
func (rc *RedisCache) SearchAlbums(ctx context.Context, query string, limit int) []models.Album {
	albums := []models.Album{}
	if !rc.config.SearchIndexEnabled {
		return albums
	}

	limit, err := rc.validator.ValidateLimit(limit)
	if err != nil {
		return albums
	}

	expr := titleQuery(query)
	if expr == "" {
		return albums
	}

	keys, err := rc.client.SearchIndex(ctx, rc.config.SearchIndexName, expr, limit)
	if err != nil {
		rc.logger.WarnContext(ctx, "local album search failed", "query", query, "error", err)
		return albums
	}

	for _, key := range keys {
		data, found, err := rc.client.HashGet(ctx, key, indexFieldData)
		if err != nil || !found {
			continue
		}
		var album models.Album
		if err := json.Unmarshal([]byte(data), &album); err != nil {
			rc.logger.WarnContext(ctx, "skipping corrupt album index document", "key", key, "error", err)
			continue
		}
		albums = append(albums, album)
	}
	return albums
}

// titleQuery builds an @title clause matching every token as a substring
func titleQuery(query string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, query)

	tokens := strings.Fields(cleaned)
	if len(tokens) == 0 {
		return ""
	}

	terms := make([]string, len(tokens))
	for i, tok := range tokens {
		terms[i] = "*" + strings.ToLower(tok) + "*"
	}
	return fmt.Sprintf("@%s:(%s)", indexFieldTitle, strings.Join(terms, " "))
}
