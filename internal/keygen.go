package internal

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Key namespaces
const (
	NamespaceAlbums        = "albums"
	NamespaceArtists       = "artists"
	NamespaceReleaseGroups = "release-groups"
	NamespaceSearch        = "search"
	NamespaceCoverArt      = "coverart"
	NamespaceIndex         = "index"
)

// Lookup segments inside an entity namespace
const (
	SegmentID          = "id"
	SegmentExternalID  = "mbid"
	SegmentArtistAlbum = "albums"
	SegmentReleases    = "releases"
)

const (
	maxKeyLength = 250
	// segments longer than this are stored under a hash of the raw text
	maxSearchSegmentLength = 160
	maxEntitySegmentLength = 160
)

// '~' is left unescaped by url.QueryEscape
var invalidKeyChars = regexp.MustCompile(`[^\w\-_/.%~]`)

// KeyGenerator defines the interface for generating and validating cache keys
type KeyGenerator interface {
	AlbumKey(id string) string
	AlbumExternalKey(externalID string) string
	ArtistKey(id string) string
	ArtistExternalKey(externalID string) string
	ArtistAlbumsKey(artistID string) string
	ReleaseGroupKey(id string) string
	ReleaseGroupExternalKey(externalID string) string
	ReleaseGroupReleasesKey(groupID string) string
	SearchKey(normalizedQuery string) string
	CoverArtKey(releaseID string) string
	AlbumIndexKey(id string) string
	AlbumIndexPrefix() string
	ValidateKey(key string) error
}

// DefaultKeyGenerator implements the KeyGenerator interface
type DefaultKeyGenerator struct{}

// NewKeyGenerator creates a new DefaultKeyGenerator instance
func NewKeyGenerator() KeyGenerator {
	return &DefaultKeyGenerator{}
}

// AlbumKey format: /albums/id/<id>
func (kg *DefaultKeyGenerator) AlbumKey(id string) string {
	return kg.entityKey(NamespaceAlbums, SegmentID, id)
}

// AlbumExternalKey format: /albums/mbid/<external_id>
func (kg *DefaultKeyGenerator) AlbumExternalKey(externalID string) string {
	return kg.entityKey(NamespaceAlbums, SegmentExternalID, externalID)
}

// ArtistKey format: /artists/id/<id>
func (kg *DefaultKeyGenerator) ArtistKey(id string) string {
	return kg.entityKey(NamespaceArtists, SegmentID, id)
}

// ArtistExternalKey format: /artists/mbid/<external_id>
func (kg *DefaultKeyGenerator) ArtistExternalKey(externalID string) string {
	return kg.entityKey(NamespaceArtists, SegmentExternalID, externalID)
}

// ArtistAlbumsKey format: /artists/albums/<artist_id>
func (kg *DefaultKeyGenerator) ArtistAlbumsKey(artistID string) string {
	return kg.entityKey(NamespaceArtists, SegmentArtistAlbum, artistID)
}

// ReleaseGroupKey format: /release-groups/id/<id>
func (kg *DefaultKeyGenerator) ReleaseGroupKey(id string) string {
	return kg.entityKey(NamespaceReleaseGroups, SegmentID, id)
}

// ReleaseGroupExternalKey format: /release-groups/mbid/<external_id>
func (kg *DefaultKeyGenerator) ReleaseGroupExternalKey(externalID string) string {
	return kg.entityKey(NamespaceReleaseGroups, SegmentExternalID, externalID)
}

// ReleaseGroupReleasesKey format: /release-groups/releases/<group_id>
func (kg *DefaultKeyGenerator) ReleaseGroupReleasesKey(groupID string) string {
	return kg.entityKey(NamespaceReleaseGroups, SegmentReleases, groupID)
}

// SearchKey format: /search/<normalized_query>. Long queries are replaced by
// "h-" plus the hex xxhash of the normalized text so keys stay bounded.
func (kg *DefaultKeyGenerator) SearchKey(normalizedQuery string) string {
	// plain escaping keeps distinct queries on distinct keys ("a b" vs "a_b")
	segment := strings.ReplaceAll(url.QueryEscape(normalizedQuery), "+", "%20")
	if len(segment) > maxSearchSegmentLength {
		segment = hashSegment(normalizedQuery)
	}
	return fmt.Sprintf("/%s/%s", NamespaceSearch, segment)
}

// CoverArtKey format: /coverart/<release_id>
func (kg *DefaultKeyGenerator) CoverArtKey(releaseID string) string {
	return fmt.Sprintf("/%s/%s", NamespaceCoverArt, kg.sanitizeName(releaseID))
}

// AlbumIndexKey format: /index/albums/<id>
func (kg *DefaultKeyGenerator) AlbumIndexKey(id string) string {
	return kg.entityKey(NamespaceIndex, NamespaceAlbums, id)
}

// AlbumIndexPrefix is the key prefix covered by the album full-text index
func (kg *DefaultKeyGenerator) AlbumIndexPrefix() string {
	return fmt.Sprintf("/%s/%s/", NamespaceIndex, NamespaceAlbums)
}

func (kg *DefaultKeyGenerator) entityKey(namespace, segment, id string) string {
	return fmt.Sprintf("/%s/%s/%s", namespace, segment, kg.sanitizeName(id))
}

// ValidateKey validates that a cache key follows the expected format and constraints
func (kg *DefaultKeyGenerator) ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	if !strings.HasPrefix(key, "/") {
		return fmt.Errorf("key must start with '/'")
	}

	for i, r := range key {
		if r < 32 || r == 127 {
			return fmt.Errorf("key contains control character at position %d: %s", i, key)
		}
	}

	// Encoded traversal (%2E%2E) is allowed since it is inert in a key
	if strings.Contains(key, "../") || strings.Contains(key, "..\\") || strings.HasSuffix(key, "/..") {
		return fmt.Errorf("key contains path traversal sequence: %s", key)
	}

	if invalidKeyChars.MatchString(key) {
		return fmt.Errorf("key contains invalid characters: %s", key)
	}

	if strings.Contains(key, "//") {
		return fmt.Errorf("key contains double slashes: %s", key)
	}

	if len(key) > maxKeyLength {
		return fmt.Errorf("key exceeds maximum length of %d characters", maxKeyLength)
	}

	parts := strings.Split(key, "/")
	switch parts[1] {
	case NamespaceAlbums, NamespaceArtists, NamespaceReleaseGroups, NamespaceIndex:
		return kg.validateEntityKey(parts, key)
	case NamespaceSearch, NamespaceCoverArt:
		if len(parts) != 3 || parts[2] == "" {
			return fmt.Errorf("invalid %s key format: %s", parts[1], key)
		}
		return nil
	default:
		return fmt.Errorf("key does not match any expected pattern: %s", key)
	}
}

// validateEntityKey validates /<namespace>/<segment>/<id> keys
func (kg *DefaultKeyGenerator) validateEntityKey(parts []string, key string) error {
	if len(parts) != 4 {
		return fmt.Errorf("invalid entity key format: %s", key)
	}

	valid := map[string][]string{
		NamespaceAlbums:        {SegmentID, SegmentExternalID},
		NamespaceArtists:       {SegmentID, SegmentExternalID, SegmentArtistAlbum},
		NamespaceReleaseGroups: {SegmentID, SegmentExternalID, SegmentReleases},
		NamespaceIndex:         {NamespaceAlbums},
	}
	ok := false
	for _, segment := range valid[parts[1]] {
		if parts[2] == segment {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("unknown segment %q in key: %s", parts[2], key)
	}

	if parts[3] == "" {
		return fmt.Errorf("ID cannot be empty in key: %s", key)
	}

	return nil
}

// sanitizeName sanitizes a name for use in cache keys by URL encoding special characters
func (kg *DefaultKeyGenerator) sanitizeName(name string) string {
	if name == "" {
		return ""
	}

	encoded := url.QueryEscape(name)

	encoded = strings.ReplaceAll(encoded, "+", "_")   // spaces (encoded as +) become underscores
	encoded = strings.ReplaceAll(encoded, "%20", "_") // spaces (encoded as %20) become underscores
	encoded = strings.ReplaceAll(encoded, "%2F", "-") // forward slashes become dashes
	encoded = strings.ReplaceAll(encoded, "%5C", "-") // backslashes become dashes

	// escaping can triple a multibyte id
	if len(encoded) > maxEntitySegmentLength {
		return hashSegment(name)
	}
	return encoded
}

func hashSegment(s string) string {
	return "h-" + strconv.FormatUint(xxhash.Sum64String(s), 16)
}

// PatternForSegment returns the SCAN pattern matching every key of a namespace segment
func PatternForSegment(namespace, segment string) string {
	if segment == "" {
		return fmt.Sprintf("/%s/*", namespace)
	}
	return fmt.Sprintf("/%s/%s/*", namespace, segment)
}
