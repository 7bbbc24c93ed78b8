package internal

import (
	"strings"
	"testing"
)

func TestNewKeyGenerator(t *testing.T) {
	kg := NewKeyGenerator()
	if kg == nil {
		t.Fatal("NewKeyGenerator() returned nil")
	}

	// Verify it implements the interface
	var _ KeyGenerator = kg
}

func TestEntityKeys(t *testing.T) {
	kg := NewKeyGenerator()

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"album", kg.AlbumKey("a1"), "/albums/id/a1"},
		{"album external", kg.AlbumExternalKey("b10bbbfc-cf9e-42e0-be17-e2c3e1d2600d"), "/albums/mbid/b10bbbfc-cf9e-42e0-be17-e2c3e1d2600d"},
		{"artist", kg.ArtistKey("ar1"), "/artists/id/ar1"},
		{"artist external", kg.ArtistExternalKey("mb-ar1"), "/artists/mbid/mb-ar1"},
		{"artist albums", kg.ArtistAlbumsKey("ar1"), "/artists/albums/ar1"},
		{"release group", kg.ReleaseGroupKey("rg1"), "/release-groups/id/rg1"},
		{"release group external", kg.ReleaseGroupExternalKey("mb-rg1"), "/release-groups/mbid/mb-rg1"},
		{"release group releases", kg.ReleaseGroupReleasesKey("rg1"), "/release-groups/releases/rg1"},
		{"cover art", kg.CoverArtKey("r1"), "/coverart/r1"},
		{"album index", kg.AlbumIndexKey("a1"), "/index/albums/a1"},
		{"id with spaces", kg.AlbumKey("my album"), "/albums/id/my_album"},
		{"id with slashes", kg.AlbumKey("path/to\\album"), "/albums/id/path-to-album"},
		{"id with colon", kg.ArtistKey("artist:1"), "/artists/id/artist%3A1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %q, want %q", tt.got, tt.expected)
			}
			if err := kg.ValidateKey(tt.got); err != nil {
				t.Errorf("generated key %q failed validation: %v", tt.got, err)
			}
		})
	}

	if prefix := kg.AlbumIndexPrefix(); prefix != "/index/albums/" {
		t.Errorf("AlbumIndexPrefix() = %q, want %q", prefix, "/index/albums/")
	}
}

func TestSearchKey(t *testing.T) {
	kg := NewKeyGenerator()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"single word", "abbey", "/search/abbey"},
		{"space is escaped, not replaced", "abbey road", "/search/abbey%20road"},
		{"underscore kept", "abbey_road", "/search/abbey_road"},
		{"slash escaped", "ac/dc", "/search/ac%2Fdc"},
		{"unicode", "björk", "/search/bj%C3%B6rk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kg.SearchKey(tt.input)
			if got != tt.expected {
				t.Errorf("SearchKey(%q) = %q, want %q", tt.input, got, tt.expected)
			}
			if err := kg.ValidateKey(got); err != nil {
				t.Errorf("SearchKey(%q) produced invalid key: %v", tt.input, err)
			}
		})
	}

	if kg.SearchKey("a b") == kg.SearchKey("a_b") {
		t.Error("distinct queries must map to distinct keys")
	}
}

func TestSearchKey_LongQueriesAreHashed(t *testing.T) {
	kg := NewKeyGenerator()

	long := strings.Repeat("abbey road ", 30)
	key := kg.SearchKey(long)

	if !strings.HasPrefix(key, "/search/h-") {
		t.Fatalf("expected hashed key, got %q", key)
	}
	if key != kg.SearchKey(long) {
		t.Error("hashing must be deterministic")
	}
	if key == kg.SearchKey(long+"x") {
		t.Error("different long queries must hash differently")
	}
	if err := kg.ValidateKey(key); err != nil {
		t.Errorf("hashed key failed validation: %v", err)
	}
}

func TestKeys_TildeAndMultibyteIDsValidate(t *testing.T) {
	kg := NewKeyGenerator()

	keys := []string{
		kg.SearchKey("blink~182"),
		kg.AlbumKey("rel~1"),
		kg.CoverArtKey("rel~1"),
		kg.ReleaseGroupReleasesKey(strings.Repeat("é", MaxIDLength/2)),
		kg.ArtistExternalKey(strings.Repeat("日", MaxIDLength/3)),
	}
	for _, key := range keys {
		if err := kg.ValidateKey(key); err != nil {
			t.Errorf("generated key %q failed validation: %v", key, err)
		}
	}

	if got := kg.SearchKey("blink~182"); got != "/search/blink~182" {
		t.Errorf("SearchKey kept %q", got)
	}

	wide := strings.Repeat("é", MaxIDLength/2)
	key := kg.AlbumKey(wide)
	if !strings.HasPrefix(key, "/albums/id/h-") {
		t.Errorf("expected an escaped multibyte id to be hashed, got %q", key)
	}
	if key == kg.AlbumKey(wide[:len(wide)-2]) {
		t.Error("different long ids must hash differently")
	}
}

func TestValidateKey(t *testing.T) {
	kg := NewKeyGenerator()

	validKeys := []string{
		"/albums/id/a1",
		"/albums/mbid/b10bbbfc-cf9e-42e0-be17-e2c3e1d2600d",
		"/artists/albums/ar1",
		"/release-groups/releases/rg1",
		"/search/abbey%20road",
		"/coverart/r1",
		"/index/albums/a1",
		"/albums/id/a.1",
		"/albums/id/%2E%2E",
	}

	for _, key := range validKeys {
		t.Run("valid_"+key, func(t *testing.T) {
			if err := kg.ValidateKey(key); err != nil {
				t.Errorf("ValidateKey(%q) returned error: %v", key, err)
			}
		})
	}

	invalidKeys := []struct {
		key           string
		expectedError string
	}{
		{"", "key cannot be empty"},
		{"no-leading-slash", "key must start with '/'"},
		{"/albums/id/name with spaces", "key contains invalid characters"},
		{"/albums//id/a1", "key contains double slashes"},
		{"/albums/id/" + strings.Repeat("a", 250), "key exceeds maximum length"},
		{"/sessions/id/a1", "key does not match any expected pattern"},
		{"/albums/id/", "ID cannot be empty"},
		{"/albums/releases/a1", "unknown segment"},
		{"/index/artists/a1", "unknown segment"},
		{"/albums/id/a1/extra", "invalid entity key format"},
		{"/search/", "invalid search key format"},
		{"/coverart/a/b", "invalid coverart key format"},
		{"/albums/id/../secret", "path traversal"},
		{"/albums/id/a\x00", "control character"},
	}

	for _, tt := range invalidKeys {
		t.Run("invalid_"+tt.key, func(t *testing.T) {
			err := kg.ValidateKey(tt.key)
			if err == nil {
				t.Errorf("ValidateKey(%q) expected error but got nil", tt.key)
			} else if !strings.Contains(err.Error(), tt.expectedError) {
				t.Errorf("ValidateKey(%q) error = %q, want error containing %q", tt.key, err.Error(), tt.expectedError)
			}
		})
	}
}

func TestSanitizeName(t *testing.T) {
	kg := &DefaultKeyGenerator{}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "simple", "simple"},
		{"name with spaces", "my album", "my_album"},
		{"name with forward slash", "path/to/album", "path-to-album"},
		{"name with backslash", "path\\to\\album", "path-to-album"},
		{"name with mixed special chars", "album/with\\spaces and:colons", "album-with-spaces_and%3Acolons"},
		{"empty name", "", ""},
		{"name with dots and dashes", "album.v1.0-beta", "album.v1.0-beta"},
		{"name with underscores", "my_album_name", "my_album_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := kg.sanitizeName(tt.input)
			if result != tt.expected {
				t.Errorf("sanitizeName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestPatternForSegment(t *testing.T) {
	if got := PatternForSegment(NamespaceAlbums, SegmentID); got != "/albums/id/*" {
		t.Errorf("got %q", got)
	}
	if got := PatternForSegment(NamespaceSearch, ""); got != "/search/*" {
		t.Errorf("got %q", got)
	}
}

func TestKeyGeneratorConsistency(t *testing.T) {
	kg := NewKeyGenerator()

	for i := 0; i < 10; i++ {
		if kg.AlbumKey("a1") != "/albums/id/a1" {
			t.Fatal("key generation must be deterministic")
		}
	}

	if kg.AlbumKey("a1") == kg.AlbumExternalKey("a1") {
		t.Error("internal and external keys of the same id must differ")
	}
}
