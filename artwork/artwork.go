// Package artwork persists cover art images so callers can serve a local
// reference instead of hot-linking the cover art provider.
package artwork

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/h2non/filetype"
)

// Store saves remote artwork and reports where it can be served from
type Store interface {
	// Save downloads sourceURL and stores it under id. It returns the public
	// reference and true on success, and false without error when the source
	// has no image.
	Save(ctx context.Context, id, sourceURL string) (string, bool, error)
	Exists(ctx context.Context, id, ext string) bool
	PublicURL(id, ext string) string
}

// Extensions a stored image may carry, in lookup order
var Extensions = []string{"jpg", "png", "webp", "gif"}

// ErrNotImage is returned when downloaded bytes are not a supported image
var ErrNotImage = errors.New("artwork: content is not a supported image")

var validID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidateID rejects ids that cannot be used as object names
func ValidateID(id string) error {
	if len(id) > 128 || !validID.MatchString(id) {
		return fmt.Errorf("artwork: invalid id %q", id)
	}
	return nil
}

// DetectExtension sniffs the image type from its leading bytes
func DetectExtension(data []byte) (ext string, mimeType string, err error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return "", "", fmt.Errorf("artwork: detect type: %w", err)
	}
	if kind == filetype.Unknown || !filetype.IsImage(data) {
		return "", "", ErrNotImage
	}
	for _, ext := range Extensions {
		if kind.Extension == ext {
			return ext, kind.MIME.Value, nil
		}
	}
	return "", "", fmt.Errorf("%w: %s", ErrNotImage, kind.MIME.Value)
}

// downloader fetches image bytes with a size cap
type downloader struct {
	client   *http.Client
	maxBytes int64
	logger   *slog.Logger
}

func newDownloader(client *http.Client, timeout time.Duration, maxBytes int64, logger *slog.Logger) *downloader {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &downloader{client: client, maxBytes: maxBytes, logger: logger}
}

// fetch returns the body of sourceURL. found is false on 404.
func (d *downloader) fetch(ctx context.Context, sourceURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build artwork request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("artwork request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, false, fmt.Errorf("artwork request: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes+1))
	if err != nil {
		return nil, false, fmt.Errorf("read artwork body: %w", err)
	}
	if int64(len(data)) > d.maxBytes {
		return nil, false, fmt.Errorf("artwork exceeds %d bytes", d.maxBytes)
	}
	return data, true, nil
}

// backend is the storage half of a Store
type backend interface {
	Store
	put(ctx context.Context, name string, data []byte, mimeType string) error
}

// save is the shared Save flow: reuse an existing object, otherwise download,
// sniff and store.
func save(ctx context.Context, b backend, d *downloader, id, sourceURL string) (string, bool, error) {
	if err := ValidateID(id); err != nil {
		return "", false, err
	}
	if sourceURL == "" {
		return "", false, nil
	}

	for _, ext := range Extensions {
		if b.Exists(ctx, id, ext) {
			return b.PublicURL(id, ext), true, nil
		}
	}

	data, found, err := d.fetch(ctx, sourceURL)
	if err != nil || !found {
		return "", false, err
	}

	ext, mimeType, err := DetectExtension(data)
	if err != nil {
		return "", false, err
	}

	if err := b.put(ctx, objectName(id, ext), data, mimeType); err != nil {
		return "", false, fmt.Errorf("store artwork %s: %w", id, err)
	}

	d.logger.DebugContext(ctx, "artwork saved", "id", id, "ext", ext, "bytes", len(data))
	return b.PublicURL(id, ext), true, nil
}

func objectName(id, ext string) string {
	return id + "." + ext
}
