// Package metadata talks to the music metadata provider and the cover art
// provider. It maps provider records into cache models, throttles outbound
// calls through one shared rate limiter and writes resolved records into an
// EntityCache as a side effect of searching.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kengibson1111/go-album-metadata-cache/artwork"
	"github.com/kengibson1111/go-album-metadata-cache/cache"
	"github.com/kengibson1111/go-album-metadata-cache/internal"
	"github.com/kengibson1111/go-album-metadata-cache/internal/models"
)

const tracerName = "github.com/kengibson1111/go-album-metadata-cache/metadata"

// releasesPerGroup bounds the releases fetched when resolving a release group
const releasesPerGroup = 25

// Client is the upstream metadata client
type Client struct {
	config    *internal.Config
	http      *http.Client
	limiter   *RateLimiter
	cache     cache.EntityCache
	artwork   artwork.Store
	validator *internal.InputValidator
	logger    *slog.Logger
	tracer    trace.Tracer
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// RateLimiter spaces and bounds outbound provider calls. One limiter is meant
// to be shared by every client of a process.
type RateLimiter = internal.RateLimiter

// NewRateLimiter creates a limiter admitting at most burst calls in any
// window-long interval, at least minSpacing apart.
func NewRateLimiter(burst int, window, minSpacing time.Duration) *RateLimiter {
	return internal.NewRateLimiter(burst, window, minSpacing, nil)
}

// WithRateLimiter shares a limiter between clients. Every client talking to
// the same provider from one process should use the same limiter.
func WithRateLimiter(limiter *RateLimiter) Option {
	return func(c *Client) {
		if limiter != nil {
			c.limiter = limiter
		}
	}
}

// WithCache makes search and cover art resolution write through to ec
func WithCache(ec cache.EntityCache) Option {
	return func(c *Client) { c.cache = ec }
}

// WithArtworkStore saves resolved cover art locally
func WithArtworkStore(store artwork.Store) Option {
	return func(c *Client) { c.artwork = store }
}

// WithLogger sets the client's logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracerProvider sets the provider spans are recorded with
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewClient creates a client. A nil config falls back to the defaults.
func NewClient(config *internal.Config, opts ...Option) (*Client, error) {
	if config == nil {
		config = internal.DefaultConfig()
	}
	if strings.TrimSpace(config.UserAgent) == "" {
		return nil, internal.NewValidationError("user agent cannot be empty", nil)
	}
	if config.MetadataBaseURL == "" || config.CoverArtBaseURL == "" {
		return nil, internal.NewValidationError("provider base URLs cannot be empty", nil)
	}
	if err := internal.ValidateConfig(config); err != nil {
		return nil, internal.NewValidationError("invalid configuration", err)
	}

	c := &Client{
		config:    config,
		http:      &http.Client{Timeout: config.HTTPTimeout},
		validator: internal.NewInputValidator(),
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.limiter == nil {
		c.limiter = internal.NewRateLimiter(config.RateLimitBurst, config.RateLimitWindow, config.RateLimitMinSpacing, nil)
	}
	return c, nil
}

// GetRelease looks up a release by provider id
func (c *Client) GetRelease(ctx context.Context, externalID string) (*models.Album, bool, error) {
	id, err := c.validator.ValidateID(externalID, "release ID")
	if err != nil {
		return nil, false, err
	}

	var release mbRelease
	found, err := c.getMetadata(ctx, "/release/"+url.PathEscape(id), "recordings+artist-credits+release-groups", nil, &release)
	if err != nil || !found {
		return nil, false, err
	}
	if release.ID == "" {
		return nil, false, internal.NewMalformedResponseError("/release/"+id, "release without id", nil)
	}

	album := release.toModel()
	return &album, true, nil
}

// GetArtist looks up an artist by provider id
func (c *Client) GetArtist(ctx context.Context, externalID string) (*models.Artist, bool, error) {
	id, err := c.validator.ValidateID(externalID, "artist ID")
	if err != nil {
		return nil, false, err
	}

	var artist mbArtist
	found, err := c.getMetadata(ctx, "/artist/"+url.PathEscape(id), "", nil, &artist)
	if err != nil || !found {
		return nil, false, err
	}
	if artist.ID == "" {
		return nil, false, internal.NewMalformedResponseError("/artist/"+id, "artist without id", nil)
	}

	result := artist.toModel()
	return &result, true, nil
}

// GetArtistReleases lists an artist's releases in provider order
func (c *Client) GetArtistReleases(ctx context.Context, externalID string, limit int) ([]models.Album, error) {
	id, err := c.validator.ValidateID(externalID, "artist ID")
	if err != nil {
		return nil, err
	}
	return c.browseReleases(ctx, "artist", id, limit)
}

// GetReleaseGroup looks up a release group by provider id
func (c *Client) GetReleaseGroup(ctx context.Context, externalID string) (*models.ReleaseGroup, bool, error) {
	id, err := c.validator.ValidateID(externalID, "release group ID")
	if err != nil {
		return nil, false, err
	}

	var group mbReleaseGroup
	found, err := c.getMetadata(ctx, "/release-group/"+url.PathEscape(id), "artist-credits", nil, &group)
	if err != nil || !found {
		return nil, false, err
	}
	if group.ID == "" {
		return nil, false, internal.NewMalformedResponseError("/release-group/"+id, "release group without id", nil)
	}

	result := group.toModel()
	return &result, true, nil
}

// GetReleaseGroupReleases lists the releases of a group in provider order
func (c *Client) GetReleaseGroupReleases(ctx context.Context, groupID string, limit int) ([]models.Album, error) {
	id, err := c.validator.ValidateID(groupID, "release group ID")
	if err != nil {
		return nil, err
	}
	return c.browseReleases(ctx, "release-group", id, limit)
}

func (c *Client) browseReleases(ctx context.Context, by, id string, limit int) ([]models.Album, error) {
	releases, err := c.fetchReleases(ctx, by, id, limit)
	if err != nil {
		return nil, err
	}
	albums := make([]models.Album, 0, len(releases))
	for _, r := range releases {
		albums = append(albums, r.toModel())
	}
	return albums, nil
}

// fetchReleases browses releases linked to an artist or release group. An
// unknown id yields an empty list.
func (c *Client) fetchReleases(ctx context.Context, by, id string, limit int) ([]mbRelease, error) {
	limit, err := c.validator.ValidateLimit(limit)
	if err != nil {
		return nil, err
	}

	var list mbReleaseList
	_, err = c.getMetadata(ctx, "/release", "artist-credits+release-groups", url.Values{
		by:      {id},
		"limit": {strconv.Itoa(limit)},
	}, &list)
	if err != nil {
		return nil, err
	}
	return list.Releases, nil
}

// getMetadata issues a rate-limited GET against the metadata provider. inc
// is appended unescaped since the provider joins include names with '+'.
func (c *Client) getMetadata(ctx context.Context, path, inc string, query url.Values, out any) (bool, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("fmt", "json")

	endpoint := strings.TrimRight(c.config.MetadataBaseURL, "/") + path + "?" + query.Encode()
	if inc != "" {
		endpoint += "&inc=" + inc
	}

	if err := c.limiter.Acquire(ctx); err != nil {
		return false, internal.NewTimeoutError(path, "waiting for rate limiter", err)
	}
	return c.get(ctx, "metadata", path, endpoint, out)
}

// get performs one GET and decodes the JSON body into out. A 404 reports
// found=false without error.
func (c *Client) get(ctx context.Context, provider, path, endpoint string, out any) (bool, error) {
	ctx, span := c.tracer.Start(ctx, provider+" GET "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", http.MethodGet),
		attribute.String("url.full", endpoint),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, internal.NewUpstreamError(path, "build request", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return false, internal.NewUpstreamError(path, "request failed", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, resp.Status)
		return false, internal.NewUpstreamError(path, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return false, internal.NewMalformedResponseError(path, "failed to decode response", err)
	}
	return true, nil
}
