package artwork

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends
const (
	BackendFile = "file"
	BackendS3   = "s3"
)

// Config selects and configures the artwork backend
type Config struct {
	Backend     string        `env:"ARTWORK_BACKEND"`
	MaxBytes    int64         `env:"ARTWORK_MAX_BYTES"`
	HTTPTimeout time.Duration `env:"ARTWORK_HTTP_TIMEOUT"`

	// Filesystem backend
	Dir       string `env:"ARTWORK_DIR"`
	URLPrefix string `env:"ARTWORK_URL_PREFIX"`

	// S3 backend
	S3Endpoint  string `env:"ARTWORK_S3_ENDPOINT"`
	S3Bucket    string `env:"ARTWORK_S3_BUCKET"`
	S3AccessKey string `env:"ARTWORK_S3_ACCESS_KEY"`
	S3SecretKey string `env:"ARTWORK_S3_SECRET_KEY"`
	S3UseSSL    bool   `env:"ARTWORK_S3_USE_SSL"`
	S3Prefix    string `env:"ARTWORK_S3_PREFIX"`
	S3PublicURL string `env:"ARTWORK_S3_PUBLIC_URL"` // base URL objects are served from
}

// DefaultConfig stores artwork under public/artwork and serves it from /artwork
func DefaultConfig() Config {
	return Config{
		Backend:     BackendFile,
		MaxBytes:    10 << 20,
		HTTPTimeout: 30 * time.Second,
		Dir:         "public/artwork",
		URLPrefix:   "/artwork",
		S3UseSSL:    true,
	}
}

// LoadConfig overlays ALBUMCACHE_ARTWORK_* variables on DefaultConfig
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "ALBUMCACHE_"}); err != nil {
		return Config{}, fmt.Errorf("artwork: parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("artwork: invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.MaxBytes <= 0 {
		return fmt.Errorf("max bytes must be positive, got %d", c.MaxBytes)
	}
	switch c.Backend {
	case BackendFile:
		if c.Dir == "" {
			return fmt.Errorf("dir is required for the file backend")
		}
	case BackendS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("bucket is required for the s3 backend")
		}
		if c.S3Endpoint == "" {
			return fmt.Errorf("endpoint is required for the s3 backend")
		}
		if c.S3AccessKey == "" || c.S3SecretKey == "" {
			return fmt.Errorf("access and secret keys are required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

type options struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a store
type Option func(*options)

// WithHTTPClient sets the client used to download source images
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// WithLogger sets the store's logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New builds the backend named by cfg.Backend
func New(cfg Config, opts ...Option) (Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("artwork: invalid config: %w", err)
	}
	switch cfg.Backend {
	case BackendS3:
		return NewS3Store(cfg, opts...)
	default:
		return NewFileStore(cfg, opts...), nil
	}
}
