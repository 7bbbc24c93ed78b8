package artwork

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Store keeps artwork in an S3-compatible bucket
type S3Store struct {
	client    *minio.Client
	bucket    string
	prefix    string
	publicURL string
	dl        *downloader
}

var _ Store = (*S3Store)(nil)

// NewS3Store connects to cfg.S3Endpoint with static credentials
func NewS3Store(cfg Config, opts ...Option) (*S3Store, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return NewS3StoreWithClient(client, cfg, opts...), nil
}

// NewS3StoreWithClient uses an existing client
func NewS3StoreWithClient(client *minio.Client, cfg Config, opts ...Option) *S3Store {
	o := collect(opts)

	publicURL := strings.TrimRight(cfg.S3PublicURL, "/")
	if publicURL == "" {
		scheme := "http"
		if cfg.S3UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, client.EndpointURL().Host, cfg.S3Bucket)
	}

	return &S3Store{
		client:    client,
		bucket:    cfg.S3Bucket,
		prefix:    strings.Trim(cfg.S3Prefix, "/"),
		publicURL: publicURL,
		dl:        newDownloader(o.httpClient, cfg.HTTPTimeout, cfg.MaxBytes, o.logger),
	}
}

// Save downloads sourceURL unless an object for id already exists
func (s *S3Store) Save(ctx context.Context, id, sourceURL string) (string, bool, error) {
	return save(ctx, s, s.dl, id, sourceURL)
}

// Exists reports whether the object for id and ext is present
func (s *S3Store) Exists(ctx context.Context, id, ext string) bool {
	if ValidateID(id) != nil {
		return false
	}
	_, err := s.client.StatObject(ctx, s.bucket, s.key(objectName(id, ext)), minio.StatObjectOptions{})
	return err == nil
}

// PublicURL returns the object's URL under the configured public base
func (s *S3Store) PublicURL(id, ext string) string {
	return s.publicURL + "/" + s.key(objectName(id, ext))
}

func (s *S3Store) put(ctx context.Context, name string, data []byte, mimeType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: mimeType})
	return err
}

func (s *S3Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}
