package artwork

import (
	"context"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// FileStore keeps artwork on a billy filesystem, one file per release
type FileStore struct {
	fs        billy.Filesystem
	urlPrefix string
	dl        *downloader
}

var _ Store = (*FileStore)(nil)

// NewFileStore stores artwork under cfg.Dir on the local disk
func NewFileStore(cfg Config, opts ...Option) *FileStore {
	return NewFileStoreWithFilesystem(osfs.New(cfg.Dir), cfg, opts...)
}

// NewFileStoreWithFilesystem stores artwork on fs, which tests back with memfs
func NewFileStoreWithFilesystem(fs billy.Filesystem, cfg Config, opts ...Option) *FileStore {
	o := collect(opts)
	return &FileStore{
		fs:        fs,
		urlPrefix: strings.TrimRight(cfg.URLPrefix, "/"),
		dl:        newDownloader(o.httpClient, cfg.HTTPTimeout, cfg.MaxBytes, o.logger),
	}
}

// Save downloads sourceURL unless an image for id is already stored
func (s *FileStore) Save(ctx context.Context, id, sourceURL string) (string, bool, error) {
	return save(ctx, s, s.dl, id, sourceURL)
}

// Exists reports whether id is stored with the given extension
func (s *FileStore) Exists(_ context.Context, id, ext string) bool {
	if ValidateID(id) != nil {
		return false
	}
	_, err := s.fs.Stat(objectName(id, ext))
	return err == nil
}

// PublicURL returns the served path of a stored image
func (s *FileStore) PublicURL(id, ext string) string {
	return s.urlPrefix + "/" + objectName(id, ext)
}

func (s *FileStore) put(_ context.Context, name string, data []byte, _ string) error {
	return util.WriteFile(s.fs, name, data, 0o644)
}
