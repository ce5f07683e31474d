package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yungbote/projectdesk-backend/internal/platform/gcp"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

const (
	BackendGCS   = "gcs"
	BackendLocal = "local"
)

type Object struct {
	Key     string
	URL     string
	Backend string
	Size    int64
}

type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (*Object, error)
	Delete(ctx context.Context, backend, key string) error
	Backend() string
}

// ---------- GCS ----------

type gcsStore struct {
	bucket gcp.BucketService
}

func NewGCSStore(bucket gcp.BucketService) Store {
	return &gcsStore{bucket: bucket}
}

func (s *gcsStore) Backend() string { return BackendGCS }

func (s *gcsStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (*Object, error) {
	n, err := s.bucket.Put(ctx, key, r, contentType)
	if err != nil {
		return nil, err
	}
	return &Object{Key: key, URL: s.bucket.URL(key), Backend: BackendGCS, Size: n}, nil
}

func (s *gcsStore) Delete(ctx context.Context, _ string, key string) error {
	if err := s.bucket.Delete(ctx, key); err != nil && !errors.Is(err, gcp.ErrObjectNotFound) {
		return err
	}
	return nil
}

// ---------- local disk ----------

type localStore struct {
	root      string
	urlPrefix string
}

// NewLocalStore writes under root; files are served by the router at urlPrefix.
func NewLocalStore(root, urlPrefix string) (Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &localStore{root: abs, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

func (s *localStore) Backend() string { return BackendLocal }

func (s *localStore) path(key string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(key))
	p := filepath.Join(s.root, clean)
	if !strings.HasPrefix(p, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return p, nil
}

func (s *localStore) Put(ctx context.Context, key string, r io.Reader, _ string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(p)
	if err != nil {
		return nil, err
	}
	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(p)
		return nil, errors.Join(copyErr, closeErr)
	}
	return &Object{
		Key:     key,
		URL:     s.urlPrefix + "/" + strings.TrimLeft(filepath.ToSlash(key), "/"),
		Backend: BackendLocal,
		Size:    n,
	}, nil
}

func (s *localStore) Delete(_ context.Context, _ string, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// ---------- fallback ----------

type fallbackStore struct {
	log       *logger.Logger
	primary   Store
	secondary Store
}

// NewFallbackStore writes to primary and retries on secondary when primary fails.
// A nil primary means every write goes to secondary.
func NewFallbackStore(log *logger.Logger, primary, secondary Store) Store {
	return &fallbackStore{log: log.With("service", "FallbackStore"), primary: primary, secondary: secondary}
}

func (s *fallbackStore) Backend() string {
	if s.primary != nil {
		return s.primary.Backend()
	}
	return s.secondary.Backend()
}

func (s *fallbackStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (*Object, error) {
	if s.primary == nil {
		return s.secondary.Put(ctx, key, r, contentType)
	}
	// The reader can only be consumed once, so spool it for a possible retry.
	buf, err := spool(r)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = buf.Close()
		_ = os.Remove(buf.Name())
	}()
	obj, err := s.primary.Put(ctx, key, buf, contentType)
	if err == nil {
		return obj, nil
	}
	s.log.Warn("Primary object store failed, falling back", "backend", s.primary.Backend(), "key", key, "error", err)
	if _, serr := buf.Seek(0, io.SeekStart); serr != nil {
		return nil, serr
	}
	return s.secondary.Put(ctx, key, buf, contentType)
}

func (s *fallbackStore) Delete(ctx context.Context, backend, key string) error {
	if s.primary != nil && backend == s.primary.Backend() {
		return s.primary.Delete(ctx, backend, key)
	}
	return s.secondary.Delete(ctx, backend, key)
}

func spool(r io.Reader) (*os.File, error) {
	f, err := os.CreateTemp("", "upload-*")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, err
	}
	return f, nil
}
