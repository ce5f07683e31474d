package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

var ErrObjectNotFound = errors.New("object not found")

const (
	writeTimeout  = 2 * time.Minute
	deleteTimeout = 30 * time.Second
)

// BucketService stores uploaded documents as objects in one bucket.
type BucketService interface {
	// Put writes the object and returns the number of bytes stored.
	Put(ctx context.Context, key string, body io.Reader, contentType string) (int64, error)
	// Delete returns ErrObjectNotFound when key does not exist.
	Delete(ctx context.Context, key string) error
	URL(key string) string
	Close() error
}

type bucketService struct {
	log    *logger.Logger
	client *storage.Client
	cfg    Config
}

func NewBucketService(ctx context.Context, log *logger.Logger, cfg Config) (BucketService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("object storage config: %w", err)
	}
	client, err := openClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	bs := &bucketService{log: log.With("service", "BucketService", "bucket", cfg.BucketName), client: client, cfg: cfg}
	bs.log.Info("Object storage ready", "emulator_host", cfg.EmulatorHost, "cdn_domain", cfg.CDNDomain)
	return bs, nil
}

func openClient(ctx context.Context, cfg Config) (*storage.Client, error) {
	if cfg.IsEmulator() {
		// The storage SDK only reads the emulator address from the environment.
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	return storage.NewClient(ctx, append(ClientOptionsFromEnv(), option.WithScopes(storage.ScopeReadWrite))...)
}

func (bs *bucketService) object(key string) *storage.ObjectHandle {
	return bs.client.Bucket(bs.cfg.BucketName).Object(key)
}

func (bs *bucketService) Put(ctx context.Context, key string, body io.Reader, contentType string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	w := bs.object(key).NewWriter(ctx)
	if contentType == "" {
		contentType = ContentTypeForKey(key)
	}
	w.ContentType = contentType
	n, err := io.Copy(w, body)
	if err != nil {
		_ = w.Close()
		return n, fmt.Errorf("write gs://%s/%s: %w", bs.cfg.BucketName, key, err)
	}
	if err := w.Close(); err != nil {
		return n, fmt.Errorf("finalize gs://%s/%s: %w", bs.cfg.BucketName, key, err)
	}
	bs.log.Debug("Object stored", "key", key, "bytes", n)
	return n, nil
}

func (bs *bucketService) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()
	switch err := bs.object(key).Delete(ctx); {
	case errors.Is(err, storage.ErrObjectNotExist):
		return ErrObjectNotFound
	case err != nil:
		return fmt.Errorf("delete gs://%s/%s: %w", bs.cfg.BucketName, key, err)
	}
	return nil
}

func (bs *bucketService) URL(key string) string { return PublicURL(bs.cfg, key) }

func (bs *bucketService) Close() error { return bs.client.Close() }

// PublicURL prefers the CDN, then an explicit public base, then the emulator media endpoint.
func PublicURL(cfg Config, key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	switch {
	case cfg.CDNDomain != "":
		return fmt.Sprintf("https://%s/%s", cfg.CDNDomain, key)
	case cfg.IsEmulator():
		base := cfg.PublicBaseURL
		if base == "" {
			base = cfg.EmulatorHost
		}
		return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", base, url.PathEscape(cfg.BucketName), url.PathEscape(key))
	case cfg.PublicBaseURL != "":
		return fmt.Sprintf("%s/%s/%s", cfg.PublicBaseURL, cfg.BucketName, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.BucketName, key)
}

func ContentTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(strings.TrimSpace(key))) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".pdf":
		return "application/pdf"
	case ".json":
		return "application/json"
	case ".md":
		return "text/markdown"
	case ".txt", ".log":
		return "text/plain"
	case ".csv":
		return "text/csv"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".zip":
		return "application/zip"
	default:
		return ""
	}
}
