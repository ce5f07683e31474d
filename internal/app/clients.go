package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/projectdesk-backend/internal/platform/filestore"
	"github.com/yungbote/projectdesk-backend/internal/platform/gcp"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"github.com/yungbote/projectdesk-backend/internal/platform/sendgrid"
	"github.com/yungbote/projectdesk-backend/internal/realtime"
)

// Clients holds the optional external integrations. Any of them may be nil
// when its configuration is absent.
type Clients struct {
	Bucket   gcp.BucketService
	Redis    *realtime.RedisPublisher
	SendGrid sendgrid.Client
	Files    filestore.Store
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	if cfg.Storage.Enabled() {
		bucket, err := gcp.NewBucketService(ctx, log, cfg.Storage)
		if err != nil {
			if cfg.IsProduction() {
				return Clients{}, fmt.Errorf("init gcs bucket: %w", err)
			}
			log.Warn("GCS bucket unavailable, using local uploads", "error", err)
		} else {
			out.Bucket = bucket
		}
	}

	var primary filestore.Store
	if out.Bucket != nil {
		primary = filestore.NewGCSStore(out.Bucket)
	}
	var secondary filestore.Store
	if dir := strings.TrimSpace(cfg.UploadDir); dir != "" {
		local, err := filestore.NewLocalStore(dir, "/uploads")
		if err != nil {
			log.Warn("Local upload directory unavailable", "dir", dir, "error", err)
		} else {
			secondary = local
		}
	}
	switch {
	case primary != nil && secondary != nil:
		out.Files = filestore.NewFallbackStore(log, primary, secondary)
	case primary != nil:
		out.Files = primary
	case secondary != nil:
		out.Files = secondary
	}

	if strings.TrimSpace(cfg.RedisAddr) != "" {
		pub, err := realtime.NewRedisPublisher(ctx, log, realtime.RedisConfig{
			Addr:    cfg.RedisAddr,
			Channel: cfg.RedisChannel,
		})
		if err != nil {
			out.close(log)
			return Clients{}, fmt.Errorf("init redis publisher: %w", err)
		}
		out.Redis = pub
	}

	if strings.TrimSpace(cfg.SendGrid.APIKey) != "" {
		sg, err := sendgrid.New(log, cfg.SendGrid)
		if err != nil {
			out.close(log)
			return Clients{}, fmt.Errorf("init sendgrid: %w", err)
		}
		out.SendGrid = sg
	}

	return out, nil
}

func (c *Clients) close(log *logger.Logger) {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn("Redis close failed", "error", err)
		}
		c.Redis = nil
	}
	if c.Bucket != nil {
		if err := c.Bucket.Close(); err != nil {
			log.Warn("GCS close failed", "error", err)
		}
		c.Bucket = nil
	}
}
