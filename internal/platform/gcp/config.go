package gcp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/yungbote/projectdesk-backend/internal/platform/envutil"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

type Config struct {
	BucketName string
	CDNDomain  string
	// EmulatorHost points at a fake-gcs server; empty means real GCS.
	EmulatorHost  string
	PublicBaseURL string
}

func ConfigFromEnv(log *logger.Logger) Config {
	return Config{
		BucketName:    envutil.String("GCS_BUCKET_NAME", "", log),
		CDNDomain:     envutil.String("GCS_CDN_DOMAIN", "", log),
		EmulatorHost:  strings.TrimRight(envutil.String("STORAGE_EMULATOR_HOST", "", log), "/"),
		PublicBaseURL: strings.TrimRight(envutil.String("OBJECT_STORAGE_PUBLIC_BASE_URL", "", log), "/"),
	}
}

func (c Config) Enabled() bool { return strings.TrimSpace(c.BucketName) != "" }

func (c Config) IsEmulator() bool { return c.EmulatorHost != "" }

func (c Config) Validate() error {
	if !c.Enabled() {
		return fmt.Errorf("missing GCS_BUCKET_NAME")
	}
	for name, raw := range map[string]string{
		"STORAGE_EMULATOR_HOST":          c.EmulatorHost,
		"OBJECT_STORAGE_PUBLIC_BASE_URL": c.PublicBaseURL,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s=%q; expected absolute URL like http://localhost:4443", name, raw)
		}
	}
	return nil
}
