package gcp

import "testing"

func TestPublicURL(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		key  string
		want string
	}{
		{"cdn", Config{BucketName: "docs", CDNDomain: "cdn.example.com"}, "/a/b.pdf", "https://cdn.example.com/a/b.pdf"},
		{"emulator", Config{BucketName: "docs", EmulatorHost: "http://fake-gcs:4443"}, "a/b c.pdf", "http://fake-gcs:4443/storage/v1/b/docs/o/a%2Fb%20c.pdf?alt=media"},
		{"emulator public base", Config{BucketName: "docs", EmulatorHost: "http://fake-gcs:4443", PublicBaseURL: "http://localhost:4443"}, "x.txt", "http://localhost:4443/storage/v1/b/docs/o/x.txt?alt=media"},
		{"public base", Config{BucketName: "docs", PublicBaseURL: "https://files.example.com"}, "x.txt", "https://files.example.com/docs/x.txt"},
		{"default", Config{BucketName: "docs"}, "x.txt", "https://storage.googleapis.com/docs/x.txt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PublicURL(tc.cfg, tc.key); got != tc.want {
				t.Fatalf("PublicURL: want=%q got=%q", tc.want, got)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{}).Validate(); err == nil {
		t.Fatalf("expected error for missing bucket")
	}
	if err := (Config{BucketName: "docs", EmulatorHost: "fake-gcs:4443"}).Validate(); err == nil {
		t.Fatalf("expected error for relative emulator host")
	}
	if err := (Config{BucketName: "docs", EmulatorHost: "http://fake-gcs:4443"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("GCS_BUCKET_NAME", "docs")
	t.Setenv("STORAGE_EMULATOR_HOST", "http://fake-gcs:4443/")
	cfg := ConfigFromEnv(nil)
	if !cfg.Enabled() || !cfg.IsEmulator() {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.EmulatorHost != "http://fake-gcs:4443" {
		t.Fatalf("trailing slash not trimmed: %q", cfg.EmulatorHost)
	}
}

func TestContentTypeForKey(t *testing.T) {
	if got := ContentTypeForKey("Report.PDF"); got != "application/pdf" {
		t.Fatalf("got %q", got)
	}
	if got := ContentTypeForKey("unknown.bin"); got != "" {
		t.Fatalf("got %q", got)
	}
}
