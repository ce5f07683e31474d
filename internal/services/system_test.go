package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/yungbote/projectdesk-backend/internal/data/repos/testutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestClassifyIntegration(t *testing.T) {
	cases := []struct {
		name  string
		probe IntegrationProbe
		want  string
	}{
		{"all set", IntegrationProbe{Name: "email", Credentials: map[string]bool{"SENDGRID_API_KEY": true}, Initialized: true}, IntegrationActive},
		{"partial", IntegrationProbe{Name: "storage", Credentials: map[string]bool{"GCS_BUCKET_NAME": true, "GOOGLE_APPLICATION_CREDENTIALS": false}}, IntegrationConfigured},
		{"creds but no client", IntegrationProbe{Name: "redis", Credentials: map[string]bool{"REDIS_ADDR": true}}, IntegrationConfigured},
		{"nothing", IntegrationProbe{Name: "tracing", Credentials: map[string]bool{"OTEL_EXPORTER_OTLP_ENDPOINT": false}}, IntegrationInactive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyIntegration(tc.probe); got.Status != tc.want {
				t.Fatalf("want=%s got=%s", tc.want, got.Status)
			}
		})
	}
}

func TestScanCode(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "README.md"), "# demo\n")
	writeFile(t, filepath.Join(root, ".golangci.yml"), "run: {}\n")
	writeFile(t, filepath.Join(root, "main.go"), "package main\n\n// entry\nfunc main() {}\n")
	writeFile(t, filepath.Join(root, "pkg", "a", "a.go"), "package a\n")
	writeFile(t, filepath.Join(root, "pkg", "a", "a_test.go"), "package a\n")
	writeFile(t, filepath.Join(root, "node_modules", "dep", "index.js"), "module.exports = 1\n")
	writeFile(t, filepath.Join(root, "_examples", "x", "x.go"), "package x\n")

	stats, err := ScanCode(context.Background(), root)
	if err != nil {
		t.Fatalf("ScanCode: %v", err)
	}
	if stats.FilesByExtension[".js"] != 0 || stats.FilesByExtension[".go"] != 3 {
		t.Fatalf("skipped dirs were scanned: %v", stats.FilesByExtension)
	}
	if stats.Lines.Total != 6 || stats.Lines.Blank != 1 || stats.Lines.Comment != 1 || stats.Lines.Code != 4 {
		t.Fatalf("lines: %+v", stats.Lines)
	}
	if stats.Components != 2 {
		t.Fatalf("components: %d", stats.Components)
	}
	// lint 25 + tests 25 + readme 10 + short files 20; only 2 components.
	if stats.HealthScore != 80 {
		t.Fatalf("health score: %d (%+v)", stats.HealthScore, stats.HealthChecks)
	}
}

func TestCountLinesTracksBlockComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deref.go")
	writeFile(t, path, "package deref\n\n/*\n * Set stores v.\n */\nfunc Set(p *int, v int) {\n\t*p = v\n}\n/* one-liner */\n")

	counts, err := countLines(path)
	if err != nil {
		t.Fatalf("countLines: %v", err)
	}
	want := LineCounts{Total: 9, Code: 4, Blank: 1, Comment: 4}
	if counts != want {
		t.Fatalf("counts: got %+v want %+v", counts, want)
	}
}

func TestDatabaseSchema(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	testutil.SeedUser(t, ctx, db, "schema@example.com")
	svc := NewSystemService(db, testutil.Logger(t), SystemConfig{DBDriver: "sqlite", Models: types.AllModels()})

	schema, err := svc.DatabaseSchema(ctx)
	if err != nil {
		t.Fatalf("DatabaseSchema: %v", err)
	}
	if len(schema.Tables) != len(types.AllModels()) {
		t.Fatalf("tables: %d", len(schema.Tables))
	}
	var found bool
	for _, tbl := range schema.Tables {
		if tbl.Name != "user" {
			continue
		}
		found = true
		if tbl.RowCount != 1 {
			t.Fatalf("user rows: %d", tbl.RowCount)
		}
		var pk bool
		for _, c := range tbl.Columns {
			if c.Name == "id" && c.PrimaryKey {
				pk = true
			}
		}
		if !pk {
			t.Fatalf("id primary key not reported: %+v", tbl.Columns)
		}
	}
	if !found {
		t.Fatalf("user table missing")
	}

	env := svc.Environment(ctx)
	if env.GoVersion == "" || env.NumCPU < 1 || env.DBDriver != "sqlite" {
		t.Fatalf("environment: %+v", env)
	}
}
