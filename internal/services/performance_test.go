package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/yungbote/projectdesk-backend/internal/data/repos"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/testutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
)

func TestClassifyPerformance(t *testing.T) {
	cases := []struct {
		name string
		m    types.PerformanceMetrics
		want string
	}{
		{"fast and clean", types.PerformanceMetrics{AvgResponseMs: 200, ErrorRate: 0.2}, types.PerfStatusPassed},
		{"slightly slow", types.PerformanceMetrics{AvgResponseMs: 600, ErrorRate: 0.2}, types.PerfStatusWarning},
		{"some errors", types.PerformanceMetrics{AvgResponseMs: 200, ErrorRate: 2}, types.PerfStatusWarning},
		{"very slow", types.PerformanceMetrics{AvgResponseMs: 800, ErrorRate: 0}, types.PerfStatusFailed},
		{"error heavy", types.PerformanceMetrics{AvgResponseMs: 100, ErrorRate: 6}, types.PerfStatusFailed},
		{"at target", types.PerformanceMetrics{AvgResponseMs: 500, ErrorRate: 1}, types.PerfStatusPassed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyPerformance(tc.m, 500); got != tc.want {
				t.Fatalf("want=%s got=%s", tc.want, got)
			}
		})
	}
}

func TestSyntheticMetricsAreReproducibleAndScale(t *testing.T) {
	a := SyntheticMetrics(42, "load", 50, 60)
	b := SyntheticMetrics(42, "load", 50, 60)
	if a != b {
		t.Fatalf("same seed produced different metrics")
	}
	if a.MinResponseMs > a.AvgResponseMs || a.AvgResponseMs > a.P95ResponseMs || a.P95ResponseMs > a.MaxResponseMs {
		t.Fatalf("latency ordering broken: %+v", a)
	}
	if a.TotalRequests <= 0 || a.ThroughputRps <= 0 {
		t.Fatalf("no traffic: %+v", a)
	}
	heavy := SyntheticMetrics(42, "stress", 8000, 60)
	if heavy.AvgResponseMs <= a.AvgResponseMs || heavy.ErrorRate <= a.ErrorRate {
		t.Fatalf("metrics should grow with load: light=%+v heavy=%+v", a, heavy)
	}
}

func TestCreatePerformanceTest(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	svc := NewPerformanceTestService(log, repos.NewPerformanceTestRepo(db, log), &recordingPublisher{})
	user := testutil.SeedUser(t, ctx, db, "perf@example.com")

	bad := 0
	_, err := svc.Create(ctx, user.ID, PerformanceTestInput{Name: "x", TargetURL: "ftp://example.com", Concurrency: &bad})
	wantAPIError(t, err, http.StatusBadRequest, "validation_failed")
	fields := apierrFields(err)
	if _, ok := fields["targetUrl"]; !ok {
		t.Fatalf("missing targetUrl error: %v", fields)
	}
	if _, ok := fields["concurrency"]; !ok {
		t.Fatalf("missing concurrency error: %v", fields)
	}

	supplied, err := svc.Create(ctx, user.ID, PerformanceTestInput{
		Name:      "Checkout load",
		TargetURL: "https://shop.example.com/checkout",
		Metrics:   &types.PerformanceMetrics{AvgResponseMs: 900, ErrorRate: 0.5, TotalRequests: 100},
	})
	if err != nil {
		t.Fatalf("Create supplied: %v", err)
	}
	if supplied.Synthetic || supplied.Status != types.PerfStatusFailed {
		t.Fatalf("supplied run: synthetic=%v status=%s", supplied.Synthetic, supplied.Status)
	}
	if supplied.Concurrency != 10 || supplied.DurationSeconds != 60 || supplied.TargetResponseMs != 500 {
		t.Fatalf("defaults: %+v", supplied)
	}

	generated, err := svc.Create(ctx, user.ID, PerformanceTestInput{Name: "Home", TargetURL: "http://example.com"})
	if err != nil {
		t.Fatalf("Create synthetic: %v", err)
	}
	if !generated.Synthetic || generated.Metrics.Data().TotalRequests == 0 {
		t.Fatalf("synthetic run: %+v", generated)
	}

	got, err := svc.Get(ctx, supplied.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Metrics.Data().AvgResponseMs != 900 {
		t.Fatalf("metrics round trip: %+v", got.Metrics.Data())
	}
}
