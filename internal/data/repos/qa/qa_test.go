package qa

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/testutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
)

func TestTestCaseAndResults(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)
	cases := NewTestCaseRepo(db, log)
	results := NewTestResultRepo(db, log)

	u := testutil.SeedUser(t, ctx, tx, "qa@example.com")
	p := testutil.SeedProject(t, ctx, tx, u.ID, "Checkout")
	tc := testutil.SeedTestCase(t, ctx, tx, p.ID, u.ID, "Pay with card")
	testutil.SeedTestCase(t, ctx, tx, p.ID, u.ID, "Pay with voucher")

	base := time.Now().UTC().Truncate(time.Second)
	for i, status := range []string{types.TestStatusPassed, types.TestStatusFailed, types.TestStatusBlocked} {
		if _, err := results.Create(ctx, tx, &types.TestResult{
			TestCaseID: tc.ID,
			Status:     status,
			ExecutedBy: u.ID,
			ExecutedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("create result: %v", err)
		}
	}

	hist, err := results.ListByTestCase(ctx, tx, tc.ID, 2)
	if err != nil || len(hist) != 2 {
		t.Fatalf("ListByTestCase: %v len=%d", err, len(hist))
	}
	if hist[0].Status != types.TestStatusBlocked {
		t.Fatalf("expected newest first, got %s", hist[0].Status)
	}

	if err := cases.UpdateRunState(ctx, tx, tc.ID, types.TestStatusBlocked, base); err != nil {
		t.Fatalf("UpdateRunState: %v", err)
	}
	got, err := cases.GetByID(ctx, tx, tc.ID)
	if err != nil || got.Status != types.TestStatusBlocked || got.LastRun == nil {
		t.Fatalf("run state not stored: %v %+v", err, got)
	}

	byStatus, err := cases.CountByStatus(ctx, tx)
	if err != nil || byStatus[types.TestStatusBlocked] != 1 || byStatus[types.TestStatusNotRun] != 1 {
		t.Fatalf("CountByStatus: %v %v", byStatus, err)
	}

	tallies, err := cases.TallyByProject(ctx, tx)
	if err != nil || len(tallies) != 2 {
		t.Fatalf("TallyByProject: %v %v", tallies, err)
	}

	n, err := results.CountSince(ctx, tx, base.Add(30*time.Second))
	if err != nil || n != 2 {
		t.Fatalf("CountSince: %d %v", n, err)
	}

	_, total, err := cases.List(ctx, tx, TestCaseFilter{Search: "VOUCHER", Page: repoutil.Page{}})
	if err != nil || total != 1 {
		t.Fatalf("List search: %v total=%d", err, total)
	}

	if err := results.DeleteByTestCase(ctx, tx, tc.ID); err != nil {
		t.Fatalf("DeleteByTestCase: %v", err)
	}
	if err := cases.Delete(ctx, tx, tc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := cases.GetByID(ctx, tx, tc.ID); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBugAndPerformanceRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)
	bugs := NewBugRepo(db, log)
	perf := NewPerformanceTestRepo(db, log)

	u := testutil.SeedUser(t, ctx, tx, "qa@example.com")
	for _, status := range []string{types.BugStatusOpen, types.BugStatusReopened, types.BugStatusClosed} {
		if _, err := bugs.Create(ctx, tx, &types.Bug{Title: "bug " + status, Status: status, ReportedBy: u.ID}); err != nil {
			t.Fatalf("create bug: %v", err)
		}
	}
	open, err := bugs.CountOpen(ctx, tx)
	if err != nil || open != 2 {
		t.Fatalf("CountOpen: %d %v", open, err)
	}
	bySeverity, err := bugs.CountBySeverity(ctx, tx)
	if err != nil || bySeverity["major"] != 3 {
		t.Fatalf("CountBySeverity: %v %v", bySeverity, err)
	}

	pt, err := perf.Create(ctx, tx, &types.PerformanceTest{
		Name:             "homepage",
		TargetURL:        "https://example.com",
		Concurrency:      10,
		DurationSeconds:  60,
		TargetResponseMs: 500,
		Metrics:          datatypes.NewJSONType(types.PerformanceMetrics{AvgResponseMs: 120, TotalRequests: 900}),
		Status:           types.PerfStatusPassed,
		CreatedBy:        u.ID,
	})
	if err != nil {
		t.Fatalf("create perf: %v", err)
	}
	got, err := perf.GetByID(ctx, tx, pt.ID)
	if err != nil || got.Metrics.Data().TotalRequests != 900 {
		t.Fatalf("metrics round trip: %v %+v", err, got)
	}
	_, total, err := perf.List(ctx, tx, PerformanceFilter{Status: types.PerfStatusFailed})
	if err != nil || total != 0 {
		t.Fatalf("List filter: %v total=%d", err, total)
	}
}
