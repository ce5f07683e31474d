package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/yungbote/projectdesk-backend/internal/data/repos"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/testutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
)

func TestDeploymentTransitions(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	svc := NewDeploymentService(db, log, repos.NewDeploymentRepo(db, log), &recordingPublisher{}).(*deploymentService)
	clock := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	user := testutil.SeedUser(t, ctx, db, "ops@example.com")

	_, err := svc.Create(ctx, user.ID, DeploymentInput{Version: strPtr("1.2.0"), Environment: strPtr("qa")})
	wantAPIError(t, err, http.StatusBadRequest, "validation_failed")

	d, err := svc.Create(ctx, user.ID, DeploymentInput{Version: strPtr("1.2.0"), Environment: strPtr("staging")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.Status != types.DeployPending {
		t.Fatalf("status: %s", d.Status)
	}

	_, err = svc.Transition(ctx, d.ID, types.DeploySucceeded)
	wantAPIError(t, err, http.StatusBadRequest, "invalid_transition")

	started, err := svc.Transition(ctx, d.ID, types.DeployInProgress)
	if err != nil {
		t.Fatalf("Transition in_progress: %v", err)
	}
	if started.StartedAt == nil || !started.StartedAt.Equal(clock) || started.FinishedAt != nil {
		t.Fatalf("start stamps: %+v", started)
	}

	clock = clock.Add(5 * time.Minute)
	done, err := svc.Transition(ctx, d.ID, types.DeploySucceeded)
	if err != nil {
		t.Fatalf("Transition succeeded: %v", err)
	}
	if done.FinishedAt == nil || !done.FinishedAt.Equal(clock) {
		t.Fatalf("finish stamp: %+v", done.FinishedAt)
	}

	if _, err := svc.Transition(ctx, d.ID, types.DeployRolledBack); err != nil {
		t.Fatalf("Transition rolled_back: %v", err)
	}
	_, err = svc.Transition(ctx, d.ID, types.DeployInProgress)
	wantAPIError(t, err, http.StatusBadRequest, "invalid_transition")
}
