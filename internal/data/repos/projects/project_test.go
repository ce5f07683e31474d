package projects

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/projectdesk-backend/internal/data/repos/testutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
)

func TestProjectRepoCRUD(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewProjectRepo(db, testutil.Logger(t))

	owner := testutil.SeedUser(t, ctx, tx, "owner@example.com")
	client := testutil.SeedClient(t, ctx, tx, "Acme", "a@acme.io")

	p, err := repo.Create(ctx, tx, &types.Project{Name: "Portal", OwnerID: owner.ID, ClientID: &client.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	testutil.SeedProject(t, ctx, tx, owner.ID, "Internal tools")

	rows, total, err := repo.List(ctx, tx, ListFilter{ClientID: &client.ID})
	if err != nil || total != 1 || rows[0].ID != p.ID {
		t.Fatalf("List by client: %v total=%d", err, total)
	}
	if rows[0].Status != "planning" {
		t.Fatalf("default status not applied: %q", rows[0].Status)
	}

	if err := repo.Update(ctx, tx, p.ID, map[string]any{"status": "active"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	_, total, err = repo.List(ctx, tx, ListFilter{Status: "active"})
	if err != nil || total != 2 {
		t.Fatalf("List by status: %v total=%d", err, total)
	}

	if err := repo.Delete(ctx, tx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, tx, p.ID); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("expected soft-deleted project to be hidden, got %v", err)
	}
	if err := repo.Delete(ctx, tx, uuid.New()); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
