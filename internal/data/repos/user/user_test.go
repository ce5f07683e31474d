package user

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/testutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewUserRepo(db, testutil.Logger(t))

	created, err := repo.Create(ctx, tx, &types.User{Name: "Ada", Email: "  Ada@Example.COM ", Password: "hash"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil || created.Email != "ada@example.com" {
		t.Fatalf("unexpected created user: %+v", created)
	}

	got, err := repo.GetByEmail(ctx, tx, "ADA@example.com")
	if err != nil || got.ID != created.ID {
		t.Fatalf("GetByEmail: %v %+v", err, got)
	}
	if got.Role != types.RoleDeveloper || got.Department != "General" || got.Status != types.UserStatusActive {
		t.Fatalf("defaults not applied: %+v", got)
	}

	exists, err := repo.EmailExists(ctx, tx, "ada@EXAMPLE.com")
	if err != nil || !exists {
		t.Fatalf("EmailExists: %v %v", exists, err)
	}

	if _, err := repo.Create(ctx, tx, &types.User{Name: "Dup", Email: "ada@example.com", Password: "x"}); !errors.Is(err, apierr.ErrConflict) {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	if err := repo.UpdateLastLogin(ctx, tx, created.ID, now); err != nil {
		t.Fatalf("UpdateLastLogin: %v", err)
	}
	if err := repo.UpdateStatus(ctx, tx, created.ID, types.UserStatusSuspended); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, err = repo.GetByID(ctx, tx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.LastLogin == nil || !got.LastLogin.Equal(now) || got.Status != types.UserStatusSuspended {
		t.Fatalf("updates not persisted: %+v", got)
	}

	if _, err := repo.GetByID(ctx, tx, uuid.New()); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := repo.UpdatePassword(ctx, tx, uuid.New(), "x"); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
}

func TestUserRepoList(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewUserRepo(db, testutil.Logger(t))

	for i := 0; i < 12; i++ {
		testutil.SeedUser(t, ctx, tx, fmt.Sprintf("dev%02d@example.com", i))
	}
	admin := testutil.SeedUser(t, ctx, tx, "boss@example.com")
	if err := tx.Model(admin).Update("role", types.RoleAdmin).Error; err != nil {
		t.Fatalf("promote: %v", err)
	}

	rows, total, err := repo.List(ctx, tx, ListFilter{Page: repoutil.Page{Page: 2, Limit: 5}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 13 || len(rows) != 5 {
		t.Fatalf("want total=13 rows=5, got total=%d rows=%d", total, len(rows))
	}

	rows, total, err = repo.List(ctx, tx, ListFilter{Role: types.RoleAdmin})
	if err != nil || total != 1 || rows[0].ID != admin.ID {
		t.Fatalf("role filter: %v total=%d", err, total)
	}

	_, total, err = repo.List(ctx, tx, ListFilter{Search: "DEV0"})
	if err != nil || total != 10 {
		t.Fatalf("search: %v total=%d", err, total)
	}
}
