package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	types "github.com/yungbote/projectdesk-backend/internal/domain"
)

// SeedPassword is the plaintext behind every SeedUser hash.
const SeedPassword = "secret123"

var (
	seedHashOnce sync.Once
	seedHash     string
)

func passwordHash(tb testing.TB) string {
	seedHashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.MinCost)
		if err != nil {
			tb.Fatalf("hash password: %v", err)
		}
		seedHash = string(h)
	})
	return seedHash
}

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:         uuid.New(),
		Name:       "Test User",
		Email:      email,
		Password:   passwordHash(tb),
		Role:       types.RoleDeveloper,
		Department: "General",
		Status:     types.UserStatusActive,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedClient(tb testing.TB, ctx context.Context, tx *gorm.DB, name, email string) *types.Client {
	tb.Helper()
	c := &types.Client{
		ID:      uuid.New(),
		Name:    name,
		Email:   email,
		Company: name + " Inc",
		Contact: "Pat Contact",
		Status:  types.ClientStatusActive,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed client: %v", err)
	}
	return c
}

func SeedProject(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, name string) *types.Project {
	tb.Helper()
	p := &types.Project{
		ID:      uuid.New(),
		Name:    name,
		Status:  "active",
		OwnerID: ownerID,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed project: %v", err)
	}
	return p
}

func SeedTestCase(tb testing.TB, ctx context.Context, tx *gorm.DB, projectID, createdBy uuid.UUID, title string) *types.TestCase {
	tb.Helper()
	tc := &types.TestCase{
		ID:        uuid.New(),
		Title:     title,
		Type:      "functional",
		Priority:  "medium",
		Status:    types.TestStatusNotRun,
		Steps:     []types.TestStep{{Step: 1, Description: "open the page"}},
		ProjectID: projectID,
		CreatedBy: createdBy,
	}
	if err := tx.WithContext(ctx).Create(tc).Error; err != nil {
		tb.Fatalf("seed test case: %v", err)
	}
	return tc
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
