package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestMigrateSeedsOnceWhenEnabled(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := Migrate(ctx, db, logger.Nop(), MigrateOptions{SeedSampleData: true}); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	discussions := count(t, db, &types.Discussion{})
	if discussions == 0 || count(t, db, &types.VersionHistory{}) == 0 || count(t, db, &types.Document{}) == 0 {
		t.Fatalf("expected seeded content")
	}

	if err := Migrate(ctx, db, logger.Nop(), MigrateOptions{SeedSampleData: true}); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	if got := count(t, db, &types.Discussion{}); got != discussions {
		t.Fatalf("seed ran twice: %d -> %d", discussions, got)
	}
	if got := count(t, db, &types.SchemaMigration{}); got != 2 {
		t.Fatalf("expected 2 recorded steps, got %d", got)
	}
}

func TestMigrateSkipsSeedWhenDisabled(t *testing.T) {
	db := openTestDB(t)
	if err := Migrate(context.Background(), db, logger.Nop(), MigrateOptions{}); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if got := count(t, db, &types.Discussion{}); got != 0 {
		t.Fatalf("expected no seeded discussions, got %d", got)
	}
	if got := count(t, db, &types.SchemaMigration{}); got != 1 {
		t.Fatalf("expected only the index step recorded, got %d", got)
	}
}

func TestMigrateRollsBackFailedStep(t *testing.T) {
	db := openTestDB(t)
	boom := errors.New("boom")
	steps := []Step{{ID: "999_fail", Run: func(_ context.Context, tx *gorm.DB) error {
		if err := tx.Create(&types.Client{ID: uuid.New(), Name: "Acme", Email: "a@acme.io"}).Error; err != nil {
			return err
		}
		return boom
	}}}
	err := MigrateSteps(context.Background(), db, logger.Nop(), MigrateOptions{}, steps)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if got := count(t, db, &types.Client{}); got != 0 {
		t.Fatalf("expected rollback, found %d clients", got)
	}
	if got := count(t, db, &types.SchemaMigration{}); got != 0 {
		t.Fatalf("failed step must not be recorded")
	}
}

func TestTranslateError(t *testing.T) {
	db := openTestDB(t)
	if err := AutoMigrateAll(db); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	c := &types.Client{ID: uuid.New(), Name: "Acme", Email: "a@acme.io"}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	dup := &types.Client{ID: uuid.New(), Name: "Other", Email: "a@acme.io"}
	if err := TranslateError(db.Create(dup).Error); !errors.Is(err, apierr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	var missing types.Client
	err := TranslateError(db.Where("id = ?", uuid.New()).Take(&missing).Error)
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if TranslateError(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}

func TestConfigDSN(t *testing.T) {
	pg := Config{Driver: DriverPostgres, PostgresUser: "u", PostgresPassword: "p", PostgresHost: "h", PostgresPort: "5432", PostgresName: "n", PostgresSSLMode: "disable"}
	if got := pg.DSN(); got != "postgres://u:p@h:5432/n?sslmode=disable" {
		t.Fatalf("dsn: %s", got)
	}
	if got := (Config{Driver: DriverSQLite, SQLitePath: "x.db"}).DSN(); got != "x.db" {
		t.Fatalf("dsn: %s", got)
	}
	if _, err := Open(Config{Driver: "mysql"}, nil); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}
