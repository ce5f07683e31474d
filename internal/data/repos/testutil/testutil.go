package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/projectdesk-backend/internal/data/db"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

var sharedLogger = sync.OnceValues(func() (*logger.Logger, error) { return logger.New("test") })

// Logger is an error-level logger shared by every test in the binary.
func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := sharedLogger()
	if err != nil {
		tb.Fatalf("test logger: %v", err)
	}
	return log
}

// DB returns a fresh, migrated in-memory SQLite database private to tb.
// A single connection serializes access; code under test must route
// queries inside a transaction through that transaction.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		tb.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(context.Background(), gdb, logger.Nop(), db.MigrateOptions{}); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	return gdb
}

// Tx opens a transaction that is rolled back when tb finishes.
func Tx(tb testing.TB, gdb *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := gdb.Begin()
	if err := tx.Error; err != nil {
		tb.Fatalf("begin tx: %v", err)
	}
	tb.Cleanup(func() { tx.Rollback() })
	return tx
}
