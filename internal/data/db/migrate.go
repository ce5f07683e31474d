package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

type MigrateOptions struct {
	SeedSampleData bool
}

// Step is a named, run-once migration. Disabled steps are skipped without being recorded.
type Step struct {
	ID      string
	Enabled func(db *gorm.DB, opts MigrateOptions) bool
	Run     func(ctx context.Context, tx *gorm.DB) error
}

func Steps() []Step {
	return []Step{
		{ID: "001_indexes", Run: createSearchIndexes},
		{
			ID:      "002_seed_content",
			Enabled: func(_ *gorm.DB, opts MigrateOptions) bool { return opts.SeedSampleData },
			Run:     seedContent,
		},
	}
}

// Models lists every table the runner owns, bookkeeping included.
func Models() []any {
	return append(types.AllModels(), &types.SchemaMigration{})
}

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

func Migrate(ctx context.Context, db *gorm.DB, log *logger.Logger, opts MigrateOptions) error {
	return MigrateSteps(ctx, db, log, opts, Steps())
}

func MigrateSteps(ctx context.Context, db *gorm.DB, log *logger.Logger, opts MigrateOptions, steps []Step) error {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("service", "Migrator")

	if err := AutoMigrateAll(db.WithContext(ctx)); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, step := range steps {
		if step.Enabled != nil && !step.Enabled(db, opts) {
			log.Debug("Migration step disabled", "step", step.ID)
			continue
		}
		applied, err := stepApplied(ctx, db, step.ID)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := step.Run(ctx, tx); err != nil {
				return err
			}
			return tx.Create(&types.SchemaMigration{ID: step.ID, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %s: %w", step.ID, err)
		}
		log.Info("Migration step applied", "step", step.ID)
	}
	return nil
}

func stepApplied(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	var row types.SchemaMigration
	err := db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check migration %s: %w", id, err)
	}
	return true, nil
}

func createSearchIndexes(_ context.Context, tx *gorm.DB) error {
	if !IsPostgres(tx) {
		return nil
	}
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_client_lower_email ON client (lower(email));`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_client_lower_name ON client (lower(name));`,
		`CREATE INDEX IF NOT EXISTS idx_client_lower_company ON client (lower(company));`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_user_lower_email ON "user" (lower(email)) WHERE deleted_at IS NULL;`,
		`CREATE INDEX IF NOT EXISTS idx_test_case_lower_title ON test_case (lower(title)) WHERE deleted_at IS NULL;`,
		`CREATE INDEX IF NOT EXISTS idx_test_result_case_executed ON test_result (test_case_id, executed_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_bug_lower_title ON bug (lower(title)) WHERE deleted_at IS NULL;`,
		`CREATE INDEX IF NOT EXISTS idx_discussion_pinned_created ON discussion (pinned DESC, created_at DESC) WHERE deleted_at IS NULL;`,
	}
	for _, s := range stmts {
		if err := tx.Exec(s).Error; err != nil {
			return fmt.Errorf("exec %q: %w", s, err)
		}
	}
	return nil
}
