package qa

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/data/db"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

type TestResultRepo interface {
	Create(ctx context.Context, tx *gorm.DB, result *types.TestResult) (*types.TestResult, error)
	// ListByTestCase returns newest first; limit <= 0 means all.
	ListByTestCase(ctx context.Context, tx *gorm.DB, testCaseID uuid.UUID, limit int) ([]*types.TestResult, error)
	DeleteByTestCase(ctx context.Context, tx *gorm.DB, testCaseID uuid.UUID) error
	CountSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error)
	Recent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.TestResult, error)
}

type testResultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTestResultRepo(db *gorm.DB, baseLog *logger.Logger) TestResultRepo {
	repoLog := baseLog.With("repo", "TestResultRepo")
	return &testResultRepo{db: db, log: repoLog}
}

func (r *testResultRepo) Create(ctx context.Context, tx *gorm.DB, result *types.TestResult) (*types.TestResult, error) {
	transaction := repoutil.Use(tx, r.db)
	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(result).Error; err != nil {
		return nil, db.TranslateError(err)
	}
	return result, nil
}

func (r *testResultRepo) ListByTestCase(ctx context.Context, tx *gorm.DB, testCaseID uuid.UUID, limit int) ([]*types.TestResult, error) {
	transaction := repoutil.Use(tx, r.db)
	q := transaction.WithContext(ctx).
		Where("test_case_id = ?", testCaseID).
		Order("executed_at DESC, created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var results []*types.TestResult
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *testResultRepo) DeleteByTestCase(ctx context.Context, tx *gorm.DB, testCaseID uuid.UUID) error {
	transaction := repoutil.Use(tx, r.db)
	return transaction.WithContext(ctx).Where("test_case_id = ?", testCaseID).Delete(&types.TestResult{}).Error
}

func (r *testResultRepo) CountSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error) {
	transaction := repoutil.Use(tx, r.db)
	var n int64
	err := transaction.WithContext(ctx).Model(&types.TestResult{}).Where("executed_at >= ?", since).Count(&n).Error
	return n, err
}

func (r *testResultRepo) Recent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.TestResult, error) {
	transaction := repoutil.Use(tx, r.db)
	var results []*types.TestResult
	if err := transaction.WithContext(ctx).
		Order("executed_at DESC, created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
