package qa

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/data/db"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

type PerformanceFilter struct {
	Status    string
	ProjectID *uuid.UUID
	Page      repoutil.Page
}

type PerformanceTestRepo interface {
	Create(ctx context.Context, tx *gorm.DB, pt *types.PerformanceTest) (*types.PerformanceTest, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.PerformanceTest, error)
	List(ctx context.Context, tx *gorm.DB, filter PerformanceFilter) ([]*types.PerformanceTest, int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type performanceTestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPerformanceTestRepo(db *gorm.DB, baseLog *logger.Logger) PerformanceTestRepo {
	repoLog := baseLog.With("repo", "PerformanceTestRepo")
	return &performanceTestRepo{db: db, log: repoLog}
}

func (r *performanceTestRepo) Create(ctx context.Context, tx *gorm.DB, pt *types.PerformanceTest) (*types.PerformanceTest, error) {
	transaction := repoutil.Use(tx, r.db)
	if pt.ID == uuid.Nil {
		pt.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(pt).Error; err != nil {
		return nil, db.TranslateError(err)
	}
	return pt, nil
}

func (r *performanceTestRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.PerformanceTest, error) {
	return repoutil.GetByID[types.PerformanceTest](ctx, repoutil.Use(tx, r.db), id)
}

func (r *performanceTestRepo) List(ctx context.Context, tx *gorm.DB, filter PerformanceFilter) ([]*types.PerformanceTest, int64, error) {
	transaction := repoutil.Use(tx, r.db)
	q := transaction.WithContext(ctx).Model(&types.PerformanceTest{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	var results []*types.PerformanceTest
	total, err := repoutil.Paginate(q, filter.Page, "created_at DESC", &results)
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *performanceTestRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return repoutil.DeleteByID[types.PerformanceTest](ctx, repoutil.Use(tx, r.db), id)
}
