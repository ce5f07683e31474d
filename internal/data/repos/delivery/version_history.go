package delivery

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/data/db"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

type VersionFilter struct {
	ReleaseType string
	Page        repoutil.Page
}

type VersionHistoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, v *types.VersionHistory) (*types.VersionHistory, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.VersionHistory, error)
	Latest(ctx context.Context, tx *gorm.DB) (*types.VersionHistory, error)
	List(ctx context.Context, tx *gorm.DB, filter VersionFilter) ([]*types.VersionHistory, int64, error)
	VersionExists(ctx context.Context, tx *gorm.DB, version string, excludeID *uuid.UUID) (bool, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

const newestFirst = "release_date DESC, created_at DESC"

type versionHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVersionHistoryRepo(db *gorm.DB, baseLog *logger.Logger) VersionHistoryRepo {
	repoLog := baseLog.With("repo", "VersionHistoryRepo")
	return &versionHistoryRepo{db: db, log: repoLog}
}

func (r *versionHistoryRepo) Create(ctx context.Context, tx *gorm.DB, v *types.VersionHistory) (*types.VersionHistory, error) {
	transaction := repoutil.Use(tx, r.db)
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(v).Error; err != nil {
		return nil, db.TranslateError(err)
	}
	return v, nil
}

func (r *versionHistoryRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.VersionHistory, error) {
	return repoutil.GetByID[types.VersionHistory](ctx, repoutil.Use(tx, r.db), id)
}

func (r *versionHistoryRepo) Latest(ctx context.Context, tx *gorm.DB) (*types.VersionHistory, error) {
	transaction := repoutil.Use(tx, r.db)
	var v types.VersionHistory
	if err := transaction.WithContext(ctx).Order(newestFirst).Take(&v).Error; err != nil {
		return nil, db.TranslateError(err)
	}
	return &v, nil
}

func (r *versionHistoryRepo) List(ctx context.Context, tx *gorm.DB, filter VersionFilter) ([]*types.VersionHistory, int64, error) {
	transaction := repoutil.Use(tx, r.db)
	q := transaction.WithContext(ctx).Model(&types.VersionHistory{})
	if filter.ReleaseType != "" {
		q = q.Where("release_type = ?", filter.ReleaseType)
	}
	var results []*types.VersionHistory
	total, err := repoutil.Paginate(q, filter.Page, newestFirst, &results)
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *versionHistoryRepo) VersionExists(ctx context.Context, tx *gorm.DB, version string, excludeID *uuid.UUID) (bool, error) {
	transaction := repoutil.Use(tx, r.db)
	q := transaction.WithContext(ctx).Model(&types.VersionHistory{}).Where("LOWER(version) = LOWER(?)", version)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *versionHistoryRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	return repoutil.UpdateFields[types.VersionHistory](ctx, repoutil.Use(tx, r.db), id, updates)
}

func (r *versionHistoryRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return repoutil.DeleteByID[types.VersionHistory](ctx, repoutil.Use(tx, r.db), id)
}
