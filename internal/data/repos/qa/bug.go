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

type BugFilter struct {
	Status     string
	Priority   string
	Severity   string
	ProjectID  *uuid.UUID
	AssignedTo *uuid.UUID
	Search     string
	Page       repoutil.Page
}

type BugRepo interface {
	Create(ctx context.Context, tx *gorm.DB, bug *types.Bug) (*types.Bug, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Bug, error)
	List(ctx context.Context, tx *gorm.DB, filter BugFilter) ([]*types.Bug, int64, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	CountByStatus(ctx context.Context, tx *gorm.DB) (map[string]int64, error)
	CountBySeverity(ctx context.Context, tx *gorm.DB) (map[string]int64, error)
	CountOpen(ctx context.Context, tx *gorm.DB) (int64, error)
	CountByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (int64, error)
}

// OpenStatuses are the statuses that still need work.
var OpenStatuses = []string{types.BugStatusOpen, types.BugStatusInProgress, types.BugStatusReopened}

type bugRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBugRepo(db *gorm.DB, baseLog *logger.Logger) BugRepo {
	repoLog := baseLog.With("repo", "BugRepo")
	return &bugRepo{db: db, log: repoLog}
}

func (r *bugRepo) Create(ctx context.Context, tx *gorm.DB, bug *types.Bug) (*types.Bug, error) {
	transaction := repoutil.Use(tx, r.db)
	if bug.ID == uuid.Nil {
		bug.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(bug).Error; err != nil {
		return nil, db.TranslateError(err)
	}
	return bug, nil
}

func (r *bugRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Bug, error) {
	return repoutil.GetByID[types.Bug](ctx, repoutil.Use(tx, r.db), id)
}

func (r *bugRepo) List(ctx context.Context, tx *gorm.DB, filter BugFilter) ([]*types.Bug, int64, error) {
	transaction := repoutil.Use(tx, r.db)
	q := transaction.WithContext(ctx).Model(&types.Bug{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.Severity != "" {
		q = q.Where("severity = ?", filter.Severity)
	}
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.AssignedTo != nil {
		q = q.Where("assigned_to = ?", *filter.AssignedTo)
	}
	q = repoutil.ContainsFold(q, filter.Search, "title", "description")

	var results []*types.Bug
	total, err := repoutil.Paginate(q, filter.Page, "created_at DESC", &results)
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *bugRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	return repoutil.UpdateFields[types.Bug](ctx, repoutil.Use(tx, r.db), id, updates)
}

func (r *bugRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return repoutil.DeleteByID[types.Bug](ctx, repoutil.Use(tx, r.db), id)
}

func (r *bugRepo) CountByStatus(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	return repoutil.CountBy(ctx, repoutil.Use(tx, r.db), &types.Bug{}, "status")
}

func (r *bugRepo) CountBySeverity(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	return repoutil.CountBy(ctx, repoutil.Use(tx, r.db), &types.Bug{}, "severity")
}

func (r *bugRepo) CountOpen(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := repoutil.Use(tx, r.db)
	var n int64
	err := transaction.WithContext(ctx).Model(&types.Bug{}).Where("status IN ?", OpenStatuses).Count(&n).Error
	return n, err
}

func (r *bugRepo) CountByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (int64, error) {
	transaction := repoutil.Use(tx, r.db)
	var n int64
	err := transaction.WithContext(ctx).Model(&types.Bug{}).Where("project_id = ?", projectID).Count(&n).Error
	return n, err
}
