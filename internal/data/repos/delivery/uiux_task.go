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

type UIUXTaskFilter struct {
	Status     string
	Priority   string
	AssignedTo *uuid.UUID
	ProjectID  *uuid.UUID
	Page       repoutil.Page
}

type UIUXTaskRepo interface {
	Create(ctx context.Context, tx *gorm.DB, task *types.UIUXTask) (*types.UIUXTask, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.UIUXTask, error)
	List(ctx context.Context, tx *gorm.DB, filter UIUXTaskFilter) ([]*types.UIUXTask, int64, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type uiuxTaskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUIUXTaskRepo(db *gorm.DB, baseLog *logger.Logger) UIUXTaskRepo {
	repoLog := baseLog.With("repo", "UIUXTaskRepo")
	return &uiuxTaskRepo{db: db, log: repoLog}
}

func (r *uiuxTaskRepo) Create(ctx context.Context, tx *gorm.DB, task *types.UIUXTask) (*types.UIUXTask, error) {
	transaction := repoutil.Use(tx, r.db)
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(task).Error; err != nil {
		return nil, db.TranslateError(err)
	}
	return task, nil
}

func (r *uiuxTaskRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.UIUXTask, error) {
	return repoutil.GetByID[types.UIUXTask](ctx, repoutil.Use(tx, r.db), id)
}

func (r *uiuxTaskRepo) List(ctx context.Context, tx *gorm.DB, filter UIUXTaskFilter) ([]*types.UIUXTask, int64, error) {
	transaction := repoutil.Use(tx, r.db)
	q := transaction.WithContext(ctx).Model(&types.UIUXTask{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.AssignedTo != nil {
		q = q.Where("assigned_to = ?", *filter.AssignedTo)
	}
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	var results []*types.UIUXTask
	total, err := repoutil.Paginate(q, filter.Page, "created_at DESC", &results)
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *uiuxTaskRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	return repoutil.UpdateFields[types.UIUXTask](ctx, repoutil.Use(tx, r.db), id, updates)
}

func (r *uiuxTaskRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return repoutil.DeleteByID[types.UIUXTask](ctx, repoutil.Use(tx, r.db), id)
}
