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

type DeploymentFilter struct {
	Environment string
	Status      string
	ProjectID   *uuid.UUID
	Page        repoutil.Page
}

type DeploymentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, d *types.Deployment) (*types.Deployment, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Deployment, error)
	List(ctx context.Context, tx *gorm.DB, filter DeploymentFilter) ([]*types.Deployment, int64, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type deploymentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDeploymentRepo(db *gorm.DB, baseLog *logger.Logger) DeploymentRepo {
	repoLog := baseLog.With("repo", "DeploymentRepo")
	return &deploymentRepo{db: db, log: repoLog}
}

func (r *deploymentRepo) Create(ctx context.Context, tx *gorm.DB, d *types.Deployment) (*types.Deployment, error) {
	transaction := repoutil.Use(tx, r.db)
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(d).Error; err != nil {
		return nil, db.TranslateError(err)
	}
	return d, nil
}

func (r *deploymentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Deployment, error) {
	return repoutil.GetByID[types.Deployment](ctx, repoutil.Use(tx, r.db), id)
}

func (r *deploymentRepo) List(ctx context.Context, tx *gorm.DB, filter DeploymentFilter) ([]*types.Deployment, int64, error) {
	transaction := repoutil.Use(tx, r.db)
	q := transaction.WithContext(ctx).Model(&types.Deployment{})
	if filter.Environment != "" {
		q = q.Where("environment = ?", filter.Environment)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	var results []*types.Deployment
	total, err := repoutil.Paginate(q, filter.Page, "created_at DESC", &results)
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *deploymentRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	return repoutil.UpdateFields[types.Deployment](ctx, repoutil.Use(tx, r.db), id, updates)
}

func (r *deploymentRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return repoutil.DeleteByID[types.Deployment](ctx, repoutil.Use(tx, r.db), id)
}
