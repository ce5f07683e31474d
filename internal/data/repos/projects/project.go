package projects

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/data/db"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

type ListFilter struct {
	Status   string
	ClientID *uuid.UUID
	Search   string
	Page     repoutil.Page
}

type ProjectRepo interface {
	Create(ctx context.Context, tx *gorm.DB, project *types.Project) (*types.Project, error)
	GetByID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (*types.Project, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, projectIDs []uuid.UUID) ([]*types.Project, error)
	List(ctx context.Context, tx *gorm.DB, filter ListFilter) ([]*types.Project, int64, error)
	Update(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) error
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	repoLog := baseLog.With("repo", "ProjectRepo")
	return &projectRepo{db: db, log: repoLog}
}

func (pr *projectRepo) Create(ctx context.Context, tx *gorm.DB, project *types.Project) (*types.Project, error) {
	transaction := repoutil.Use(tx, pr.db)
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(project).Error; err != nil {
		return nil, db.TranslateError(err)
	}
	return project, nil
}

func (pr *projectRepo) GetByID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (*types.Project, error) {
	return repoutil.GetByID[types.Project](ctx, repoutil.Use(tx, pr.db), projectID)
}

func (pr *projectRepo) GetByIDs(ctx context.Context, tx *gorm.DB, projectIDs []uuid.UUID) ([]*types.Project, error) {
	transaction := repoutil.Use(tx, pr.db)
	var results []*types.Project
	if len(projectIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).Where("id IN ?", projectIDs).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *projectRepo) List(ctx context.Context, tx *gorm.DB, filter ListFilter) ([]*types.Project, int64, error) {
	transaction := repoutil.Use(tx, pr.db)
	q := transaction.WithContext(ctx).Model(&types.Project{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ClientID != nil {
		q = q.Where("client_id = ?", *filter.ClientID)
	}
	q = repoutil.ContainsFold(q, filter.Search, "name", "description")

	var results []*types.Project
	total, err := repoutil.Paginate(q, filter.Page, "created_at DESC", &results)
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (pr *projectRepo) Update(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, updates map[string]any) error {
	return repoutil.UpdateFields[types.Project](ctx, repoutil.Use(tx, pr.db), projectID, updates)
}

func (pr *projectRepo) Delete(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) error {
	return repoutil.DeleteByID[types.Project](ctx, repoutil.Use(tx, pr.db), projectID)
}
