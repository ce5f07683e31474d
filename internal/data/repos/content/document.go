package content

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/data/db"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

type DocumentFilter struct {
	Category  string
	ProjectID *uuid.UUID
	Search    string
	Page      repoutil.Page
}

type DocumentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, doc *types.Document) (*types.Document, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Document, error)
	List(ctx context.Context, tx *gorm.DB, filter DocumentFilter) ([]*types.Document, int64, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	repoLog := baseLog.With("repo", "DocumentRepo")
	return &documentRepo{db: db, log: repoLog}
}

func (r *documentRepo) Create(ctx context.Context, tx *gorm.DB, doc *types.Document) (*types.Document, error) {
	transaction := repoutil.Use(tx, r.db)
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, db.TranslateError(err)
	}
	return doc, nil
}

func (r *documentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Document, error) {
	return repoutil.GetByID[types.Document](ctx, repoutil.Use(tx, r.db), id)
}

func (r *documentRepo) List(ctx context.Context, tx *gorm.DB, filter DocumentFilter) ([]*types.Document, int64, error) {
	transaction := repoutil.Use(tx, r.db)
	q := transaction.WithContext(ctx).Model(&types.Document{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	q = repoutil.ContainsFold(q, filter.Search, "title", "description", "file_name")

	var results []*types.Document
	total, err := repoutil.Paginate(q, filter.Page, "created_at DESC", &results)
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *documentRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	return repoutil.UpdateFields[types.Document](ctx, repoutil.Use(tx, r.db), id, updates)
}

func (r *documentRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return repoutil.DeleteByID[types.Document](ctx, repoutil.Use(tx, r.db), id)
}
