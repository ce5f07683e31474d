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

type DiscussionFilter struct {
	Category string
	Search   string
	Page     repoutil.Page
}

type DiscussionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, d *types.Discussion) (*types.Discussion, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Discussion, error)
	List(ctx context.Context, tx *gorm.DB, filter DiscussionFilter) ([]*types.Discussion, int64, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	IncrementReplyCount(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type discussionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDiscussionRepo(db *gorm.DB, baseLog *logger.Logger) DiscussionRepo {
	repoLog := baseLog.With("repo", "DiscussionRepo")
	return &discussionRepo{db: db, log: repoLog}
}

func (r *discussionRepo) Create(ctx context.Context, tx *gorm.DB, d *types.Discussion) (*types.Discussion, error) {
	transaction := repoutil.Use(tx, r.db)
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(d).Error; err != nil {
		return nil, db.TranslateError(err)
	}
	return d, nil
}

func (r *discussionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Discussion, error) {
	return repoutil.GetByID[types.Discussion](ctx, repoutil.Use(tx, r.db), id)
}

func (r *discussionRepo) List(ctx context.Context, tx *gorm.DB, filter DiscussionFilter) ([]*types.Discussion, int64, error) {
	transaction := repoutil.Use(tx, r.db)
	q := transaction.WithContext(ctx).Model(&types.Discussion{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	q = repoutil.ContainsFold(q, filter.Search, "title", "content")

	var results []*types.Discussion
	total, err := repoutil.Paginate(q, filter.Page, "pinned DESC, created_at DESC", &results)
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *discussionRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	return repoutil.UpdateFields[types.Discussion](ctx, repoutil.Use(tx, r.db), id, updates)
}

func (r *discussionRepo) IncrementReplyCount(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) error {
	return repoutil.UpdateFields[types.Discussion](ctx, repoutil.Use(tx, r.db), id, map[string]any{
		"reply_count": gorm.Expr("reply_count + ?", delta),
	})
}

func (r *discussionRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return repoutil.DeleteByID[types.Discussion](ctx, repoutil.Use(tx, r.db), id)
}
