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

type DiscussionReplyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, reply *types.DiscussionReply) (*types.DiscussionReply, error)
	// ListByDiscussion returns replies oldest first.
	ListByDiscussion(ctx context.Context, tx *gorm.DB, discussionID uuid.UUID) ([]*types.DiscussionReply, error)
	DeleteByDiscussion(ctx context.Context, tx *gorm.DB, discussionID uuid.UUID) error
}

type discussionReplyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDiscussionReplyRepo(db *gorm.DB, baseLog *logger.Logger) DiscussionReplyRepo {
	repoLog := baseLog.With("repo", "DiscussionReplyRepo")
	return &discussionReplyRepo{db: db, log: repoLog}
}

func (r *discussionReplyRepo) Create(ctx context.Context, tx *gorm.DB, reply *types.DiscussionReply) (*types.DiscussionReply, error) {
	transaction := repoutil.Use(tx, r.db)
	if reply.ID == uuid.Nil {
		reply.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(reply).Error; err != nil {
		return nil, db.TranslateError(err)
	}
	return reply, nil
}

func (r *discussionReplyRepo) ListByDiscussion(ctx context.Context, tx *gorm.DB, discussionID uuid.UUID) ([]*types.DiscussionReply, error) {
	transaction := repoutil.Use(tx, r.db)
	var results []*types.DiscussionReply
	if err := transaction.WithContext(ctx).
		Where("discussion_id = ?", discussionID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *discussionReplyRepo) DeleteByDiscussion(ctx context.Context, tx *gorm.DB, discussionID uuid.UUID) error {
	transaction := repoutil.Use(tx, r.db)
	return transaction.WithContext(ctx).Where("discussion_id = ?", discussionID).Delete(&types.DiscussionReply{}).Error
}
