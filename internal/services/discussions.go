package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/data/repos"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/domain/content"
	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"github.com/yungbote/projectdesk-backend/internal/realtime"
)

const defaultDiscussionCategory = "general"

type DiscussionInput struct {
	Title    *string  `json:"title"`
	Content  *string  `json:"content"`
	Category *string  `json:"category"`
	Tags     []string `json:"tags"`
	Pinned   *bool    `json:"pinned"`
}

type DiscussionListQuery struct {
	Category string
	Search   string
	Page     repoutil.Page
}

// DiscussionThread is a discussion with its replies, oldest first.
type DiscussionThread struct {
	*types.Discussion
	Replies []*types.DiscussionReply `json:"replies"`
}

type DiscussionService interface {
	List(ctx context.Context, q DiscussionListQuery) ([]*types.Discussion, repoutil.Pagination, error)
	Get(ctx context.Context, id uuid.UUID) (*DiscussionThread, error)
	Create(ctx context.Context, authorID uuid.UUID, in DiscussionInput) (*types.Discussion, error)
	Update(ctx context.Context, callerID, id uuid.UUID, in DiscussionInput) (*types.Discussion, error)
	Delete(ctx context.Context, callerID, id uuid.UUID) error
	Replies(ctx context.Context, id uuid.UUID) ([]*types.DiscussionReply, error)
	// Reply stores a reply and bumps the parent's replyCount in one transaction.
	Reply(ctx context.Context, authorID, id uuid.UUID, body string) (*types.DiscussionReply, error)
}

type discussionService struct {
	db             *gorm.DB
	log            *logger.Logger
	discussionRepo repos.DiscussionRepo
	replyRepo      repos.DiscussionReplyRepo
	userRepo       repos.UserRepo
	pub            realtime.Publisher
}

func NewDiscussionService(
	db *gorm.DB,
	log *logger.Logger,
	discussionRepo repos.DiscussionRepo,
	replyRepo repos.DiscussionReplyRepo,
	userRepo repos.UserRepo,
	pub realtime.Publisher,
) DiscussionService {
	return &discussionService{
		db:             db,
		log:            log.With("service", "DiscussionService"),
		discussionRepo: discussionRepo,
		replyRepo:      replyRepo,
		userRepo:       userRepo,
		pub:            pub,
	}
}

func (ds *discussionService) List(ctx context.Context, q DiscussionListQuery) ([]*types.Discussion, repoutil.Pagination, error) {
	page := q.Page.Normalize()
	list, total, err := ds.discussionRepo.List(ctx, nil, repos.DiscussionFilter{
		Category: trim(q.Category),
		Search:   trim(q.Search),
		Page:     page,
	})
	if err != nil {
		return nil, repoutil.Pagination{}, err
	}
	return list, page.Result(total), nil
}

func (ds *discussionService) Get(ctx context.Context, id uuid.UUID) (*DiscussionThread, error) {
	d, err := ds.getDiscussion(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	replies, err := ds.replyRepo.ListByDiscussion(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return &DiscussionThread{Discussion: d, Replies: replies}, nil
}

func (ds *discussionService) Create(ctx context.Context, authorID uuid.UUID, in DiscussionInput) (*types.Discussion, error) {
	d := &types.Discussion{
		Category: defaultDiscussionCategory,
		Tags:     datatypes.JSONSlice[string]{},
		AuthorID: &authorID,
	}
	applyDiscussionInput(d, in)
	if err := validateDiscussion(d); err != nil {
		return nil, err
	}
	err := ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		author, err := ds.userRepo.GetByID(ctx, tx, authorID)
		if err != nil && !errors.Is(err, apierr.ErrNotFound) {
			return err
		}
		if author != nil {
			d.AuthorName = author.Name
		}
		_, err = ds.discussionRepo.Create(ctx, tx, d)
		return err
	})
	if err != nil {
		return nil, err
	}
	ds.log.Info("Discussion created", "discussion_id", d.ID)
	publish(ctx, ds.log, ds.pub, realtime.Activity(realtime.EventDiscussionCreated, d))
	return d, nil
}

func (ds *discussionService) Update(ctx context.Context, callerID, id uuid.UUID, in DiscussionInput) (*types.Discussion, error) {
	var out *types.Discussion
	err := ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := ds.getDiscussion(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := ds.authorize(ctx, tx, callerID, existing); err != nil {
			return err
		}
		next := *existing
		applyDiscussionInput(&next, in)
		if err := validateDiscussion(&next); err != nil {
			return err
		}
		if err := ds.discussionRepo.Update(ctx, tx, id, map[string]any{
			"title":    next.Title,
			"content":  next.Content,
			"excerpt":  next.Excerpt,
			"category": next.Category,
			"tags":     next.Tags,
			"pinned":   next.Pinned,
		}); err != nil {
			return err
		}
		out, err = ds.discussionRepo.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ds *discussionService) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	err := ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := ds.getDiscussion(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := ds.authorize(ctx, tx, callerID, existing); err != nil {
			return err
		}
		if err := ds.replyRepo.DeleteByDiscussion(ctx, tx, id); err != nil {
			return err
		}
		return ds.discussionRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	ds.log.Info("Discussion deleted", "discussion_id", id)
	return nil
}

func (ds *discussionService) Replies(ctx context.Context, id uuid.UUID) ([]*types.DiscussionReply, error) {
	if _, err := ds.getDiscussion(ctx, nil, id); err != nil {
		return nil, err
	}
	return ds.replyRepo.ListByDiscussion(ctx, nil, id)
}

func (ds *discussionService) Reply(ctx context.Context, authorID, id uuid.UUID, body string) (*types.DiscussionReply, error) {
	body = trim(body)
	fe := fieldErrors{}
	fe.required("content", body)
	fe.maxLen("content", body, 10000)
	if err := fe.err(); err != nil {
		return nil, err
	}

	reply := &types.DiscussionReply{DiscussionID: id, AuthorID: &authorID, Content: body}
	err := ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ds.getDiscussion(ctx, tx, id); err != nil {
			return err
		}
		author, err := ds.userRepo.GetByID(ctx, tx, authorID)
		if err != nil && !errors.Is(err, apierr.ErrNotFound) {
			return err
		}
		if author != nil {
			reply.AuthorName = author.Name
		}
		if _, err := ds.replyRepo.Create(ctx, tx, reply); err != nil {
			return err
		}
		return ds.discussionRepo.IncrementReplyCount(ctx, tx, id, 1)
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, ds.log, ds.pub, realtime.Activity(realtime.EventDiscussionReplied, reply))
	return reply, nil
}

// authorize allows the author, or an admin, to modify a discussion.
func (ds *discussionService) authorize(ctx context.Context, tx *gorm.DB, callerID uuid.UUID, d *types.Discussion) error {
	if d.AuthorID != nil && *d.AuthorID == callerID {
		return nil
	}
	caller, err := ds.userRepo.GetByID(ctx, tx, callerID)
	if err != nil && !errors.Is(err, apierr.ErrNotFound) {
		return err
	}
	if caller != nil && caller.Role == types.RoleAdmin {
		return nil
	}
	return apierr.Forbidden("not_author", "only the author can modify this discussion")
}

func (ds *discussionService) getDiscussion(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Discussion, error) {
	d, err := ds.discussionRepo.GetByID(ctx, tx, id)
	if errors.Is(err, apierr.ErrNotFound) {
		return nil, apierr.NotFound("discussion")
	}
	return d, err
}

func applyDiscussionInput(d *types.Discussion, in DiscussionInput) {
	if in.Title != nil {
		d.Title = trim(*in.Title)
	}
	if in.Content != nil {
		d.Content = trim(*in.Content)
	}
	if in.Category != nil {
		d.Category = trim(*in.Category)
		if d.Category == "" {
			d.Category = defaultDiscussionCategory
		}
	}
	if in.Tags != nil {
		d.Tags = cleanTags(in.Tags)
	}
	if in.Pinned != nil {
		d.Pinned = *in.Pinned
	}
	d.Excerpt = content.Excerpt(d.Content)
}

func validateDiscussion(d *types.Discussion) error {
	fe := fieldErrors{}
	fe.required("title", d.Title)
	fe.maxLen("title", d.Title, 300)
	fe.required("content", d.Content)
	fe.maxLen("category", d.Category, 60)
	return fe.err()
}
