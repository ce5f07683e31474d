package clients

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/data/db"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

const (
	SortNewest   = "newest"
	SortOldest   = "oldest"
	SortNameAsc  = "name-asc"
	SortNameDesc = "name-desc"
)

var sortOrders = map[string]string{
	SortNewest:   "created_at DESC",
	SortOldest:   "created_at ASC",
	SortNameAsc:  "LOWER(name) ASC",
	SortNameDesc: "LOWER(name) DESC",
}

// ValidSort reports whether s names a supported ordering.
func ValidSort(s string) bool {
	_, ok := sortOrders[s]
	return ok
}

var searchColumns = []string{"name", "email", "company", "contact"}

type ListFilter struct {
	Status string
	Search string
	Sort   string
	Page   repoutil.Page
}

type ClientRepo interface {
	Create(ctx context.Context, tx *gorm.DB, client *types.Client) (*types.Client, error)
	GetByID(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) (*types.Client, error)
	FindDuplicate(ctx context.Context, tx *gorm.DB, email, name string, excludeID *uuid.UUID) (*types.Client, error)
	List(ctx context.Context, tx *gorm.DB, filter ListFilter) ([]*types.Client, int64, error)
	Search(ctx context.Context, tx *gorm.DB, term string, limit int) ([]*types.Client, error)
	Update(ctx context.Context, tx *gorm.DB, clientID uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) error
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type clientRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClientRepo(db *gorm.DB, baseLog *logger.Logger) ClientRepo {
	repoLog := baseLog.With("repo", "ClientRepo")
	return &clientRepo{db: db, log: repoLog}
}

func (cr *clientRepo) Create(ctx context.Context, tx *gorm.DB, client *types.Client) (*types.Client, error) {
	transaction := repoutil.Use(tx, cr.db)
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(client).Error; err != nil {
		return nil, db.TranslateError(err)
	}
	return client, nil
}

func (cr *clientRepo) GetByID(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) (*types.Client, error) {
	return repoutil.GetByID[types.Client](ctx, repoutil.Use(tx, cr.db), clientID)
}

// FindDuplicate returns a client whose email or name matches case-insensitively, or nil.
func (cr *clientRepo) FindDuplicate(ctx context.Context, tx *gorm.DB, email, name string, excludeID *uuid.UUID) (*types.Client, error) {
	transaction := repoutil.Use(tx, cr.db)
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.ToLower(strings.TrimSpace(name))
	if email == "" && name == "" {
		return nil, nil
	}

	q := transaction.WithContext(ctx).Model(&types.Client{})
	switch {
	case email != "" && name != "":
		q = q.Where("(LOWER(email) = ? OR LOWER(name) = ?)", email, name)
	case email != "":
		q = q.Where("LOWER(email) = ?", email)
	default:
		q = q.Where("LOWER(name) = ?", name)
	}
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var found []*types.Client
	if err := q.Limit(1).Find(&found).Error; err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

func (cr *clientRepo) List(ctx context.Context, tx *gorm.DB, filter ListFilter) ([]*types.Client, int64, error) {
	transaction := repoutil.Use(tx, cr.db)
	q := transaction.WithContext(ctx).Model(&types.Client{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	q = repoutil.ContainsFold(q, filter.Search, searchColumns...)

	order, ok := sortOrders[filter.Sort]
	if !ok {
		order = sortOrders[SortNewest]
	}
	var results []*types.Client
	total, err := repoutil.Paginate(q, filter.Page, order+", id ASC", &results)
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (cr *clientRepo) Search(ctx context.Context, tx *gorm.DB, term string, limit int) ([]*types.Client, error) {
	transaction := repoutil.Use(tx, cr.db)
	q := repoutil.ContainsFold(transaction.WithContext(ctx).Model(&types.Client{}), term, searchColumns...)
	var results []*types.Client
	if err := q.Order("LOWER(name) ASC").Limit(limit).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *clientRepo) Update(ctx context.Context, tx *gorm.DB, clientID uuid.UUID, updates map[string]any) error {
	return repoutil.UpdateFields[types.Client](ctx, repoutil.Use(tx, cr.db), clientID, updates)
}

func (cr *clientRepo) Delete(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) error {
	return repoutil.DeleteByID[types.Client](ctx, repoutil.Use(tx, cr.db), clientID)
}

func (cr *clientRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := repoutil.Use(tx, cr.db)
	var n int64
	err := transaction.WithContext(ctx).Model(&types.Client{}).Count(&n).Error
	return n, err
}
