package user

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/data/db"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

type ListFilter struct {
	Search string
	Role   string
	Status string
	Page   repoutil.Page
}

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error)
	GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	List(ctx context.Context, tx *gorm.DB, filter ListFilter) ([]*types.User, int64, error)
	UpdateLastLogin(ctx context.Context, tx *gorm.DB, userID uuid.UUID, at time.Time) error
	UpdatePassword(ctx context.Context, tx *gorm.DB, userID uuid.UUID, hash string) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) error
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (ur *userRepo) Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error) {
	transaction := repoutil.Use(tx, ur.db)
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = normalizeEmail(user.Email)
	if err := transaction.WithContext(ctx).Create(user).Error; err != nil {
		return nil, db.TranslateError(err)
	}
	return user, nil
}

func (ur *userRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
	return repoutil.GetByID[types.User](ctx, repoutil.Use(tx, ur.db), userID)
}

func (ur *userRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error) {
	transaction := repoutil.Use(tx, ur.db)
	var u types.User
	if err := transaction.WithContext(ctx).
		Where("LOWER(email) = ?", normalizeEmail(email)).
		Take(&u).Error; err != nil {
		return nil, db.TranslateError(err)
	}
	return &u, nil
}

func (ur *userRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	transaction := repoutil.Use(tx, ur.db)
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.User{}).
		Where("LOWER(email) = ?", normalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ur *userRepo) List(ctx context.Context, tx *gorm.DB, filter ListFilter) ([]*types.User, int64, error) {
	transaction := repoutil.Use(tx, ur.db)
	q := transaction.WithContext(ctx).Model(&types.User{})
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	q = repoutil.ContainsFold(q, filter.Search, "name", "email", "department")

	var results []*types.User
	total, err := repoutil.Paginate(q, filter.Page, "created_at DESC", &results)
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (ur *userRepo) UpdateLastLogin(ctx context.Context, tx *gorm.DB, userID uuid.UUID, at time.Time) error {
	return repoutil.UpdateFields[types.User](ctx, repoutil.Use(tx, ur.db), userID, map[string]any{"last_login": at})
}

func (ur *userRepo) UpdatePassword(ctx context.Context, tx *gorm.DB, userID uuid.UUID, hash string) error {
	return repoutil.UpdateFields[types.User](ctx, repoutil.Use(tx, ur.db), userID, map[string]any{"password": hash})
}

func (ur *userRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) error {
	return repoutil.UpdateFields[types.User](ctx, repoutil.Use(tx, ur.db), userID, map[string]any{"status": status})
}

func (ur *userRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := repoutil.Use(tx, ur.db)
	var n int64
	err := transaction.WithContext(ctx).Model(&types.User{}).Count(&n).Error
	return n, err
}
