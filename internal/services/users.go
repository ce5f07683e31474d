package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/data/repos"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/domain/user"
	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

type UserListQuery struct {
	Search string
	Role   string
	Status string
	Page   repoutil.Page
}

type UserService interface {
	List(ctx context.Context, q UserListQuery) ([]*types.User, repoutil.Pagination, error)
	Get(ctx context.Context, id uuid.UUID) (*types.User, error)
	// Role returns the stored role of an active user; used for authorization checks.
	Role(ctx context.Context, id uuid.UUID) (string, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) (*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{db: db, log: log.With("service", "UserService"), userRepo: userRepo}
}

func (us *userService) List(ctx context.Context, q UserListQuery) ([]*types.User, repoutil.Pagination, error) {
	fe := fieldErrors{}
	fe.oneOf("role", q.Role, user.Roles)
	fe.oneOf("status", q.Status, user.Statuses)
	if err := fe.err(); err != nil {
		return nil, repoutil.Pagination{}, err
	}
	page := q.Page.Normalize()
	users, total, err := us.userRepo.List(ctx, nil, repos.UserFilter{
		Search: trim(q.Search),
		Role:   q.Role,
		Status: q.Status,
		Page:   page,
	})
	if err != nil {
		return nil, repoutil.Pagination{}, err
	}
	return users, page.Result(total), nil
}

func (us *userService) Get(ctx context.Context, id uuid.UUID) (*types.User, error) {
	u, err := us.userRepo.GetByID(ctx, nil, id)
	if errors.Is(err, apierr.ErrNotFound) {
		return nil, apierr.NotFound("user")
	}
	return u, err
}

func (us *userService) Role(ctx context.Context, id uuid.UUID) (string, error) {
	u, err := us.userRepo.GetByID(ctx, nil, id)
	if errors.Is(err, apierr.ErrNotFound) {
		return "", apierr.Unauthorized("invalid_token", "user no longer exists")
	}
	if err != nil {
		return "", err
	}
	if !u.IsActive() {
		return "", errAccountInactive
	}
	return u.Role, nil
}

func (us *userService) SetStatus(ctx context.Context, id uuid.UUID, status string) (*types.User, error) {
	fe := fieldErrors{}
	fe.required("status", status)
	fe.oneOf("status", status, user.Statuses)
	if err := fe.err(); err != nil {
		return nil, err
	}
	var out *types.User
	err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := us.userRepo.UpdateStatus(ctx, tx, id, status); err != nil {
			if errors.Is(err, apierr.ErrNotFound) {
				return apierr.NotFound("user")
			}
			return err
		}
		u, err := us.userRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	us.log.Info("User status changed", "user_id", id, "status", status)
	return out, nil
}
