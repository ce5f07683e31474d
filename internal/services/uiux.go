package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/data/repos"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/domain/delivery"
	"github.com/yungbote/projectdesk-backend/internal/domain/qa"
	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"github.com/yungbote/projectdesk-backend/internal/realtime"
)

type UIUXTaskInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	DesignURL   *string    `json:"designUrl"`
	AssignedTo  *uuid.UUID `json:"assignedTo"`
	ProjectID   *uuid.UUID `json:"projectId"`
	DueDate     *time.Time `json:"dueDate"`
}

type UIUXTaskListQuery struct {
	Status     string
	Priority   string
	AssignedTo *uuid.UUID
	ProjectID  *uuid.UUID
	Page       repoutil.Page
}

type UIUXTaskService interface {
	List(ctx context.Context, q UIUXTaskListQuery) ([]*types.UIUXTask, repoutil.Pagination, error)
	Get(ctx context.Context, id uuid.UUID) (*types.UIUXTask, error)
	Create(ctx context.Context, createdBy uuid.UUID, in UIUXTaskInput) (*types.UIUXTask, error)
	Update(ctx context.Context, id uuid.UUID, in UIUXTaskInput) (*types.UIUXTask, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type uiuxTaskService struct {
	db       *gorm.DB
	log      *logger.Logger
	taskRepo repos.UIUXTaskRepo
	pub      realtime.Publisher
}

func NewUIUXTaskService(db *gorm.DB, log *logger.Logger, taskRepo repos.UIUXTaskRepo, pub realtime.Publisher) UIUXTaskService {
	return &uiuxTaskService{
		db:       db,
		log:      log.With("service", "UIUXTaskService"),
		taskRepo: taskRepo,
		pub:      pub,
	}
}

func (us *uiuxTaskService) List(ctx context.Context, q UIUXTaskListQuery) ([]*types.UIUXTask, repoutil.Pagination, error) {
	fe := fieldErrors{}
	fe.oneOf("status", q.Status, delivery.TaskStatuses)
	fe.oneOf("priority", q.Priority, qa.Priorities)
	if err := fe.err(); err != nil {
		return nil, repoutil.Pagination{}, err
	}
	page := q.Page.Normalize()
	list, total, err := us.taskRepo.List(ctx, nil, repos.UIUXTaskFilter{
		Status:     q.Status,
		Priority:   q.Priority,
		AssignedTo: q.AssignedTo,
		ProjectID:  q.ProjectID,
		Page:       page,
	})
	if err != nil {
		return nil, repoutil.Pagination{}, err
	}
	return list, page.Result(total), nil
}

func (us *uiuxTaskService) Get(ctx context.Context, id uuid.UUID) (*types.UIUXTask, error) {
	return us.getTask(ctx, nil, id)
}

func (us *uiuxTaskService) Create(ctx context.Context, createdBy uuid.UUID, in UIUXTaskInput) (*types.UIUXTask, error) {
	task := &types.UIUXTask{
		Status:    delivery.TaskTodo,
		Priority:  qa.PriorityMedium,
		CreatedBy: createdBy,
	}
	applyUIUXTaskInput(task, in)
	if err := validateUIUXTask(task); err != nil {
		return nil, err
	}
	if _, err := us.taskRepo.Create(ctx, nil, task); err != nil {
		return nil, err
	}
	publish(ctx, us.log, us.pub, realtime.Activity(realtime.EventUIUXTaskUpdated, task))
	return task, nil
}

func (us *uiuxTaskService) Update(ctx context.Context, id uuid.UUID, in UIUXTaskInput) (*types.UIUXTask, error) {
	var out *types.UIUXTask
	err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := us.getTask(ctx, tx, id)
		if err != nil {
			return err
		}
		next := *existing
		applyUIUXTaskInput(&next, in)
		if err := validateUIUXTask(&next); err != nil {
			return err
		}
		if err := us.taskRepo.Update(ctx, tx, id, map[string]any{
			"title":       next.Title,
			"description": next.Description,
			"status":      next.Status,
			"priority":    next.Priority,
			"design_url":  next.DesignURL,
			"assigned_to": next.AssignedTo,
			"project_id":  next.ProjectID,
			"due_date":    next.DueDate,
		}); err != nil {
			return err
		}
		out, err = us.taskRepo.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, us.log, us.pub, realtime.Activity(realtime.EventUIUXTaskUpdated, out))
	return out, nil
}

func (us *uiuxTaskService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := us.taskRepo.Delete(ctx, nil, id); err != nil {
		if errors.Is(err, apierr.ErrNotFound) {
			return apierr.NotFound("task")
		}
		return err
	}
	return nil
}

func (us *uiuxTaskService) getTask(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.UIUXTask, error) {
	t, err := us.taskRepo.GetByID(ctx, tx, id)
	if errors.Is(err, apierr.ErrNotFound) {
		return nil, apierr.NotFound("task")
	}
	return t, err
}

func applyUIUXTaskInput(t *types.UIUXTask, in UIUXTaskInput) {
	if in.Title != nil {
		t.Title = trim(*in.Title)
	}
	if in.Description != nil {
		t.Description = trim(*in.Description)
	}
	if in.Status != nil {
		t.Status = trim(*in.Status)
	}
	if in.Priority != nil {
		t.Priority = trim(*in.Priority)
	}
	if in.DesignURL != nil {
		t.DesignURL = trim(*in.DesignURL)
	}
	if in.DueDate != nil {
		if in.DueDate.IsZero() {
			t.DueDate = nil
		} else {
			d := in.DueDate.UTC()
			t.DueDate = &d
		}
	}
	t.AssignedTo = optionalID(t.AssignedTo, in.AssignedTo)
	t.ProjectID = optionalID(t.ProjectID, in.ProjectID)
}

func validateUIUXTask(t *types.UIUXTask) error {
	fe := fieldErrors{}
	fe.required("title", t.Title)
	fe.maxLen("title", t.Title, 300)
	fe.oneOf("status", t.Status, delivery.TaskStatuses)
	fe.oneOf("priority", t.Priority, qa.Priorities)
	if t.DesignURL != "" && !validHTTPURL(t.DesignURL) {
		fe.add("designUrl", "designUrl must be a valid http or https URL")
	}
	return fe.err()
}
