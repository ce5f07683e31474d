package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/data/repos"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/domain/projects"
	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"github.com/yungbote/projectdesk-backend/internal/realtime"
)

type ProjectInput struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	ClientID    *uuid.UUID `json:"clientId"`
}

type ProjectListQuery struct {
	Status   string
	ClientID *uuid.UUID
	Search   string
	Page     repoutil.Page
}

// ProjectDetail is a project with its QA counters.
type ProjectDetail struct {
	*types.Project
	TestCaseCount int64 `json:"testCaseCount"`
	BugCount      int64 `json:"bugCount"`
}

type ProjectService interface {
	List(ctx context.Context, q ProjectListQuery) ([]*types.Project, repoutil.Pagination, error)
	Get(ctx context.Context, id uuid.UUID) (*ProjectDetail, error)
	Create(ctx context.Context, ownerID uuid.UUID, in ProjectInput) (*types.Project, error)
	Update(ctx context.Context, id uuid.UUID, in ProjectInput) (*types.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type projectService struct {
	db           *gorm.DB
	log          *logger.Logger
	projectRepo  repos.ProjectRepo
	clientRepo   repos.ClientRepo
	testCaseRepo repos.TestCaseRepo
	bugRepo      repos.BugRepo
	pub          realtime.Publisher
}

func NewProjectService(
	db *gorm.DB,
	log *logger.Logger,
	projectRepo repos.ProjectRepo,
	clientRepo repos.ClientRepo,
	testCaseRepo repos.TestCaseRepo,
	bugRepo repos.BugRepo,
	pub realtime.Publisher,
) ProjectService {
	return &projectService{
		db:           db,
		log:          log.With("service", "ProjectService"),
		projectRepo:  projectRepo,
		clientRepo:   clientRepo,
		testCaseRepo: testCaseRepo,
		bugRepo:      bugRepo,
		pub:          pub,
	}
}

func (ps *projectService) List(ctx context.Context, q ProjectListQuery) ([]*types.Project, repoutil.Pagination, error) {
	fe := fieldErrors{}
	fe.oneOf("status", q.Status, projects.Statuses)
	if err := fe.err(); err != nil {
		return nil, repoutil.Pagination{}, err
	}
	page := q.Page.Normalize()
	list, total, err := ps.projectRepo.List(ctx, nil, repos.ProjectFilter{
		Status:   q.Status,
		ClientID: q.ClientID,
		Search:   trim(q.Search),
		Page:     page,
	})
	if err != nil {
		return nil, repoutil.Pagination{}, err
	}
	return list, page.Result(total), nil
}

func (ps *projectService) Get(ctx context.Context, id uuid.UUID) (*ProjectDetail, error) {
	p, err := ps.projectRepo.GetByID(ctx, nil, id)
	if errors.Is(err, apierr.ErrNotFound) {
		return nil, apierr.NotFound("project")
	}
	if err != nil {
		return nil, err
	}
	tcCount, err := ps.testCaseRepo.CountByProject(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	bugCount, err := ps.bugRepo.CountByProject(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return &ProjectDetail{Project: p, TestCaseCount: tcCount, BugCount: bugCount}, nil
}

func (ps *projectService) Create(ctx context.Context, ownerID uuid.UUID, in ProjectInput) (*types.Project, error) {
	p := &types.Project{Status: projects.StatusPlanning, OwnerID: ownerID}
	applyProjectInput(p, in)
	if err := validateProject(p); err != nil {
		return nil, err
	}
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ps.checkClient(ctx, tx, p.ClientID); err != nil {
			return err
		}
		_, err := ps.projectRepo.Create(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	ps.log.Info("Project created", "project_id", p.ID)
	publish(ctx, ps.log, ps.pub, realtime.Activity(realtime.EventProjectCreated, p))
	return p, nil
}

func (ps *projectService) Update(ctx context.Context, id uuid.UUID, in ProjectInput) (*types.Project, error) {
	var out *types.Project
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := ps.projectRepo.GetByID(ctx, tx, id)
		if errors.Is(err, apierr.ErrNotFound) {
			return apierr.NotFound("project")
		}
		if err != nil {
			return err
		}
		next := *existing
		applyProjectInput(&next, in)
		if err := validateProject(&next); err != nil {
			return err
		}
		if err := ps.checkClient(ctx, tx, next.ClientID); err != nil {
			return err
		}
		if err := ps.projectRepo.Update(ctx, tx, id, map[string]any{
			"name":        next.Name,
			"description": next.Description,
			"status":      next.Status,
			"client_id":   next.ClientID,
		}); err != nil {
			return err
		}
		out, err = ps.projectRepo.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, ps.log, ps.pub, realtime.Activity(realtime.EventProjectUpdated, out))
	return out, nil
}

func (ps *projectService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ps.projectRepo.Delete(ctx, nil, id); err != nil {
		if errors.Is(err, apierr.ErrNotFound) {
			return apierr.NotFound("project")
		}
		return err
	}
	ps.log.Info("Project deleted", "project_id", id)
	publish(ctx, ps.log, ps.pub, realtime.Activity(realtime.EventProjectDeleted, map[string]any{"id": id}))
	return nil
}

func (ps *projectService) checkClient(ctx context.Context, tx *gorm.DB, clientID *uuid.UUID) error {
	if clientID == nil {
		return nil
	}
	if _, err := ps.clientRepo.GetByID(ctx, tx, *clientID); err != nil {
		if errors.Is(err, apierr.ErrNotFound) {
			return apierr.Validation(map[string]string{"clientId": "client does not exist"})
		}
		return err
	}
	return nil
}

func applyProjectInput(p *types.Project, in ProjectInput) {
	if in.Name != nil {
		p.Name = trim(*in.Name)
	}
	if in.Description != nil {
		p.Description = trim(*in.Description)
	}
	if in.Status != nil {
		p.Status = trim(*in.Status)
	}
	p.ClientID = optionalID(p.ClientID, in.ClientID)
}

func validateProject(p *types.Project) error {
	fe := fieldErrors{}
	fe.required("name", p.Name)
	fe.maxLen("name", p.Name, 200)
	fe.oneOf("status", p.Status, projects.Statuses)
	return fe.err()
}
