package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/data/repos"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/domain/delivery"
	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"github.com/yungbote/projectdesk-backend/internal/realtime"
)

type DeploymentInput struct {
	ProjectID   *uuid.UUID `json:"projectId"`
	Environment *string    `json:"environment"`
	Version     *string    `json:"version"`
	CommitHash  *string    `json:"commitHash"`
	Notes       *string    `json:"notes"`
}

type DeploymentListQuery struct {
	Environment string
	Status      string
	ProjectID   *uuid.UUID
	Page        repoutil.Page
}

type DeploymentService interface {
	List(ctx context.Context, q DeploymentListQuery) ([]*types.Deployment, repoutil.Pagination, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Deployment, error)
	Create(ctx context.Context, deployedBy uuid.UUID, in DeploymentInput) (*types.Deployment, error)
	Update(ctx context.Context, id uuid.UUID, in DeploymentInput) (*types.Deployment, error)
	// Transition moves a deployment along its lifecycle, stamping start and finish times.
	Transition(ctx context.Context, id uuid.UUID, status string) (*types.Deployment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type deploymentService struct {
	db             *gorm.DB
	log            *logger.Logger
	deploymentRepo repos.DeploymentRepo
	pub            realtime.Publisher
	now            func() time.Time
}

func NewDeploymentService(db *gorm.DB, log *logger.Logger, deploymentRepo repos.DeploymentRepo, pub realtime.Publisher) DeploymentService {
	return &deploymentService{
		db:             db,
		log:            log.With("service", "DeploymentService"),
		deploymentRepo: deploymentRepo,
		pub:            pub,
		now:            time.Now,
	}
}

func (ds *deploymentService) List(ctx context.Context, q DeploymentListQuery) ([]*types.Deployment, repoutil.Pagination, error) {
	fe := fieldErrors{}
	fe.oneOf("environment", q.Environment, delivery.Environments)
	fe.oneOf("status", q.Status, delivery.DeploymentStatuses)
	if err := fe.err(); err != nil {
		return nil, repoutil.Pagination{}, err
	}
	page := q.Page.Normalize()
	list, total, err := ds.deploymentRepo.List(ctx, nil, repos.DeploymentFilter{
		Environment: q.Environment,
		Status:      q.Status,
		ProjectID:   q.ProjectID,
		Page:        page,
	})
	if err != nil {
		return nil, repoutil.Pagination{}, err
	}
	return list, page.Result(total), nil
}

func (ds *deploymentService) Get(ctx context.Context, id uuid.UUID) (*types.Deployment, error) {
	return ds.getDeployment(ctx, nil, id)
}

func (ds *deploymentService) Create(ctx context.Context, deployedBy uuid.UUID, in DeploymentInput) (*types.Deployment, error) {
	d := &types.Deployment{
		Environment: delivery.EnvDevelopment,
		Status:      types.DeployPending,
		DeployedBy:  deployedBy,
	}
	applyDeploymentInput(d, in)
	if err := validateDeployment(d); err != nil {
		return nil, err
	}
	if _, err := ds.deploymentRepo.Create(ctx, nil, d); err != nil {
		return nil, err
	}
	ds.log.Info("Deployment created", "deployment_id", d.ID, "environment", d.Environment, "version", d.Version)
	publish(ctx, ds.log, ds.pub, realtime.Activity(realtime.EventDeploymentCreated, d))
	return d, nil
}

func (ds *deploymentService) Update(ctx context.Context, id uuid.UUID, in DeploymentInput) (*types.Deployment, error) {
	var out *types.Deployment
	err := ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := ds.getDeployment(ctx, tx, id)
		if err != nil {
			return err
		}
		next := *existing
		applyDeploymentInput(&next, in)
		if err := validateDeployment(&next); err != nil {
			return err
		}
		if err := ds.deploymentRepo.Update(ctx, tx, id, map[string]any{
			"project_id":  next.ProjectID,
			"environment": next.Environment,
			"version":     next.Version,
			"commit_hash": next.CommitHash,
			"notes":       next.Notes,
		}); err != nil {
			return err
		}
		out, err = ds.deploymentRepo.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ds *deploymentService) Transition(ctx context.Context, id uuid.UUID, status string) (*types.Deployment, error) {
	status = trim(status)
	fe := fieldErrors{}
	fe.required("status", status)
	fe.oneOf("status", status, delivery.DeploymentStatuses)
	if err := fe.err(); err != nil {
		return nil, err
	}

	var out *types.Deployment
	err := ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := ds.getDeployment(ctx, tx, id)
		if err != nil {
			return err
		}
		if !delivery.CanTransition(existing.Status, status) {
			return apierr.BadRequest("invalid_transition",
				fmt.Sprintf("cannot move deployment from %s to %s", existing.Status, status))
		}
		now := ds.now().UTC()
		updates := map[string]any{"status": status}
		if status == types.DeployInProgress {
			updates["started_at"] = now
			updates["finished_at"] = nil
		}
		if status == types.DeployPending {
			updates["started_at"] = nil
			updates["finished_at"] = nil
		}
		if delivery.IsTerminal(status) {
			updates["finished_at"] = now
		}
		if err := ds.deploymentRepo.Update(ctx, tx, id, updates); err != nil {
			return err
		}
		out, err = ds.deploymentRepo.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	ds.log.Info("Deployment status changed", "deployment_id", id, "status", status)
	publish(ctx, ds.log, ds.pub, realtime.Activity(realtime.EventDeploymentStatusChanged, out))
	return out, nil
}

func (ds *deploymentService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ds.deploymentRepo.Delete(ctx, nil, id); err != nil {
		if errors.Is(err, apierr.ErrNotFound) {
			return apierr.NotFound("deployment")
		}
		return err
	}
	return nil
}

func (ds *deploymentService) getDeployment(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Deployment, error) {
	d, err := ds.deploymentRepo.GetByID(ctx, tx, id)
	if errors.Is(err, apierr.ErrNotFound) {
		return nil, apierr.NotFound("deployment")
	}
	return d, err
}

func applyDeploymentInput(d *types.Deployment, in DeploymentInput) {
	d.ProjectID = optionalID(d.ProjectID, in.ProjectID)
	if in.Environment != nil {
		d.Environment = trim(*in.Environment)
	}
	if in.Version != nil {
		d.Version = trim(*in.Version)
	}
	if in.CommitHash != nil {
		d.CommitHash = trim(*in.CommitHash)
	}
	if in.Notes != nil {
		d.Notes = trim(*in.Notes)
	}
}

func validateDeployment(d *types.Deployment) error {
	fe := fieldErrors{}
	fe.required("version", d.Version)
	fe.oneOf("environment", d.Environment, delivery.Environments)
	fe.maxLen("commitHash", d.CommitHash, 64)
	return fe.err()
}
