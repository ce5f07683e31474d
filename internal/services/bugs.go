package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/data/repos"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/domain/qa"
	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"github.com/yungbote/projectdesk-backend/internal/realtime"
)

type BugInput struct {
	Title            *string    `json:"title"`
	Description      *string    `json:"description"`
	Status           *string    `json:"status"`
	Priority         *string    `json:"priority"`
	Severity         *string    `json:"severity"`
	StepsToReproduce *string    `json:"stepsToReproduce"`
	ExpectedResult   *string    `json:"expectedResult"`
	ActualResult     *string    `json:"actualResult"`
	Environment      *string    `json:"environment"`
	AssignedTo       *uuid.UUID `json:"assignedTo"`
	ProjectID        *uuid.UUID `json:"projectId"`
}

type BugListQuery struct {
	Status     string
	Priority   string
	Severity   string
	ProjectID  *uuid.UUID
	AssignedTo *uuid.UUID
	Search     string
	Page       repoutil.Page
}

type BugStats struct {
	Total      int64            `json:"total"`
	Open       int64            `json:"open"`
	ByStatus   map[string]int64 `json:"byStatus"`
	BySeverity map[string]int64 `json:"bySeverity"`
}

type BugService interface {
	List(ctx context.Context, q BugListQuery) ([]*types.Bug, repoutil.Pagination, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Bug, error)
	Create(ctx context.Context, reportedBy uuid.UUID, in BugInput) (*types.Bug, error)
	Update(ctx context.Context, id uuid.UUID, in BugInput) (*types.Bug, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) (*types.Bug, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*BugStats, error)
}

type bugService struct {
	db      *gorm.DB
	log     *logger.Logger
	bugRepo repos.BugRepo
	pub     realtime.Publisher
	now     func() time.Time
}

func NewBugService(db *gorm.DB, log *logger.Logger, bugRepo repos.BugRepo, pub realtime.Publisher) BugService {
	return &bugService{
		db:      db,
		log:     log.With("service", "BugService"),
		bugRepo: bugRepo,
		pub:     pub,
		now:     time.Now,
	}
}

func (bs *bugService) List(ctx context.Context, q BugListQuery) ([]*types.Bug, repoutil.Pagination, error) {
	fe := fieldErrors{}
	fe.oneOf("status", q.Status, qa.BugStatuses)
	fe.oneOf("priority", q.Priority, qa.Priorities)
	fe.oneOf("severity", q.Severity, qa.Severities)
	if err := fe.err(); err != nil {
		return nil, repoutil.Pagination{}, err
	}
	page := q.Page.Normalize()
	list, total, err := bs.bugRepo.List(ctx, nil, repos.BugFilter{
		Status:     q.Status,
		Priority:   q.Priority,
		Severity:   q.Severity,
		ProjectID:  q.ProjectID,
		AssignedTo: q.AssignedTo,
		Search:     trim(q.Search),
		Page:       page,
	})
	if err != nil {
		return nil, repoutil.Pagination{}, err
	}
	return list, page.Result(total), nil
}

func (bs *bugService) Get(ctx context.Context, id uuid.UUID) (*types.Bug, error) {
	return bs.getBug(ctx, nil, id)
}

func (bs *bugService) Create(ctx context.Context, reportedBy uuid.UUID, in BugInput) (*types.Bug, error) {
	bug := &types.Bug{
		Status:     types.BugStatusOpen,
		Priority:   qa.PriorityMedium,
		Severity:   qa.SeverityMajor,
		ReportedBy: reportedBy,
	}
	applyBugInput(bug, in)
	if err := validateBug(bug); err != nil {
		return nil, err
	}
	if bug.Status == types.BugStatusResolved {
		now := bs.now().UTC()
		bug.ResolvedAt = &now
	}
	if _, err := bs.bugRepo.Create(ctx, nil, bug); err != nil {
		return nil, err
	}
	bs.log.Info("Bug reported", "bug_id", bug.ID, "severity", bug.Severity)
	publish(ctx, bs.log, bs.pub, realtime.Activity(realtime.EventBugCreated, bug))
	return bug, nil
}

func (bs *bugService) Update(ctx context.Context, id uuid.UUID, in BugInput) (*types.Bug, error) {
	var (
		out        *types.Bug
		prevStatus string
	)
	err := bs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := bs.getBug(ctx, tx, id)
		if err != nil {
			return err
		}
		prevStatus = existing.Status
		next := *existing
		applyBugInput(&next, in)
		if err := validateBug(&next); err != nil {
			return err
		}
		bs.stampResolution(&next, existing.Status)
		if err := bs.bugRepo.Update(ctx, tx, id, map[string]any{
			"title":              next.Title,
			"description":        next.Description,
			"status":             next.Status,
			"priority":           next.Priority,
			"severity":           next.Severity,
			"steps_to_reproduce": next.StepsToReproduce,
			"expected_result":    next.ExpectedResult,
			"actual_result":      next.ActualResult,
			"environment":        next.Environment,
			"assigned_to":        next.AssignedTo,
			"project_id":         next.ProjectID,
			"resolved_at":        next.ResolvedAt,
		}); err != nil {
			return err
		}
		out, err = bs.bugRepo.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	evType := realtime.EventBugUpdated
	if out.Status != prevStatus {
		evType = realtime.EventBugStatusChanged
	}
	publish(ctx, bs.log, bs.pub, realtime.Activity(evType, out))
	return out, nil
}

func (bs *bugService) SetStatus(ctx context.Context, id uuid.UUID, status string) (*types.Bug, error) {
	status = trim(status)
	fe := fieldErrors{}
	fe.required("status", status)
	fe.oneOf("status", status, qa.BugStatuses)
	if err := fe.err(); err != nil {
		return nil, err
	}
	return bs.Update(ctx, id, BugInput{Status: &status})
}

func (bs *bugService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := bs.bugRepo.Delete(ctx, nil, id); err != nil {
		if errors.Is(err, apierr.ErrNotFound) {
			return apierr.NotFound("bug")
		}
		return err
	}
	bs.log.Info("Bug deleted", "bug_id", id)
	publish(ctx, bs.log, bs.pub, realtime.Activity(realtime.EventBugDeleted, map[string]any{"id": id}))
	return nil
}

func (bs *bugService) Stats(ctx context.Context) (*BugStats, error) {
	stats := &BugStats{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.ByStatus, err = bs.bugRepo.CountByStatus(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		stats.BySeverity, err = bs.bugRepo.CountBySeverity(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		stats.Open, err = bs.bugRepo.CountOpen(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, n := range stats.ByStatus {
		stats.Total += n
	}
	return stats, nil
}

// stampResolution sets resolvedAt on entering resolved and clears it on reopen.
func (bs *bugService) stampResolution(b *types.Bug, prevStatus string) {
	switch {
	case b.Status == types.BugStatusResolved && prevStatus != types.BugStatusResolved:
		now := bs.now().UTC()
		b.ResolvedAt = &now
	case b.Status == types.BugStatusReopened:
		b.ResolvedAt = nil
	}
}

func (bs *bugService) getBug(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Bug, error) {
	b, err := bs.bugRepo.GetByID(ctx, tx, id)
	if errors.Is(err, apierr.ErrNotFound) {
		return nil, apierr.NotFound("bug")
	}
	return b, err
}

func applyBugInput(b *types.Bug, in BugInput) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = trim(*src)
		}
	}
	set(&b.Title, in.Title)
	set(&b.Description, in.Description)
	set(&b.Status, in.Status)
	set(&b.Priority, in.Priority)
	set(&b.Severity, in.Severity)
	set(&b.StepsToReproduce, in.StepsToReproduce)
	set(&b.ExpectedResult, in.ExpectedResult)
	set(&b.ActualResult, in.ActualResult)
	set(&b.Environment, in.Environment)
	b.AssignedTo = optionalID(b.AssignedTo, in.AssignedTo)
	b.ProjectID = optionalID(b.ProjectID, in.ProjectID)
}

func validateBug(b *types.Bug) error {
	fe := fieldErrors{}
	fe.required("title", b.Title)
	fe.maxLen("title", b.Title, 300)
	fe.oneOf("status", b.Status, qa.BugStatuses)
	fe.oneOf("priority", b.Priority, qa.Priorities)
	fe.oneOf("severity", b.Severity, qa.Severities)
	return fe.err()
}
