package qa

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/data/db"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

type TestCaseFilter struct {
	ProjectID  *uuid.UUID
	Status     string
	Priority   string
	Type       string
	AssignedTo *uuid.UUID
	Search     string
	Page       repoutil.Page
}

// ProjectTally is the per-project status breakdown behind test suites.
type ProjectTally struct {
	ProjectID uuid.UUID
	Status    string
	Count     int64
}

type TestCaseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, tc *types.TestCase) (*types.TestCase, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.TestCase, error)
	List(ctx context.Context, tx *gorm.DB, filter TestCaseFilter) ([]*types.TestCase, int64, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	// UpdateRunState stamps the cached outcome of the latest execution.
	UpdateRunState(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string, lastRun time.Time) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	CountByStatus(ctx context.Context, tx *gorm.DB) (map[string]int64, error)
	CountByPriority(ctx context.Context, tx *gorm.DB) (map[string]int64, error)
	CountByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (int64, error)
	TallyByProject(ctx context.Context, tx *gorm.DB) ([]ProjectTally, error)
}

type testCaseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTestCaseRepo(db *gorm.DB, baseLog *logger.Logger) TestCaseRepo {
	repoLog := baseLog.With("repo", "TestCaseRepo")
	return &testCaseRepo{db: db, log: repoLog}
}

func (r *testCaseRepo) Create(ctx context.Context, tx *gorm.DB, tc *types.TestCase) (*types.TestCase, error) {
	transaction := repoutil.Use(tx, r.db)
	if tc.ID == uuid.Nil {
		tc.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Omit("Results").Create(tc).Error; err != nil {
		return nil, db.TranslateError(err)
	}
	return tc, nil
}

func (r *testCaseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.TestCase, error) {
	return repoutil.GetByID[types.TestCase](ctx, repoutil.Use(tx, r.db), id)
}

func (r *testCaseRepo) List(ctx context.Context, tx *gorm.DB, filter TestCaseFilter) ([]*types.TestCase, int64, error) {
	transaction := repoutil.Use(tx, r.db)
	q := transaction.WithContext(ctx).Model(&types.TestCase{})
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.AssignedTo != nil {
		q = q.Where("assigned_to = ?", *filter.AssignedTo)
	}
	q = repoutil.ContainsFold(q, filter.Search, "title", "description")

	var results []*types.TestCase
	total, err := repoutil.Paginate(q, filter.Page, "created_at DESC", &results)
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *testCaseRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	return repoutil.UpdateFields[types.TestCase](ctx, repoutil.Use(tx, r.db), id, updates)
}

func (r *testCaseRepo) UpdateRunState(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string, lastRun time.Time) error {
	return repoutil.UpdateFields[types.TestCase](ctx, repoutil.Use(tx, r.db), id, map[string]any{
		"status":   status,
		"last_run": lastRun,
	})
}

func (r *testCaseRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return repoutil.DeleteByID[types.TestCase](ctx, repoutil.Use(tx, r.db), id)
}

func (r *testCaseRepo) CountByStatus(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	return repoutil.CountBy(ctx, repoutil.Use(tx, r.db), &types.TestCase{}, "status")
}

func (r *testCaseRepo) CountByPriority(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	return repoutil.CountBy(ctx, repoutil.Use(tx, r.db), &types.TestCase{}, "priority")
}

func (r *testCaseRepo) CountByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (int64, error) {
	transaction := repoutil.Use(tx, r.db)
	var n int64
	err := transaction.WithContext(ctx).Model(&types.TestCase{}).Where("project_id = ?", projectID).Count(&n).Error
	return n, err
}

func (r *testCaseRepo) TallyByProject(ctx context.Context, tx *gorm.DB) ([]ProjectTally, error) {
	transaction := repoutil.Use(tx, r.db)
	var rows []ProjectTally
	if err := transaction.WithContext(ctx).
		Model(&types.TestCase{}).
		Select("project_id, status, COUNT(*) AS count").
		Group("project_id, status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
