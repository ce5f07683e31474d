package services

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/data/repos"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/domain/qa"
	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"github.com/yungbote/projectdesk-backend/internal/realtime"
)

const (
	detailResultLimit = 20
	recentResultLimit = 10
	dashboardWindow   = 7 * 24 * time.Hour
)

type TestCaseInput struct {
	Title          *string         `json:"title"`
	Description    *string         `json:"description"`
	Type           *string         `json:"type"`
	Priority       *string         `json:"priority"`
	Status         *string         `json:"status"`
	Steps          json.RawMessage `json:"steps"`
	ExpectedResult *string         `json:"expectedResult"`
	ProjectID      *uuid.UUID      `json:"projectId"`
	AssignedTo     *uuid.UUID      `json:"assignedTo"`
}

type TestResultInput struct {
	Status     string     `json:"status"`
	Notes      string     `json:"notes"`
	ExecutedAt *time.Time `json:"executedAt"`
}

type TestCaseListQuery struct {
	ProjectID  *uuid.UUID
	Status     string
	Priority   string
	Type       string
	AssignedTo *uuid.UUID
	Search     string
	Page       repoutil.Page
}

// TestCaseDetail carries a test case with its most recent executions.
type TestCaseDetail struct {
	*types.TestCase
	RecentResults []*types.TestResult `json:"recentResults"`
}

type TestSuite struct {
	ProjectID   uuid.UUID `json:"projectId"`
	ProjectName string    `json:"projectName"`
	Total       int64     `json:"total"`
	Passed      int64     `json:"passed"`
	Failed      int64     `json:"failed"`
	Blocked     int64     `json:"blocked"`
	NotRun      int64     `json:"notRun"`
	PassRate    float64   `json:"passRate"`
}

type DashboardStats struct {
	TotalTestCases int64               `json:"totalTestCases"`
	ByStatus       map[string]int64    `json:"byStatus"`
	ByPriority     map[string]int64    `json:"byPriority"`
	PassRate       float64             `json:"passRate"`
	RunsLast7Days  int64               `json:"runsLast7Days"`
	OpenBugs       int64               `json:"openBugs"`
	RecentResults  []*types.TestResult `json:"recentResults"`
	TotalClients   int64               `json:"totalClients"`
	TotalUsers     int64               `json:"totalUsers"`
	GeneratedAt    time.Time           `json:"generatedAt"`
}

type SelfTestItem struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Endpoint    string `yaml:"endpoint" json:"endpoint,omitempty"`
}

type SelfTestSection struct {
	Name  string         `yaml:"name" json:"name"`
	Items []SelfTestItem `yaml:"items" json:"items"`
}

type SelfTestChecklist struct {
	Version  string            `yaml:"version" json:"version"`
	Sections []SelfTestSection `yaml:"sections" json:"sections"`
}

//go:embed selftest.yaml
var selfTestYAML []byte

type TestCaseService interface {
	List(ctx context.Context, q TestCaseListQuery) ([]*types.TestCase, repoutil.Pagination, error)
	Get(ctx context.Context, id uuid.UUID) (*TestCaseDetail, error)
	Create(ctx context.Context, createdBy uuid.UUID, in TestCaseInput) (*types.TestCase, error)
	Update(ctx context.Context, id uuid.UUID, in TestCaseInput) (*types.TestCase, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// AddResult records an execution and updates the parent's status and lastRun atomically.
	AddResult(ctx context.Context, id, executedBy uuid.UUID, in TestResultInput) (*types.TestResult, *types.TestCase, error)
	Results(ctx context.Context, id uuid.UUID) ([]*types.TestResult, error)
	Suites(ctx context.Context) ([]TestSuite, error)
	DashboardStats(ctx context.Context) (*DashboardStats, error)
	SelfTest() (*SelfTestChecklist, error)
}

type testCaseService struct {
	db           *gorm.DB
	log          *logger.Logger
	testCaseRepo repos.TestCaseRepo
	resultRepo   repos.TestResultRepo
	projectRepo  repos.ProjectRepo
	bugRepo      repos.BugRepo
	clientRepo   repos.ClientRepo
	userRepo     repos.UserRepo
	pub          realtime.Publisher
	now          func() time.Time
}

func NewTestCaseService(
	db *gorm.DB,
	log *logger.Logger,
	testCaseRepo repos.TestCaseRepo,
	resultRepo repos.TestResultRepo,
	projectRepo repos.ProjectRepo,
	bugRepo repos.BugRepo,
	clientRepo repos.ClientRepo,
	userRepo repos.UserRepo,
	pub realtime.Publisher,
) TestCaseService {
	return &testCaseService{
		db:           db,
		log:          log.With("service", "TestCaseService"),
		testCaseRepo: testCaseRepo,
		resultRepo:   resultRepo,
		projectRepo:  projectRepo,
		bugRepo:      bugRepo,
		clientRepo:   clientRepo,
		userRepo:     userRepo,
		pub:          pub,
		now:          time.Now,
	}
}

func (ts *testCaseService) List(ctx context.Context, q TestCaseListQuery) ([]*types.TestCase, repoutil.Pagination, error) {
	fe := fieldErrors{}
	fe.oneOf("status", q.Status, qa.TestCaseStatuses)
	fe.oneOf("priority", q.Priority, qa.Priorities)
	fe.oneOf("type", q.Type, qa.TestCaseTypes)
	if err := fe.err(); err != nil {
		return nil, repoutil.Pagination{}, err
	}
	page := q.Page.Normalize()
	list, total, err := ts.testCaseRepo.List(ctx, nil, repos.TestCaseFilter{
		ProjectID:  q.ProjectID,
		Status:     q.Status,
		Priority:   q.Priority,
		Type:       q.Type,
		AssignedTo: q.AssignedTo,
		Search:     trim(q.Search),
		Page:       page,
	})
	if err != nil {
		return nil, repoutil.Pagination{}, err
	}
	return list, page.Result(total), nil
}

func (ts *testCaseService) Get(ctx context.Context, id uuid.UUID) (*TestCaseDetail, error) {
	tc, err := ts.getTestCase(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	results, err := ts.resultRepo.ListByTestCase(ctx, nil, id, detailResultLimit)
	if err != nil {
		return nil, err
	}
	return &TestCaseDetail{TestCase: tc, RecentResults: results}, nil
}

func (ts *testCaseService) Create(ctx context.Context, createdBy uuid.UUID, in TestCaseInput) (*types.TestCase, error) {
	tc := &types.TestCase{
		Type:      qa.TypeFunctional,
		Priority:  qa.PriorityMedium,
		Status:    types.TestStatusNotRun,
		Steps:     []types.TestStep{},
		CreatedBy: createdBy,
	}
	if err := applyTestCaseInput(tc, in); err != nil {
		return nil, err
	}
	fe := fieldErrors{}
	if in.ProjectID == nil || *in.ProjectID == uuid.Nil {
		fe.add("projectId", "projectId is required")
	}
	if err := validateTestCase(tc, fe); err != nil {
		return nil, err
	}

	err := ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ts.projectRepo.GetByID(ctx, tx, tc.ProjectID); err != nil {
			if errors.Is(err, apierr.ErrNotFound) {
				return apierr.Validation(map[string]string{"projectId": "project does not exist"})
			}
			return err
		}
		_, err := ts.testCaseRepo.Create(ctx, tx, tc)
		return err
	})
	if err != nil {
		return nil, err
	}
	ts.log.Info("Test case created", "test_case_id", tc.ID, "steps", len(tc.Steps))
	publish(ctx, ts.log, ts.pub, realtime.Activity(realtime.EventTestCaseCreated, tc))
	return tc, nil
}

func (ts *testCaseService) Update(ctx context.Context, id uuid.UUID, in TestCaseInput) (*types.TestCase, error) {
	var out *types.TestCase
	err := ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := ts.getTestCase(ctx, tx, id)
		if err != nil {
			return err
		}
		next := *existing
		if err := applyTestCaseInput(&next, in); err != nil {
			return err
		}
		if err := validateTestCase(&next, fieldErrors{}); err != nil {
			return err
		}
		if next.ProjectID != existing.ProjectID {
			if _, err := ts.projectRepo.GetByID(ctx, tx, next.ProjectID); err != nil {
				if errors.Is(err, apierr.ErrNotFound) {
					return apierr.Validation(map[string]string{"projectId": "project does not exist"})
				}
				return err
			}
		}
		if err := ts.testCaseRepo.Update(ctx, tx, id, map[string]any{
			"title":           next.Title,
			"description":     next.Description,
			"type":            next.Type,
			"priority":        next.Priority,
			"status":          next.Status,
			"steps":           next.Steps,
			"expected_result": next.ExpectedResult,
			"project_id":      next.ProjectID,
			"assigned_to":     next.AssignedTo,
		}); err != nil {
			return err
		}
		out, err = ts.testCaseRepo.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, ts.log, ts.pub, realtime.Activity(realtime.EventTestCaseUpdated, out))
	return out, nil
}

func (ts *testCaseService) Delete(ctx context.Context, id uuid.UUID) error {
	err := ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ts.getTestCase(ctx, tx, id); err != nil {
			return err
		}
		if err := ts.resultRepo.DeleteByTestCase(ctx, tx, id); err != nil {
			return err
		}
		return ts.testCaseRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	ts.log.Info("Test case deleted", "test_case_id", id)
	publish(ctx, ts.log, ts.pub, realtime.Activity(realtime.EventTestCaseDeleted, map[string]any{"id": id}))
	return nil
}

func (ts *testCaseService) AddResult(ctx context.Context, id, executedBy uuid.UUID, in TestResultInput) (*types.TestResult, *types.TestCase, error) {
	status := trim(in.Status)
	fe := fieldErrors{}
	fe.required("status", status)
	fe.oneOf("status", status, qa.ResultStatuses)
	if err := fe.err(); err != nil {
		return nil, nil, err
	}
	executedAt := ts.now()
	if in.ExecutedAt != nil && !in.ExecutedAt.IsZero() {
		executedAt = *in.ExecutedAt
	}
	executedAt = executedAt.UTC().Truncate(time.Microsecond)

	var (
		result *types.TestResult
		parent *types.TestCase
	)
	err := ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := ts.getTestCase(ctx, tx, id)
		if err != nil {
			return err
		}
		result, err = ts.resultRepo.Create(ctx, tx, &types.TestResult{
			TestCaseID: id,
			Status:     status,
			Notes:      trim(in.Notes),
			ExecutedBy: executedBy,
			ExecutedAt: executedAt,
		})
		if err != nil {
			return err
		}
		// A backdated result joins the history but leaves the newer cached run in place.
		if current.LastRun == nil || !executedAt.Before(*current.LastRun) {
			if err := ts.testCaseRepo.UpdateRunState(ctx, tx, id, status, executedAt); err != nil {
				return err
			}
		}
		parent, err = ts.testCaseRepo.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	ts.log.Info("Test result recorded", "test_case_id", id, "status", status)
	publish(ctx, ts.log, ts.pub, realtime.Activity(realtime.EventTestCaseResultAdded, map[string]any{
		"testCase": parent,
		"result":   result,
	}))
	return result, parent, nil
}

func (ts *testCaseService) Results(ctx context.Context, id uuid.UUID) ([]*types.TestResult, error) {
	if _, err := ts.getTestCase(ctx, nil, id); err != nil {
		return nil, err
	}
	return ts.resultRepo.ListByTestCase(ctx, nil, id, 0)
}

func (ts *testCaseService) Suites(ctx context.Context) ([]TestSuite, error) {
	tallies, err := ts.testCaseRepo.TallyByProject(ctx, nil)
	if err != nil {
		return nil, err
	}
	byProject := map[uuid.UUID]*TestSuite{}
	var ids []uuid.UUID
	for _, t := range tallies {
		s, ok := byProject[t.ProjectID]
		if !ok {
			s = &TestSuite{ProjectID: t.ProjectID}
			byProject[t.ProjectID] = s
			ids = append(ids, t.ProjectID)
		}
		s.Total += t.Count
		switch t.Status {
		case types.TestStatusPassed:
			s.Passed += t.Count
		case types.TestStatusFailed:
			s.Failed += t.Count
		case types.TestStatusBlocked:
			s.Blocked += t.Count
		default:
			s.NotRun += t.Count
		}
	}
	projects, err := ts.projectRepo.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if s, ok := byProject[p.ID]; ok {
			s.ProjectName = p.Name
		}
	}
	out := make([]TestSuite, 0, len(byProject))
	for _, s := range byProject {
		s.PassRate = passRate(s.Passed, s.Passed+s.Failed+s.Blocked)
		if s.ProjectName == "" {
			s.ProjectName = "Unknown project"
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProjectName != out[j].ProjectName {
			return out[i].ProjectName < out[j].ProjectName
		}
		return out[i].ProjectID.String() < out[j].ProjectID.String()
	})
	return out, nil
}

func (ts *testCaseService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	now := ts.now().UTC()
	stats := &DashboardStats{GeneratedAt: now}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.ByStatus, err = ts.testCaseRepo.CountByStatus(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		stats.ByPriority, err = ts.testCaseRepo.CountByPriority(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		stats.RunsLast7Days, err = ts.resultRepo.CountSince(gctx, nil, now.Add(-dashboardWindow))
		return err
	})
	g.Go(func() error {
		var err error
		stats.OpenBugs, err = ts.bugRepo.CountOpen(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		stats.RecentResults, err = ts.resultRepo.Recent(gctx, nil, recentResultLimit)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalClients, err = ts.clientRepo.Count(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalUsers, err = ts.userRepo.Count(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, n := range stats.ByStatus {
		stats.TotalTestCases += n
	}
	passed := stats.ByStatus[types.TestStatusPassed]
	executed := passed + stats.ByStatus[types.TestStatusFailed] + stats.ByStatus[types.TestStatusBlocked]
	stats.PassRate = passRate(passed, executed)
	return stats, nil
}

func (ts *testCaseService) SelfTest() (*SelfTestChecklist, error) {
	var c SelfTestChecklist
	if err := yaml.Unmarshal(selfTestYAML, &c); err != nil {
		return nil, apierr.Internal(err)
	}
	return &c, nil
}

func (ts *testCaseService) getTestCase(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.TestCase, error) {
	tc, err := ts.testCaseRepo.GetByID(ctx, tx, id)
	if errors.Is(err, apierr.ErrNotFound) {
		return nil, apierr.NotFound("test case")
	}
	return tc, err
}

// passRate is a percentage rounded to one decimal.
func passRate(passed, executed int64) float64 {
	if executed == 0 {
		return 0
	}
	return math.Round(float64(passed)/float64(executed)*1000) / 10
}

func applyTestCaseInput(tc *types.TestCase, in TestCaseInput) error {
	if in.Title != nil {
		tc.Title = trim(*in.Title)
	}
	if in.Description != nil {
		tc.Description = trim(*in.Description)
	}
	if in.Type != nil {
		tc.Type = trim(*in.Type)
	}
	if in.Priority != nil {
		tc.Priority = trim(*in.Priority)
	}
	if in.Status != nil {
		tc.Status = trim(*in.Status)
	}
	if in.ExpectedResult != nil {
		tc.ExpectedResult = trim(*in.ExpectedResult)
	}
	if in.ProjectID != nil {
		tc.ProjectID = *in.ProjectID
	}
	tc.AssignedTo = optionalID(tc.AssignedTo, in.AssignedTo)
	if len(in.Steps) > 0 {
		steps, err := ParseSteps(in.Steps)
		if err != nil {
			return err
		}
		tc.Steps = steps
	}
	return nil
}

func validateTestCase(tc *types.TestCase, fe fieldErrors) error {
	fe.required("title", tc.Title)
	fe.maxLen("title", tc.Title, 300)
	fe.oneOf("type", tc.Type, qa.TestCaseTypes)
	fe.oneOf("priority", tc.Priority, qa.Priorities)
	fe.oneOf("status", tc.Status, qa.TestCaseStatuses)
	return fe.err()
}

type rawStep struct {
	Step        json.RawMessage `json:"step"`
	Description string          `json:"description"`
	Expected    string          `json:"expected"`
}

// ParseSteps accepts either a newline-delimited string or an array of step
// objects and returns steps numbered from 1.
func ParseSteps(raw json.RawMessage) ([]types.TestStep, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []types.TestStep{}, nil
	}
	invalid := apierr.Validation(map[string]string{"steps": "steps must be a string or an array of steps"})

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, invalid
		}
		return StepsFromText(s), nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, invalid
		}
		steps := make([]types.TestStep, 0, len(items))
		for _, item := range items {
			desc, expected, err := decodeStep(item)
			if err != nil {
				return nil, invalid
			}
			if desc == "" && expected == "" {
				continue
			}
			steps = append(steps, types.TestStep{Step: len(steps) + 1, Description: desc, Expected: expected})
		}
		return steps, nil
	}
	return nil, invalid
}

// StepsFromText turns each non-blank line into a step.
func StepsFromText(s string) []types.TestStep {
	steps := []types.TestStep{}
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		steps = append(steps, types.TestStep{Step: len(steps) + 1, Description: line})
	}
	return steps
}

func decodeStep(item json.RawMessage) (string, string, error) {
	item = bytes.TrimSpace(item)
	if len(item) > 0 && item[0] == '"' {
		var s string
		err := json.Unmarshal(item, &s)
		return strings.TrimSpace(s), "", err
	}
	var rs rawStep
	if err := json.Unmarshal(item, &rs); err != nil {
		return "", "", err
	}
	desc := strings.TrimSpace(rs.Description)
	if desc == "" && len(rs.Step) > 0 && rs.Step[0] == '"' {
		var s string
		if err := json.Unmarshal(rs.Step, &s); err == nil {
			desc = strings.TrimSpace(s)
		}
	}
	return desc, strings.TrimSpace(rs.Expected), nil
}
