package qa

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TestStatusNotRun  = "not_run"
	TestStatusPassed  = "passed"
	TestStatusFailed  = "failed"
	TestStatusBlocked = "blocked"

	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"

	TypeFunctional  = "functional"
	TypeRegression  = "regression"
	TypeIntegration = "integration"
	TypePerformance = "performance"
	TypeSecurity    = "security"
	TypeUsability   = "usability"
	TypeSmoke       = "smoke"
)

var TestCaseStatuses = []string{TestStatusNotRun, TestStatusPassed, TestStatusFailed, TestStatusBlocked}

// ResultStatuses are the outcomes an execution can record; not_run is never a result.
var ResultStatuses = []string{TestStatusPassed, TestStatusFailed, TestStatusBlocked}

var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

var TestCaseTypes = []string{
	TypeFunctional, TypeRegression, TypeIntegration, TypePerformance,
	TypeSecurity, TypeUsability, TypeSmoke,
}

// TestStep is one numbered instruction of a test case.
type TestStep struct {
	Step        int    `json:"step"`
	Description string `json:"description"`
	Expected    string `json:"expected"`
}

type TestCase struct {
	ID             uuid.UUID                     `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string                        `gorm:"not null;column:title" json:"title"`
	Description    string                        `gorm:"column:description;type:text" json:"description"`
	Type           string                        `gorm:"not null;column:type;default:functional;index" json:"type"`
	Priority       string                        `gorm:"not null;column:priority;default:medium;index" json:"priority"`
	Status         string                        `gorm:"not null;column:status;default:not_run;index" json:"status"`
	Steps          datatypes.JSONSlice[TestStep] `gorm:"column:steps" json:"steps"`
	ExpectedResult string                        `gorm:"column:expected_result;type:text" json:"expectedResult"`
	ProjectID      uuid.UUID                     `gorm:"type:uuid;not null;column:project_id;index" json:"projectId"`
	CreatedBy      uuid.UUID                     `gorm:"type:uuid;not null;column:created_by" json:"createdBy"`
	AssignedTo     *uuid.UUID                    `gorm:"type:uuid;column:assigned_to;index" json:"assignedTo,omitempty"`
	LastRun        *time.Time                    `gorm:"column:last_run" json:"lastRun,omitempty"`

	Results []*TestResult `gorm:"foreignKey:TestCaseID;constraint:OnDelete:CASCADE" json:"results,omitempty"`

	CreatedAt time.Time      `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (TestCase) TableName() string { return "test_case" }

// TestResult records one execution. Its insertion and the parent's cached
// Status/LastRun must land in the same transaction.
type TestResult struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TestCaseID uuid.UUID `gorm:"type:uuid;not null;column:test_case_id;index" json:"testCaseId"`
	Status     string    `gorm:"not null;column:status" json:"status"`
	Notes      string    `gorm:"column:notes;type:text" json:"notes"`
	ExecutedBy uuid.UUID `gorm:"type:uuid;not null;column:executed_by" json:"executedBy"`
	ExecutedAt time.Time `gorm:"not null;column:executed_at;index" json:"executedAt"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (TestResult) TableName() string { return "test_result" }
