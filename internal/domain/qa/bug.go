package qa

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BugStatusOpen       = "open"
	BugStatusInProgress = "in_progress"
	BugStatusResolved   = "resolved"
	BugStatusClosed     = "closed"
	BugStatusReopened   = "reopened"

	SeverityMinor    = "minor"
	SeverityMajor    = "major"
	SeverityCritical = "critical"
	SeverityBlocker  = "blocker"
)

var BugStatuses = []string{BugStatusOpen, BugStatusInProgress, BugStatusResolved, BugStatusClosed, BugStatusReopened}
var Severities = []string{SeverityMinor, SeverityMajor, SeverityCritical, SeverityBlocker}

type Bug struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string     `gorm:"not null;column:title" json:"title"`
	Description      string     `gorm:"column:description;type:text" json:"description"`
	Status           string     `gorm:"not null;column:status;default:open;index" json:"status"`
	Priority         string     `gorm:"not null;column:priority;default:medium;index" json:"priority"`
	Severity         string     `gorm:"not null;column:severity;default:major;index" json:"severity"`
	StepsToReproduce string     `gorm:"column:steps_to_reproduce;type:text" json:"stepsToReproduce"`
	ExpectedResult   string     `gorm:"column:expected_result;type:text" json:"expectedResult"`
	ActualResult     string     `gorm:"column:actual_result;type:text" json:"actualResult"`
	Environment      string     `gorm:"column:environment" json:"environment"`
	ReportedBy       uuid.UUID  `gorm:"type:uuid;not null;column:reported_by;index" json:"reportedBy"`
	AssignedTo       *uuid.UUID `gorm:"type:uuid;column:assigned_to;index" json:"assignedTo,omitempty"`
	ProjectID        *uuid.UUID `gorm:"type:uuid;column:project_id;index" json:"projectId,omitempty"`
	ResolvedAt       *time.Time `gorm:"column:resolved_at" json:"resolvedAt,omitempty"`

	CreatedAt time.Time      `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Bug) TableName() string { return "bug" }
