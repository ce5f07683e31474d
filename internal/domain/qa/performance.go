package qa

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PerfStatusPassed  = "passed"
	PerfStatusWarning = "warning"
	PerfStatusFailed  = "failed"

	PerfTypeLoad      = "load"
	PerfTypeStress    = "stress"
	PerfTypeSpike     = "spike"
	PerfTypeEndurance = "endurance"
)

var PerfStatuses = []string{PerfStatusPassed, PerfStatusWarning, PerfStatusFailed}
var PerfTypes = []string{PerfTypeLoad, PerfTypeStress, PerfTypeSpike, PerfTypeEndurance}

// PerformanceMetrics is the summary of one load-test run. ErrorRate is a percentage.
type PerformanceMetrics struct {
	AvgResponseMs float64 `json:"avgResponseMs"`
	MinResponseMs float64 `json:"minResponseMs"`
	MaxResponseMs float64 `json:"maxResponseMs"`
	P95ResponseMs float64 `json:"p95ResponseMs"`
	ThroughputRps float64 `json:"throughputRps"`
	ErrorRate     float64 `json:"errorRate"`
	TotalRequests int64   `json:"totalRequests"`
}

type PerformanceTest struct {
	ID               uuid.UUID                              `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string                                 `gorm:"not null;column:name" json:"name"`
	TargetURL        string                                 `gorm:"not null;column:target_url" json:"targetUrl"`
	TestType         string                                 `gorm:"not null;column:test_type;default:load" json:"testType"`
	Concurrency      int                                    `gorm:"not null;column:concurrency" json:"concurrency"`
	DurationSeconds  int                                    `gorm:"not null;column:duration_seconds" json:"durationSeconds"`
	TargetResponseMs float64                                `gorm:"not null;column:target_response_ms" json:"targetResponseMs"`
	Metrics          datatypes.JSONType[PerformanceMetrics] `gorm:"column:metrics" json:"metrics"`
	Status           string                                 `gorm:"not null;column:status;index" json:"status"`
	Synthetic        bool                                   `gorm:"not null;column:synthetic" json:"synthetic"`
	ProjectID        *uuid.UUID                             `gorm:"type:uuid;column:project_id;index" json:"projectId,omitempty"`
	CreatedBy        uuid.UUID                              `gorm:"type:uuid;not null;column:created_by" json:"createdBy"`

	CreatedAt time.Time      `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (PerformanceTest) TableName() string { return "performance_test" }
