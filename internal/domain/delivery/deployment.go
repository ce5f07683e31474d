package delivery

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"

	DeployPending    = "pending"
	DeployInProgress = "in_progress"
	DeploySucceeded  = "succeeded"
	DeployFailed     = "failed"
	DeployRolledBack = "rolled_back"
)

var Environments = []string{EnvDevelopment, EnvStaging, EnvProduction}
var DeploymentStatuses = []string{DeployPending, DeployInProgress, DeploySucceeded, DeployFailed, DeployRolledBack}

// deploymentTransitions lists the statuses reachable from each status.
var deploymentTransitions = map[string][]string{
	DeployPending:    {DeployInProgress, DeployFailed},
	DeployInProgress: {DeploySucceeded, DeployFailed},
	DeploySucceeded:  {DeployRolledBack},
	DeployFailed:     {DeployRolledBack, DeployPending},
	DeployRolledBack: {},
}

// CanTransition reports whether a deployment may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range deploymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether reaching status finishes the run.
func IsTerminal(status string) bool {
	return status == DeploySucceeded || status == DeployFailed || status == DeployRolledBack
}

type Deployment struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID   *uuid.UUID `gorm:"type:uuid;column:project_id;index" json:"projectId,omitempty"`
	Environment string     `gorm:"not null;column:environment;index" json:"environment"`
	Version     string     `gorm:"not null;column:version" json:"version"`
	CommitHash  string     `gorm:"column:commit_hash" json:"commitHash"`
	Status      string     `gorm:"not null;column:status;default:pending;index" json:"status"`
	Notes       string     `gorm:"column:notes;type:text" json:"notes"`
	DeployedBy  uuid.UUID  `gorm:"type:uuid;not null;column:deployed_by" json:"deployedBy"`
	StartedAt   *time.Time `gorm:"column:started_at" json:"startedAt,omitempty"`
	FinishedAt  *time.Time `gorm:"column:finished_at" json:"finishedAt,omitempty"`

	CreatedAt time.Time      `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Deployment) TableName() string { return "deployment" }
