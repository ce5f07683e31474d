package projects

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPlanning  = "planning"
	StatusActive    = "active"
	StatusOnHold    = "on_hold"
	StatusCompleted = "completed"
)

var Statuses = []string{StatusPlanning, StatusActive, StatusOnHold, StatusCompleted}

type Project struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"not null;column:name" json:"name"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	Status      string     `gorm:"not null;column:status;default:planning;index" json:"status"`
	ClientID    *uuid.UUID `gorm:"type:uuid;column:client_id;index" json:"clientId,omitempty"`
	OwnerID     uuid.UUID  `gorm:"type:uuid;not null;column:owner_id;index" json:"ownerId"`

	CreatedAt time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "project" }
