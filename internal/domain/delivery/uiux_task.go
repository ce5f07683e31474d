package delivery

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskReview     = "review"
	TaskDone       = "done"
)

var TaskStatuses = []string{TaskTodo, TaskInProgress, TaskReview, TaskDone}

type UIUXTask struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string     `gorm:"not null;column:title" json:"title"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	Status      string     `gorm:"not null;column:status;default:todo;index" json:"status"`
	Priority    string     `gorm:"not null;column:priority;default:medium;index" json:"priority"`
	DesignURL   string     `gorm:"column:design_url" json:"designUrl"`
	AssignedTo  *uuid.UUID `gorm:"type:uuid;column:assigned_to;index" json:"assignedTo,omitempty"`
	ProjectID   *uuid.UUID `gorm:"type:uuid;column:project_id;index" json:"projectId,omitempty"`
	DueDate     *time.Time `gorm:"column:due_date" json:"dueDate,omitempty"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null;column:created_by" json:"createdBy"`

	CreatedAt time.Time      `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (UIUXTask) TableName() string { return "uiux_task" }
