package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin     = "admin"
	RoleManager   = "manager"
	RoleDeveloper = "developer"
	RoleTester    = "tester"
	RoleDesigner  = "designer"
	RoleClient    = "client"

	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"

	DefaultRole       = RoleDeveloper
	DefaultDepartment = "General"
)

var Roles = []string{RoleAdmin, RoleManager, RoleDeveloper, RoleTester, RoleDesigner, RoleClient}
var Statuses = []string{StatusActive, StatusInactive, StatusSuspended}

type User struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string     `gorm:"not null;column:name" json:"name"`
	Email      string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password   string     `gorm:"not null;column:password" json:"-"`
	Role       string     `gorm:"not null;column:role;default:developer;index" json:"role"`
	Department string     `gorm:"not null;column:department;default:General" json:"department"`
	Status     string     `gorm:"not null;column:status;default:active;index" json:"status"`
	LastLogin  *time.Time `gorm:"column:last_login" json:"lastLogin,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "user" }

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u != nil && u.Status == StatusActive
}
