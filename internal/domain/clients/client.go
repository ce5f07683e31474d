package clients

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
	StatusProspect = "Prospect"

	// DefaultLogo is rendered for clients that never uploaded a logo.
	DefaultLogo = "🏢"
)

var Statuses = []string{StatusActive, StatusInactive, StatusProspect}

type Client struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name    string    `gorm:"not null;uniqueIndex;column:name" json:"name"`
	Contact string    `gorm:"column:contact" json:"contact"`
	Email   string    `gorm:"not null;uniqueIndex;column:email" json:"email"`
	Phone   string    `gorm:"column:phone" json:"phone"`
	Company string    `gorm:"column:company;index" json:"company"`
	Status  string    `gorm:"not null;column:status;default:Active;index" json:"status"`
	Address string    `gorm:"column:address" json:"address"`
	Logo    string    `gorm:"column:logo" json:"logo"`
	Notes   string    `gorm:"column:notes;type:text" json:"notes"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Client) TableName() string { return "client" }

// WithDefaultLogo fills the placeholder glyph when no logo is stored.
func (c *Client) WithDefaultLogo() *Client {
	if c != nil && c.Logo == "" {
		c.Logo = DefaultLogo
	}
	return c
}
