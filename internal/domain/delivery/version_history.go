package delivery

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ReleaseMajor  = "major"
	ReleaseMinor  = "minor"
	ReleasePatch  = "patch"
	ReleaseHotfix = "hotfix"
)

var ReleaseTypes = []string{ReleaseMajor, ReleaseMinor, ReleasePatch, ReleaseHotfix}

type VersionHistory struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Version     string                      `gorm:"not null;uniqueIndex;column:version" json:"version"`
	Title       string                      `gorm:"not null;column:title" json:"title"`
	Description string                      `gorm:"column:description;type:text" json:"description"`
	Changes     datatypes.JSONSlice[string] `gorm:"column:changes" json:"changes"`
	ReleaseType string                      `gorm:"not null;column:release_type;default:minor" json:"releaseType"`
	ReleaseDate time.Time                   `gorm:"not null;column:release_date;index" json:"releaseDate"`
	AuthorID    *uuid.UUID                  `gorm:"type:uuid;column:author_id" json:"authorId,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (VersionHistory) TableName() string { return "version_history" }
