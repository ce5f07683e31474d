package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StorageGCS   = "gcs"
	StorageLocal = "local"
	StorageNone  = "none"
)

type Document struct {
	ID             uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string                      `gorm:"not null;column:title" json:"title"`
	Description    string                      `gorm:"column:description;type:text" json:"description"`
	Category       string                      `gorm:"not null;column:category;default:general;index" json:"category"`
	Tags           datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	FileName       string                      `gorm:"column:file_name" json:"fileName"`
	FileURL        string                      `gorm:"column:file_url" json:"fileUrl"`
	StorageKey     string                      `gorm:"column:storage_key" json:"-"`
	StorageBackend string                      `gorm:"not null;column:storage_backend;default:none" json:"storageBackend"`
	MimeType       string                      `gorm:"column:mime_type" json:"mimeType"`
	SizeBytes      int64                       `gorm:"not null;column:size_bytes;default:0" json:"sizeBytes"`
	UploadedBy     *uuid.UUID                  `gorm:"type:uuid;column:uploaded_by" json:"uploadedBy,omitempty"`
	ProjectID      *uuid.UUID                  `gorm:"type:uuid;column:project_id;index" json:"projectId,omitempty"`

	CreatedAt time.Time      `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Document) TableName() string { return "document" }
