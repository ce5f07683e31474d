package system

import "time"

// SchemaMigration marks a named migration step as applied.
type SchemaMigration struct {
	ID        string    `gorm:"primaryKey;column:id" json:"id"`
	AppliedAt time.Time `gorm:"not null;column:applied_at" json:"appliedAt"`
}

func (SchemaMigration) TableName() string { return "schema_migrations" }
