package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentType is a reference entity owning users. Code is normalized to
// uppercase before any write.
type DocumentType struct {
	ID        uint      `gorm:"primaryKey"`
	UUID      uuid.UUID `gorm:"type:uuid;column:uuid;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	Code      string    `gorm:"column:code;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
