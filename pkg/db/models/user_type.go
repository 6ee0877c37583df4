package models

import (
	"time"

	"github.com/google/uuid"
)

// UserType is a reference entity owning users. The unique text field is
// "type" rather than "name".
type UserType struct {
	ID          uint      `gorm:"primaryKey"`
	UUID        uuid.UUID `gorm:"type:uuid;column:uuid;not null;uniqueIndex"`
	Type        string    `gorm:"column:type;not null;uniqueIndex"`
	Description *string   `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
