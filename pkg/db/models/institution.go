package models

import (
	"time"

	"github.com/google/uuid"
)

// Institution is a reference entity owning academic programs and users.
// Relations are expressed as explicit foreign keys on the dependent rows;
// dependent counts are resolved with join queries, not preloaded slices.
type Institution struct {
	ID        uint      `gorm:"primaryKey"`
	UUID      uuid.UUID `gorm:"type:uuid;column:uuid;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	Acronym   *string   `gorm:"column:acronym;uniqueIndex"`
	City      string    `gorm:"column:city;not null"`
	Country   string    `gorm:"column:country;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
