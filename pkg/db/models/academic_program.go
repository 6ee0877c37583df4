package models

import (
	"time"

	"github.com/google/uuid"
)

// AcademicProgram belongs to one Institution and owns users.
// Code is normalized to uppercase before any write.
type AcademicProgram struct {
	ID            uint      `gorm:"primaryKey"`
	UUID          uuid.UUID `gorm:"type:uuid;column:uuid;not null;uniqueIndex"`
	Name          string    `gorm:"column:name;not null"`
	Code          string    `gorm:"column:code;not null;uniqueIndex"`
	Description   *string   `gorm:"column:description"`
	InstitutionID uint      `gorm:"column:institution_id;not null;index"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
