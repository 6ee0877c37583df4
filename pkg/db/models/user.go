package models

import (
	"time"

	"github.com/andresfq/registry-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the central registry entity. It carries five foreign keys into the
// reference tables; document type and user type are required, the rest are
// optional. Users soft-delete, reference entities hard-delete.
type User struct {
	ID                uint             `gorm:"primaryKey"`
	UUID              uuid.UUID        `gorm:"type:uuid;column:uuid;not null;uniqueIndex"`
	FirstName         string           `gorm:"column:first_name;not null"`
	LastName          string           `gorm:"column:last_name;not null"`
	Email             string           `gorm:"column:email;not null;uniqueIndex:idx_users_email_live,where:deleted_at IS NULL"`
	PasswordHash      string           `gorm:"column:password;not null"`
	Birthdate         *time.Time       `gorm:"column:birthdate"`
	ProfilePhoto      *string          `gorm:"column:profile_photo"`
	DocumentTypeID    uint             `gorm:"column:document_type_id;not null;index"`
	UserTypeID        uint             `gorm:"column:user_type_id;not null;index"`
	DocumentNumber    string           `gorm:"column:document_number;not null;uniqueIndex:idx_users_document_number_live,where:deleted_at IS NULL"`
	InstitutionID     *uint            `gorm:"column:institution_id;index"`
	AcademicProgramID *uint            `gorm:"column:academic_program_id;index"`
	GenderID          *uint            `gorm:"column:gender_id;index"`
	CompanyName       *string          `gorm:"column:company_name"`
	CompanyAddress    *string          `gorm:"column:company_address"`
	Status            enums.UserStatus `gorm:"column:status;not null;default:'pending'"`
	AcceptedTerms     bool             `gorm:"column:accepted_terms;not null;default:false"`
	EmailVerifiedAt   *time.Time       `gorm:"column:email_verified_at"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt         gorm.DeletedAt   `gorm:"column:deleted_at;index"`
}
