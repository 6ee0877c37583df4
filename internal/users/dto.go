package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/andresfq/registry-backend/pkg/db/models"
	"github.com/andresfq/registry-backend/pkg/pagination"
)

// UserInput is the write payload for both create and update. Password is
// mandatory on create and optional on update; the service enforces that
// split. Foreign keys accept surrogate IDs or public UUIDs.
type UserInput struct {
	FirstName         string  `json:"first_name" validate:"required,max=255"`
	LastName          string  `json:"last_name" validate:"required,max=255"`
	Email             string  `json:"email" validate:"required,email,max=255"`
	Password          string  `json:"password" validate:"omitempty,min=8"`
	Birthdate         *string `json:"birthdate" validate:"omitempty,datetime=2006-01-02"`
	ProfilePhoto      *string `json:"profile_photo" validate:"omitempty,max=255"`
	DocumentTypeID    string  `json:"document_type_id" validate:"required"`
	UserTypeID        string  `json:"user_type_id" validate:"required"`
	DocumentNumber    string  `json:"document_number" validate:"required,max=50"`
	InstitutionID     *string `json:"institution_id"`
	AcademicProgramID *string `json:"academic_program_id"`
	GenderID          *string `json:"gender_id"`
	CompanyName       *string `json:"company_name" validate:"omitempty,max=255"`
	CompanyAddress    *string `json:"company_address" validate:"omitempty,max=255"`
	Status            *string `json:"status" validate:"required,oneof=active inactive pending"`
	AcceptedTerms     *bool   `json:"accepted_terms" validate:"required"`
}

// UserDTO is the read shape. The password hash never leaves the service.
type UserDTO struct {
	ID                uint       `json:"id"`
	UUID              uuid.UUID  `json:"uuid"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Email             string     `json:"email"`
	Birthdate         *string    `json:"birthdate"`
	ProfilePhoto      *string    `json:"profile_photo"`
	DocumentTypeID    uint       `json:"document_type_id"`
	DocumentType      *string    `json:"document_type,omitempty"`
	UserTypeID        uint       `json:"user_type_id"`
	UserType          *string    `json:"user_type,omitempty"`
	DocumentNumber    string     `json:"document_number"`
	InstitutionID     *uint      `json:"institution_id"`
	Institution       *string    `json:"institution,omitempty"`
	AcademicProgramID *uint      `json:"academic_program_id"`
	AcademicProgram   *string    `json:"academic_program,omitempty"`
	GenderID          *uint      `json:"gender_id"`
	Gender            *string    `json:"gender,omitempty"`
	CompanyName       *string    `json:"company_name"`
	CompanyAddress    *string    `json:"company_address"`
	Status            string     `json:"status"`
	AcceptedTerms     bool       `json:"accepted_terms"`
	EmailVerifiedAt   *time.Time `json:"email_verified_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func newUserDTO(m *models.User) UserDTO {
	dto := UserDTO{
		ID:                m.ID,
		UUID:              m.UUID,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Email:             m.Email,
		ProfilePhoto:      m.ProfilePhoto,
		DocumentTypeID:    m.DocumentTypeID,
		UserTypeID:        m.UserTypeID,
		DocumentNumber:    m.DocumentNumber,
		InstitutionID:     m.InstitutionID,
		AcademicProgramID: m.AcademicProgramID,
		GenderID:          m.GenderID,
		CompanyName:       m.CompanyName,
		CompanyAddress:    m.CompanyAddress,
		Status:            m.Status.String(),
		AcceptedTerms:     m.AcceptedTerms,
		EmailVerifiedAt:   m.EmailVerifiedAt,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if m.Birthdate != nil {
		b := m.Birthdate.Format("2006-01-02")
		dto.Birthdate = &b
	}
	return dto
}

// ListOptions narrows and orders a user listing.
type ListOptions struct {
	Search           string
	Status           string
	UserTypeToken    string
	InstitutionToken string
	SortBy           string
	SortOrder        string
	Page             pagination.Params
}

type BulkActionInput struct {
	Action string   `json:"action" validate:"required,oneof=activate deactivate delete"`
	IDs    []string `json:"ids" validate:"required,min=1,dive,required"`
}

type BulkResult struct {
	Action   string `json:"action"`
	Affected int    `json:"affected"`
}

// TypeCount is one row of the per-type statistics breakdown.
type TypeCount struct {
	UserTypeID uint   `json:"user_type_id"`
	Type       string `json:"type"`
	Count      int64  `json:"count"`
}

type Statistics struct {
	TotalUsers          int64            `json:"total_users"`
	ByStatus            map[string]int64 `json:"users_by_status"`
	ByType              []TypeCount      `json:"users_by_type"`
	RecentRegistrations int64            `json:"recent_registrations"`
}

// references collects the resolved foreign keys of a write payload.
type references struct {
	documentTypeID    uint
	userTypeID        uint
	institutionID     *uint
	academicProgramID *uint
	genderID          *uint
}
