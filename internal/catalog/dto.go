package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/andresfq/registry-backend/pkg/db/models"
)

// Option is the shape of the select-list endpoints: just enough to render
// a dropdown.
type Option struct {
	ID          uint      `json:"id"`
	UUID        uuid.UUID `json:"uuid"`
	DisplayName string    `json:"display_name"`
}

type InstitutionInput struct {
	Name    string  `json:"name" validate:"required,max=255"`
	Acronym *string `json:"acronym" validate:"omitempty,max=50"`
	City    string  `json:"city" validate:"omitempty,max=255"`
	Country string  `json:"country" validate:"required,max=255"`
}

type InstitutionDTO struct {
	ID            uint      `json:"id"`
	UUID          uuid.UUID `json:"uuid"`
	Name          string    `json:"name"`
	Acronym       *string   `json:"acronym"`
	City          string    `json:"city"`
	Country       string    `json:"country"`
	ProgramsCount *int64    `json:"programs_count,omitempty"`
	UsersCount    *int64    `json:"users_count,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func newInstitutionDTO(m *models.Institution) InstitutionDTO {
	return InstitutionDTO{
		ID:        m.ID,
		UUID:      m.UUID,
		Name:      m.Name,
		Acronym:   m.Acronym,
		City:      m.City,
		Country:   m.Country,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// CountryCount is one row of the per-country institution breakdown.
type CountryCount struct {
	Country string `json:"country"`
	Count   int64  `json:"count"`
}

type InstitutionStats struct {
	TotalInstitutions     int64            `json:"total_institutions"`
	TotalCountries        int64            `json:"total_countries"`
	TotalCities           int64            `json:"total_cities"`
	InstitutionsByCountry []CountryCount   `json:"institutions_by_country"`
	Recent                []InstitutionDTO `json:"recent_institutions"`
}

type ProgramInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Code        string  `json:"code" validate:"required,max=50"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	// InstitutionID accepts a surrogate ID or a public UUID.
	InstitutionID string `json:"institution_id" validate:"required"`
}

type ProgramDTO struct {
	ID            uint      `json:"id"`
	UUID          uuid.UUID `json:"uuid"`
	Name          string    `json:"name"`
	Code          string    `json:"code"`
	Description   *string   `json:"description"`
	InstitutionID uint      `json:"institution_id"`
	Institution   *string   `json:"institution_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func newProgramDTO(m *models.AcademicProgram) ProgramDTO {
	return ProgramDTO{
		ID:            m.ID,
		UUID:          m.UUID,
		Name:          m.Name,
		Code:          m.Code,
		Description:   m.Description,
		InstitutionID: m.InstitutionID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

type DocumentTypeInput struct {
	Name string `json:"name" validate:"required,max=255"`
	Code string `json:"code" validate:"required,max=20"`
}

type DocumentTypeDTO struct {
	ID        uint      `json:"id"`
	UUID      uuid.UUID `json:"uuid"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newDocumentTypeDTO(m *models.DocumentType) DocumentTypeDTO {
	return DocumentTypeDTO{
		ID:        m.ID,
		UUID:      m.UUID,
		Name:      m.Name,
		Code:      m.Code,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type GenderInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

type GenderDTO struct {
	ID        uint      `json:"id"`
	UUID      uuid.UUID `json:"uuid"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newGenderDTO(m *models.Gender) GenderDTO {
	return GenderDTO{
		ID:        m.ID,
		UUID:      m.UUID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type UserTypeInput struct {
	Type        string  `json:"type" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

type UserTypeDTO struct {
	ID          uint      `json:"id"`
	UUID        uuid.UUID `json:"uuid"`
	Type        string    `json:"type"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newUserTypeDTO(m *models.UserType) UserTypeDTO {
	return UserTypeDTO{
		ID:          m.ID,
		UUID:        m.UUID,
		Type:        m.Type,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
