package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "github.com/andresfq/registry-backend/pkg/errors"
	"github.com/andresfq/registry-backend/pkg/logger"
)

func newProgramTestServices(t *testing.T) (*gorm.DB, InstitutionService, ProgramService) {
	t.Helper()
	database := setupCatalogTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "test"})
	return database, NewInstitutionService(database, logg), NewProgramService(database, logg)
}

func TestProgramCreateUppercasesCode(t *testing.T) {
	_, institutions, programs := newProgramTestServices(t)

	institution, err := institutions.Create(context.Background(), InstitutionInput{Name: "Tech Institute", City: "Medellin", Country: "Colombia"})
	require.NoError(t, err)

	created, err := programs.Create(context.Background(), ProgramInput{
		Name:          "Systems Engineering",
		Code:          "  sys-01 ",
		InstitutionID: institution.UUID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "SYS-01", created.Code)
	assert.Equal(t, institution.ID, created.InstitutionID)
}

func TestProgramCreateUnknownInstitution(t *testing.T) {
	_, _, programs := newProgramTestServices(t)

	_, err := programs.Create(context.Background(), ProgramInput{
		Name:          "Systems Engineering",
		Code:          "SYS-01",
		InstitutionID: "999",
	})
	require.Error(t, err)
	typed := apperrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperrors.CodeValidation, typed.Code())
}

func TestProgramCreateDuplicateCode(t *testing.T) {
	_, institutions, programs := newProgramTestServices(t)

	institution, err := institutions.Create(context.Background(), InstitutionInput{Name: "Tech Institute", City: "Medellin", Country: "Colombia"})
	require.NoError(t, err)

	input := ProgramInput{Name: "Systems Engineering", Code: "SYS-01", InstitutionID: institution.UUID.String()}
	_, err = programs.Create(context.Background(), input)
	require.NoError(t, err)

	// case difference still collides after normalization
	input.Name = "Other Program"
	input.Code = "sys-01"
	_, err = programs.Create(context.Background(), input)
	require.Error(t, err)
	typed := apperrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperrors.CodeConflict, typed.Code())
}

func TestProgramGetIncludesInstitutionName(t *testing.T) {
	_, institutions, programs := newProgramTestServices(t)

	institution, err := institutions.Create(context.Background(), InstitutionInput{Name: "Tech Institute", City: "Medellin", Country: "Colombia"})
	require.NoError(t, err)
	created, err := programs.Create(context.Background(), ProgramInput{
		Name:          "Systems Engineering",
		Code:          "SYS-01",
		InstitutionID: institution.UUID.String(),
	})
	require.NoError(t, err)

	fetched, err := programs.Get(context.Background(), created.UUID.String())
	require.NoError(t, err)
	require.NotNil(t, fetched.Institution)
	assert.Equal(t, "Tech Institute", *fetched.Institution)
}

func TestProgramListScopedToInstitution(t *testing.T) {
	_, institutions, programs := newProgramTestServices(t)

	first, err := institutions.Create(context.Background(), InstitutionInput{Name: "Tech Institute", City: "Medellin", Country: "Colombia"})
	require.NoError(t, err)
	second, err := institutions.Create(context.Background(), InstitutionInput{Name: "Coastal College", City: "Lima", Country: "Peru"})
	require.NoError(t, err)

	_, err = programs.Create(context.Background(), ProgramInput{Name: "Systems Engineering", Code: "SYS-01", InstitutionID: first.UUID.String()})
	require.NoError(t, err)
	_, err = programs.Create(context.Background(), ProgramInput{Name: "Marine Biology", Code: "BIO-01", InstitutionID: second.UUID.String()})
	require.NoError(t, err)

	items, _, err := programs.List(context.Background(), ListQuery{}, first.UUID.String())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Systems Engineering", items[0].Name)
}

func TestProgramByInstitution(t *testing.T) {
	_, institutions, programs := newProgramTestServices(t)

	institution, err := institutions.Create(context.Background(), InstitutionInput{Name: "Tech Institute", City: "Medellin", Country: "Colombia"})
	require.NoError(t, err)
	_, err = programs.Create(context.Background(), ProgramInput{Name: "Systems Engineering", Code: "SYS-01", InstitutionID: institution.UUID.String()})
	require.NoError(t, err)

	options, err := programs.ByInstitution(context.Background(), institution.UUID.String())
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "Systems Engineering (SYS-01)", options[0].DisplayName)

	// no institution chosen yet renders an empty dropdown
	options, err = programs.ByInstitution(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, options)

	// unknown institutions behave the same way
	options, err = programs.ByInstitution(context.Background(), "999")
	require.NoError(t, err)
	assert.Empty(t, options)
}

func TestProgramDeleteFreesCode(t *testing.T) {
	_, institutions, programs := newProgramTestServices(t)

	institution, err := institutions.Create(context.Background(), InstitutionInput{Name: "Tech Institute", City: "Medellin", Country: "Colombia"})
	require.NoError(t, err)
	created, err := programs.Create(context.Background(), ProgramInput{Name: "Systems Engineering", Code: "SYS-01", InstitutionID: institution.UUID.String()})
	require.NoError(t, err)

	require.NoError(t, programs.Delete(context.Background(), created.UUID.String()))

	_, err = programs.Create(context.Background(), ProgramInput{Name: "Systems Engineering", Code: "SYS-01", InstitutionID: institution.UUID.String()})
	require.NoError(t, err)
}
