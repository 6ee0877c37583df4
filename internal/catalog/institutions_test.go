package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/andresfq/registry-backend/pkg/errors"
	"github.com/andresfq/registry-backend/pkg/logger"
	"github.com/andresfq/registry-backend/pkg/pagination"
)

func newInstitutionTestService(t *testing.T) InstitutionService {
	t.Helper()
	return NewInstitutionService(setupCatalogTestDB(t), logger.New(logger.Options{ServiceName: "test"}))
}

func TestInstitutionCreateAndGet(t *testing.T) {
	svc := newInstitutionTestService(t)

	acronym := "NU"
	created, err := svc.Create(context.Background(), InstitutionInput{
		Name:    "National University",
		Acronym: &acronym,
		City:    "Bogota",
		Country: "Colombia",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.NotEqual(t, "", created.UUID.String())

	fetched, err := svc.Get(context.Background(), created.UUID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	require.NotNil(t, fetched.ProgramsCount)
	assert.Equal(t, int64(0), *fetched.ProgramsCount)
	require.NotNil(t, fetched.UsersCount)
	assert.Equal(t, int64(0), *fetched.UsersCount)
}

func TestInstitutionCreateDuplicateName(t *testing.T) {
	svc := newInstitutionTestService(t)

	input := InstitutionInput{Name: "National University", City: "Bogota", Country: "Colombia"}
	_, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), input)
	require.Error(t, err)
	typed := apperrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperrors.CodeConflict, typed.Code())

	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "name")
}

func TestInstitutionUpdateKeepsOwnName(t *testing.T) {
	svc := newInstitutionTestService(t)

	created, err := svc.Create(context.Background(), InstitutionInput{Name: "Tech Institute", City: "Medellin", Country: "Colombia"})
	require.NoError(t, err)

	// same name on the same row is not a conflict
	updated, err := svc.Update(context.Background(), created.UUID.String(), InstitutionInput{
		Name:    "Tech Institute",
		City:    "Envigado",
		Country: "Colombia",
	})
	require.NoError(t, err)
	assert.Equal(t, "Envigado", updated.City)
}

func TestInstitutionGetNotFound(t *testing.T) {
	svc := newInstitutionTestService(t)

	_, err := svc.Get(context.Background(), "12345")
	require.Error(t, err)
	typed := apperrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperrors.CodeNotFound, typed.Code())
}

func TestInstitutionDeleteBlockedByProgram(t *testing.T) {
	database := setupCatalogTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "test"})
	institutions := NewInstitutionService(database, logg)
	programs := NewProgramService(database, logg)

	created, err := institutions.Create(context.Background(), InstitutionInput{Name: "Tech Institute", City: "Medellin", Country: "Colombia"})
	require.NoError(t, err)

	_, err = programs.Create(context.Background(), ProgramInput{
		Name:          "Systems Engineering",
		Code:          "sys-01",
		InstitutionID: created.UUID.String(),
	})
	require.NoError(t, err)

	err = institutions.Delete(context.Background(), created.UUID.String())
	require.Error(t, err)
	typed := apperrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperrors.CodeConflict, typed.Code())
}

func TestInstitutionOptionsDisplayName(t *testing.T) {
	svc := newInstitutionTestService(t)

	acronym := "TI"
	_, err := svc.Create(context.Background(), InstitutionInput{Name: "Tech Institute", Acronym: &acronym, City: "Medellin", Country: "Colombia"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), InstitutionInput{Name: "Coastal College", City: "Lima", Country: "Peru"})
	require.NoError(t, err)

	options, err := svc.Options(context.Background())
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, "Coastal College", options[0].DisplayName)
	assert.Equal(t, "Tech Institute (TI)", options[1].DisplayName)
}

func TestInstitutionByCountry(t *testing.T) {
	svc := newInstitutionTestService(t)

	_, err := svc.Create(context.Background(), InstitutionInput{Name: "Tech Institute", City: "Medellin", Country: "Colombia"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), InstitutionInput{Name: "Coastal College", City: "Lima", Country: "Peru"})
	require.NoError(t, err)

	items, err := svc.ByCountry(context.Background(), "Colombia")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Tech Institute", items[0].Name)
}

func TestInstitutionStats(t *testing.T) {
	svc := newInstitutionTestService(t)

	_, err := svc.Create(context.Background(), InstitutionInput{Name: "Tech Institute", City: "Medellin", Country: "Colombia"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), InstitutionInput{Name: "National University", City: "Bogota", Country: "Colombia"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), InstitutionInput{Name: "Coastal College", City: "Lima", Country: "Peru"})
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalInstitutions)
	assert.Equal(t, int64(2), stats.TotalCountries)
	assert.Equal(t, int64(3), stats.TotalCities)
	require.NotEmpty(t, stats.InstitutionsByCountry)
	assert.Equal(t, "Colombia", stats.InstitutionsByCountry[0].Country)
	assert.Equal(t, int64(2), stats.InstitutionsByCountry[0].Count)
	assert.Len(t, stats.Recent, 3)
}

func TestInstitutionListPaginationMeta(t *testing.T) {
	svc := newInstitutionTestService(t)

	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		_, err := svc.Create(context.Background(), InstitutionInput{Name: name, City: "X", Country: "Y"})
		require.NoError(t, err)
	}

	items, meta, err := svc.List(context.Background(), ListQuery{Page: pagination.Params{Page: 2, PerPage: 2}})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 2, meta.CurrentPage)
	assert.Equal(t, int64(3), meta.Total)
	assert.Equal(t, 2, meta.LastPage)
}
