package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andresfq/registry-backend/pkg/db"
	"github.com/andresfq/registry-backend/pkg/db/models"
	apperrors "github.com/andresfq/registry-backend/pkg/errors"
	"github.com/andresfq/registry-backend/pkg/logger"
	"github.com/andresfq/registry-backend/pkg/pagination"
)

var institutionDescriptor = Descriptor{
	Kind:          "institution",
	SearchColumns: []string{"name", "acronym", "city", "country"},
	SortColumns: map[string]bool{
		"id":         true,
		"name":       true,
		"city":       true,
		"country":    true,
		"created_at": true,
	},
	DefaultSort: "name",
	Dependents: []DependentCheck{
		{
			Table:   "academic_programs",
			Column:  "institution_id",
			Message: "cannot delete institution: it has academic programs assigned",
		},
		{
			Table:    "users",
			Column:   "institution_id",
			Message:  "cannot delete institution: it has users assigned",
			OnlyLive: true,
		},
	},
}

type InstitutionService interface {
	Create(ctx context.Context, input InstitutionInput) (*InstitutionDTO, error)
	Get(ctx context.Context, token string) (*InstitutionDTO, error)
	Update(ctx context.Context, token string, input InstitutionInput) (*InstitutionDTO, error)
	Delete(ctx context.Context, token string) error
	List(ctx context.Context, query ListQuery) ([]InstitutionDTO, pagination.Meta, error)
	Options(ctx context.Context) ([]Option, error)
	ByCountry(ctx context.Context, country string) ([]InstitutionDTO, error)
	Stats(ctx context.Context) (*InstitutionStats, error)
}

type institutionService struct {
	repo *Repository[models.Institution]
	logg *logger.Logger
}

func NewInstitutionService(database *gorm.DB, logg *logger.Logger) InstitutionService {
	return &institutionService{
		repo: NewRepository[models.Institution](database, institutionDescriptor),
		logg: logg,
	}
}

func (s *institutionService) checkUnique(ctx context.Context, input InstitutionInput, excludeID uint) error {
	details := map[string]string{}

	taken, err := s.repo.ValueTaken(ctx, "name", input.Name, excludeID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "check institution name")
	}
	if taken {
		details["name"] = "has already been taken"
	}
	if input.Acronym != nil && *input.Acronym != "" {
		taken, err := s.repo.ValueTaken(ctx, "acronym", *input.Acronym, excludeID)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "check institution acronym")
		}
		if taken {
			details["acronym"] = "has already been taken"
		}
	}
	if len(details) > 0 {
		return apperrors.New(apperrors.CodeConflict, "institution already exists").WithDetails(details)
	}
	return nil
}

func (s *institutionService) Create(ctx context.Context, input InstitutionInput) (*InstitutionDTO, error) {
	if err := s.checkUnique(ctx, input, 0); err != nil {
		return nil, err
	}

	entity := models.Institution{
		UUID:    uuid.New(),
		Name:    input.Name,
		Acronym: input.Acronym,
		City:    input.City,
		Country: input.Country,
	}
	if err := s.repo.Create(ctx, &entity); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.Wrap(apperrors.CodeConflict, err, "institution already exists")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "create institution")
	}

	logCtx := s.logg.WithField(ctx, "institution_id", entity.ID)
	s.logg.Info(logCtx, "institution created")
	dto := newInstitutionDTO(&entity)
	return &dto, nil
}

func (s *institutionService) Get(ctx context.Context, token string) (*InstitutionDTO, error) {
	entity, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, lookupError(err, "institution")
	}

	dto := newInstitutionDTO(entity)
	counts := []struct {
		table  string
		dest   **int64
		column string
		live   bool
	}{
		{"academic_programs", &dto.ProgramsCount, "institution_id", false},
		{"users", &dto.UsersCount, "institution_id", true},
	}
	for _, c := range counts {
		var n int64
		q := s.repo.DB().WithContext(ctx).Table(c.table).Where(c.column+" = ?", entity.ID)
		if c.live {
			q = q.Where("deleted_at IS NULL")
		}
		if err := q.Count(&n).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "count institution dependents")
		}
		*c.dest = &n
	}
	return &dto, nil
}

func (s *institutionService) Update(ctx context.Context, token string, input InstitutionInput) (*InstitutionDTO, error) {
	entity, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, lookupError(err, "institution")
	}
	if err := s.checkUnique(ctx, input, entity.ID); err != nil {
		return nil, err
	}

	entity.Name = input.Name
	entity.Acronym = input.Acronym
	entity.City = input.City
	entity.Country = input.Country
	if err := s.repo.Save(ctx, entity); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.Wrap(apperrors.CodeConflict, err, "institution already exists")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "update institution")
	}

	dto := newInstitutionDTO(entity)
	return &dto, nil
}

func (s *institutionService) Delete(ctx context.Context, token string) error {
	entity, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return lookupError(err, "institution")
	}

	blocked, err := s.repo.DeleteGuarded(ctx, entity, entity.ID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "delete institution")
	}
	if blocked != "" {
		return apperrors.New(apperrors.CodeConflict, blocked)
	}

	logCtx := s.logg.WithField(ctx, "institution_id", entity.ID)
	s.logg.Info(logCtx, "institution deleted")
	return nil
}

func (s *institutionService) List(ctx context.Context, query ListQuery) ([]InstitutionDTO, pagination.Meta, error) {
	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pagination.Meta{}, apperrors.Wrap(apperrors.CodeInternal, err, "list institutions")
	}

	dtos := make([]InstitutionDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, newInstitutionDTO(&rows[i]))
	}
	return dtos, pagination.NewMeta(query.Page, total), nil
}

func (s *institutionService) Options(ctx context.Context) ([]Option, error) {
	rows, err := s.repo.ListAll(ctx, "name asc")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "list institution options")
	}

	options := make([]Option, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		display := row.Name
		if row.Acronym != nil && *row.Acronym != "" {
			display = fmt.Sprintf("%s (%s)", row.Name, *row.Acronym)
		}
		options = append(options, Option{ID: row.ID, UUID: row.UUID, DisplayName: display})
	}
	return options, nil
}

func (s *institutionService) ByCountry(ctx context.Context, country string) ([]InstitutionDTO, error) {
	var rows []models.Institution
	err := s.repo.DB().WithContext(ctx).
		Where("country = ?", country).
		Order("name asc").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "list institutions by country")
	}

	dtos := make([]InstitutionDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, newInstitutionDTO(&rows[i]))
	}
	return dtos, nil
}

func (s *institutionService) Stats(ctx context.Context) (*InstitutionStats, error) {
	database := s.repo.DB().WithContext(ctx)
	stats := InstitutionStats{
		InstitutionsByCountry: []CountryCount{},
		Recent:                []InstitutionDTO{},
	}

	if err := database.Model(&models.Institution{}).Count(&stats.TotalInstitutions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "count institutions")
	}
	if err := database.Model(&models.Institution{}).Distinct("country").Count(&stats.TotalCountries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "count countries")
	}
	if err := database.Model(&models.Institution{}).Where("city <> ''").Distinct("city").Count(&stats.TotalCities).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "count cities")
	}

	err := database.Model(&models.Institution{}).
		Select("country, count(*) as count").
		Group("country").
		Order("count desc").
		Scan(&stats.InstitutionsByCountry).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "group institutions by country")
	}

	var recent []models.Institution
	if err := database.Order("created_at desc").Limit(5).Find(&recent).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "list recent institutions")
	}
	for i := range recent {
		stats.Recent = append(stats.Recent, newInstitutionDTO(&recent[i]))
	}
	return &stats, nil
}
