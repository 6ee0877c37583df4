package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andresfq/registry-backend/pkg/db"
	"github.com/andresfq/registry-backend/pkg/db/models"
	apperrors "github.com/andresfq/registry-backend/pkg/errors"
	"github.com/andresfq/registry-backend/pkg/logger"
	"github.com/andresfq/registry-backend/pkg/pagination"
)

var genderDescriptor = Descriptor{
	Kind:          "gender",
	SearchColumns: []string{"name"},
	SortColumns: map[string]bool{
		"id":         true,
		"name":       true,
		"created_at": true,
	},
	DefaultSort: "name",
	Dependents: []DependentCheck{
		{
			Table:    "users",
			Column:   "gender_id",
			Message:  "cannot delete gender: it has users assigned",
			OnlyLive: true,
		},
	},
}

type GenderService interface {
	Create(ctx context.Context, input GenderInput) (*GenderDTO, error)
	Get(ctx context.Context, token string) (*GenderDTO, error)
	Update(ctx context.Context, token string, input GenderInput) (*GenderDTO, error)
	Delete(ctx context.Context, token string) error
	List(ctx context.Context, query ListQuery) ([]GenderDTO, pagination.Meta, error)
	Options(ctx context.Context) ([]Option, error)
}

type genderService struct {
	repo *Repository[models.Gender]
	logg *logger.Logger
}

func NewGenderService(database *gorm.DB, logg *logger.Logger) GenderService {
	return &genderService{
		repo: NewRepository[models.Gender](database, genderDescriptor),
		logg: logg,
	}
}

func (s *genderService) checkUnique(ctx context.Context, name string, excludeID uint) error {
	taken, err := s.repo.ValueTaken(ctx, "name", name, excludeID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "check gender name")
	}
	if taken {
		return apperrors.New(apperrors.CodeConflict, "gender already exists").
			WithDetails(map[string]string{"name": "has already been taken"})
	}
	return nil
}

func (s *genderService) Create(ctx context.Context, input GenderInput) (*GenderDTO, error) {
	if err := s.checkUnique(ctx, input.Name, 0); err != nil {
		return nil, err
	}

	entity := models.Gender{UUID: uuid.New(), Name: input.Name}
	if err := s.repo.Create(ctx, &entity); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.Wrap(apperrors.CodeConflict, err, "gender already exists")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "create gender")
	}

	logCtx := s.logg.WithField(ctx, "gender_id", entity.ID)
	s.logg.Info(logCtx, "gender created")
	dto := newGenderDTO(&entity)
	return &dto, nil
}

func (s *genderService) Get(ctx context.Context, token string) (*GenderDTO, error) {
	entity, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, lookupError(err, "gender")
	}
	dto := newGenderDTO(entity)
	return &dto, nil
}

func (s *genderService) Update(ctx context.Context, token string, input GenderInput) (*GenderDTO, error) {
	entity, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, lookupError(err, "gender")
	}
	if err := s.checkUnique(ctx, input.Name, entity.ID); err != nil {
		return nil, err
	}

	entity.Name = input.Name
	if err := s.repo.Save(ctx, entity); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.Wrap(apperrors.CodeConflict, err, "gender already exists")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "update gender")
	}

	dto := newGenderDTO(entity)
	return &dto, nil
}

func (s *genderService) Delete(ctx context.Context, token string) error {
	entity, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return lookupError(err, "gender")
	}

	blocked, err := s.repo.DeleteGuarded(ctx, entity, entity.ID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "delete gender")
	}
	if blocked != "" {
		return apperrors.New(apperrors.CodeConflict, blocked)
	}

	logCtx := s.logg.WithField(ctx, "gender_id", entity.ID)
	s.logg.Info(logCtx, "gender deleted")
	return nil
}

func (s *genderService) List(ctx context.Context, query ListQuery) ([]GenderDTO, pagination.Meta, error) {
	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pagination.Meta{}, apperrors.Wrap(apperrors.CodeInternal, err, "list genders")
	}

	dtos := make([]GenderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, newGenderDTO(&rows[i]))
	}
	return dtos, pagination.NewMeta(query.Page, total), nil
}

func (s *genderService) Options(ctx context.Context) ([]Option, error) {
	rows, err := s.repo.ListAll(ctx, "name asc")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "list gender options")
	}

	options := make([]Option, 0, len(rows))
	for i := range rows {
		options = append(options, Option{ID: rows[i].ID, UUID: rows[i].UUID, DisplayName: rows[i].Name})
	}
	return options, nil
}
