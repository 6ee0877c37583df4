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

var userTypeDescriptor = Descriptor{
	Kind:          "user type",
	SearchColumns: []string{"type"},
	SortColumns: map[string]bool{
		"id":         true,
		"type":       true,
		"created_at": true,
	},
	DefaultSort: "type",
	Dependents: []DependentCheck{
		{
			Table:    "users",
			Column:   "user_type_id",
			Message:  "cannot delete user type: it has users assigned",
			OnlyLive: true,
		},
	},
}

type UserTypeService interface {
	Create(ctx context.Context, input UserTypeInput) (*UserTypeDTO, error)
	Get(ctx context.Context, token string) (*UserTypeDTO, error)
	Update(ctx context.Context, token string, input UserTypeInput) (*UserTypeDTO, error)
	Delete(ctx context.Context, token string) error
	List(ctx context.Context, query ListQuery) ([]UserTypeDTO, pagination.Meta, error)
	Options(ctx context.Context) ([]Option, error)
}

type userTypeService struct {
	repo *Repository[models.UserType]
	logg *logger.Logger
}

func NewUserTypeService(database *gorm.DB, logg *logger.Logger) UserTypeService {
	return &userTypeService{
		repo: NewRepository[models.UserType](database, userTypeDescriptor),
		logg: logg,
	}
}

func (s *userTypeService) checkUnique(ctx context.Context, typeName string, excludeID uint) error {
	taken, err := s.repo.ValueTaken(ctx, "type", typeName, excludeID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "check user type")
	}
	if taken {
		return apperrors.New(apperrors.CodeConflict, "user type already exists").
			WithDetails(map[string]string{"type": "has already been taken"})
	}
	return nil
}

func (s *userTypeService) Create(ctx context.Context, input UserTypeInput) (*UserTypeDTO, error) {
	if err := s.checkUnique(ctx, input.Type, 0); err != nil {
		return nil, err
	}

	entity := models.UserType{
		UUID:        uuid.New(),
		Type:        input.Type,
		Description: input.Description,
	}
	if err := s.repo.Create(ctx, &entity); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.Wrap(apperrors.CodeConflict, err, "user type already exists")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "create user type")
	}

	logCtx := s.logg.WithField(ctx, "user_type_id", entity.ID)
	s.logg.Info(logCtx, "user type created")
	dto := newUserTypeDTO(&entity)
	return &dto, nil
}

func (s *userTypeService) Get(ctx context.Context, token string) (*UserTypeDTO, error) {
	entity, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, lookupError(err, "user type")
	}
	dto := newUserTypeDTO(entity)
	return &dto, nil
}

func (s *userTypeService) Update(ctx context.Context, token string, input UserTypeInput) (*UserTypeDTO, error) {
	entity, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, lookupError(err, "user type")
	}
	if err := s.checkUnique(ctx, input.Type, entity.ID); err != nil {
		return nil, err
	}

	entity.Type = input.Type
	entity.Description = input.Description
	if err := s.repo.Save(ctx, entity); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.Wrap(apperrors.CodeConflict, err, "user type already exists")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "update user type")
	}

	dto := newUserTypeDTO(entity)
	return &dto, nil
}

func (s *userTypeService) Delete(ctx context.Context, token string) error {
	entity, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return lookupError(err, "user type")
	}

	blocked, err := s.repo.DeleteGuarded(ctx, entity, entity.ID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "delete user type")
	}
	if blocked != "" {
		return apperrors.New(apperrors.CodeConflict, blocked)
	}

	logCtx := s.logg.WithField(ctx, "user_type_id", entity.ID)
	s.logg.Info(logCtx, "user type deleted")
	return nil
}

func (s *userTypeService) List(ctx context.Context, query ListQuery) ([]UserTypeDTO, pagination.Meta, error) {
	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pagination.Meta{}, apperrors.Wrap(apperrors.CodeInternal, err, "list user types")
	}

	dtos := make([]UserTypeDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, newUserTypeDTO(&rows[i]))
	}
	return dtos, pagination.NewMeta(query.Page, total), nil
}

func (s *userTypeService) Options(ctx context.Context) ([]Option, error) {
	rows, err := s.repo.ListAll(ctx, "type asc")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "list user type options")
	}

	options := make([]Option, 0, len(rows))
	for i := range rows {
		options = append(options, Option{ID: rows[i].ID, UUID: rows[i].UUID, DisplayName: rows[i].Type})
	}
	return options, nil
}
