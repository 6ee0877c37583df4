package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andresfq/registry-backend/pkg/db"
	"github.com/andresfq/registry-backend/pkg/db/models"
	apperrors "github.com/andresfq/registry-backend/pkg/errors"
	"github.com/andresfq/registry-backend/pkg/logger"
	"github.com/andresfq/registry-backend/pkg/pagination"
)

var documentTypeDescriptor = Descriptor{
	Kind:          "document type",
	SearchColumns: []string{"name", "code"},
	SortColumns: map[string]bool{
		"id":         true,
		"name":       true,
		"code":       true,
		"created_at": true,
	},
	DefaultSort: "name",
	Dependents: []DependentCheck{
		{
			Table:    "users",
			Column:   "document_type_id",
			Message:  "cannot delete document type: it has users assigned",
			OnlyLive: true,
		},
	},
}

type DocumentTypeService interface {
	Create(ctx context.Context, input DocumentTypeInput) (*DocumentTypeDTO, error)
	Get(ctx context.Context, token string) (*DocumentTypeDTO, error)
	Update(ctx context.Context, token string, input DocumentTypeInput) (*DocumentTypeDTO, error)
	Delete(ctx context.Context, token string) error
	List(ctx context.Context, query ListQuery) ([]DocumentTypeDTO, pagination.Meta, error)
	Options(ctx context.Context) ([]Option, error)
}

type documentTypeService struct {
	repo *Repository[models.DocumentType]
	logg *logger.Logger
}

func NewDocumentTypeService(database *gorm.DB, logg *logger.Logger) DocumentTypeService {
	return &documentTypeService{
		repo: NewRepository[models.DocumentType](database, documentTypeDescriptor),
		logg: logg,
	}
}

func (s *documentTypeService) checkUnique(ctx context.Context, input DocumentTypeInput, excludeID uint) error {
	details := map[string]string{}

	taken, err := s.repo.ValueTaken(ctx, "name", input.Name, excludeID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "check document type name")
	}
	if taken {
		details["name"] = "has already been taken"
	}
	taken, err = s.repo.ValueTaken(ctx, "code", input.Code, excludeID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "check document type code")
	}
	if taken {
		details["code"] = "has already been taken"
	}
	if len(details) > 0 {
		return apperrors.New(apperrors.CodeConflict, "document type already exists").WithDetails(details)
	}
	return nil
}

func (s *documentTypeService) Create(ctx context.Context, input DocumentTypeInput) (*DocumentTypeDTO, error) {
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	if err := s.checkUnique(ctx, input, 0); err != nil {
		return nil, err
	}

	entity := models.DocumentType{
		UUID: uuid.New(),
		Name: input.Name,
		Code: input.Code,
	}
	if err := s.repo.Create(ctx, &entity); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.Wrap(apperrors.CodeConflict, err, "document type already exists")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "create document type")
	}

	logCtx := s.logg.WithField(ctx, "document_type_id", entity.ID)
	s.logg.Info(logCtx, "document type created")
	dto := newDocumentTypeDTO(&entity)
	return &dto, nil
}

func (s *documentTypeService) Get(ctx context.Context, token string) (*DocumentTypeDTO, error) {
	entity, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, lookupError(err, "document type")
	}
	dto := newDocumentTypeDTO(entity)
	return &dto, nil
}

func (s *documentTypeService) Update(ctx context.Context, token string, input DocumentTypeInput) (*DocumentTypeDTO, error) {
	entity, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, lookupError(err, "document type")
	}

	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	if err := s.checkUnique(ctx, input, entity.ID); err != nil {
		return nil, err
	}

	entity.Name = input.Name
	entity.Code = input.Code
	if err := s.repo.Save(ctx, entity); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.Wrap(apperrors.CodeConflict, err, "document type already exists")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "update document type")
	}

	dto := newDocumentTypeDTO(entity)
	return &dto, nil
}

func (s *documentTypeService) Delete(ctx context.Context, token string) error {
	entity, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return lookupError(err, "document type")
	}

	blocked, err := s.repo.DeleteGuarded(ctx, entity, entity.ID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "delete document type")
	}
	if blocked != "" {
		return apperrors.New(apperrors.CodeConflict, blocked)
	}

	logCtx := s.logg.WithField(ctx, "document_type_id", entity.ID)
	s.logg.Info(logCtx, "document type deleted")
	return nil
}

func (s *documentTypeService) List(ctx context.Context, query ListQuery) ([]DocumentTypeDTO, pagination.Meta, error) {
	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pagination.Meta{}, apperrors.Wrap(apperrors.CodeInternal, err, "list document types")
	}

	dtos := make([]DocumentTypeDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, newDocumentTypeDTO(&rows[i]))
	}
	return dtos, pagination.NewMeta(query.Page, total), nil
}

func (s *documentTypeService) Options(ctx context.Context) ([]Option, error) {
	rows, err := s.repo.ListAll(ctx, "name asc")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "list document type options")
	}

	options := make([]Option, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		options = append(options, Option{
			ID:          row.ID,
			UUID:        row.UUID,
			DisplayName: fmt.Sprintf("%s (%s)", row.Name, row.Code),
		})
	}
	return options, nil
}
