package catalog

import (
	"context"
	"errors"
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

var programDescriptor = Descriptor{
	Kind:          "academic program",
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
			Column:   "academic_program_id",
			Message:  "cannot delete academic program: it has users assigned",
			OnlyLive: true,
		},
	},
}

type ProgramService interface {
	Create(ctx context.Context, input ProgramInput) (*ProgramDTO, error)
	Get(ctx context.Context, token string) (*ProgramDTO, error)
	Update(ctx context.Context, token string, input ProgramInput) (*ProgramDTO, error)
	Delete(ctx context.Context, token string) error
	List(ctx context.Context, query ListQuery, institutionToken string) ([]ProgramDTO, pagination.Meta, error)
	Options(ctx context.Context) ([]Option, error)
	ByInstitution(ctx context.Context, institutionToken string) ([]Option, error)
}

type programService struct {
	repo *Repository[models.AcademicProgram]
	logg *logger.Logger
}

func NewProgramService(database *gorm.DB, logg *logger.Logger) ProgramService {
	return &programService{
		repo: NewRepository[models.AcademicProgram](database, programDescriptor),
		logg: logg,
	}
}

// resolveInstitution maps an institution token from a payload or query to
// its surrogate ID. A token that resolves to nothing is a validation
// problem, not a missing resource: the program routes do not expose
// institutions.
func (s *programService) resolveInstitution(ctx context.Context, token string) (uint, error) {
	institution, err := Resolve[models.Institution](ctx, s.repo.DB(), token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.New(apperrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"institution_id": "selected institution does not exist"})
		}
		return 0, apperrors.Wrap(apperrors.CodeInternal, err, "resolve institution")
	}
	return institution.ID, nil
}

func (s *programService) checkCode(ctx context.Context, code string, excludeID uint) error {
	taken, err := s.repo.ValueTaken(ctx, "code", code, excludeID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "check program code")
	}
	if taken {
		return apperrors.New(apperrors.CodeConflict, "academic program already exists").
			WithDetails(map[string]string{"code": "has already been taken"})
	}
	return nil
}

func (s *programService) Create(ctx context.Context, input ProgramInput) (*ProgramDTO, error) {
	institutionID, err := s.resolveInstitution(ctx, input.InstitutionID)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if err := s.checkCode(ctx, code, 0); err != nil {
		return nil, err
	}

	entity := models.AcademicProgram{
		UUID:          uuid.New(),
		Name:          input.Name,
		Code:          code,
		Description:   input.Description,
		InstitutionID: institutionID,
	}
	if err := s.repo.Create(ctx, &entity); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.Wrap(apperrors.CodeConflict, err, "academic program already exists")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "create academic program")
	}

	logCtx := s.logg.WithField(ctx, "program_id", entity.ID)
	s.logg.Info(logCtx, "academic program created")
	dto := newProgramDTO(&entity)
	return &dto, nil
}

func (s *programService) Get(ctx context.Context, token string) (*ProgramDTO, error) {
	entity, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, lookupError(err, "academic program")
	}

	dto := newProgramDTO(entity)
	if err := s.attachInstitutionNames(ctx, nil, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *programService) Update(ctx context.Context, token string, input ProgramInput) (*ProgramDTO, error) {
	entity, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, lookupError(err, "academic program")
	}

	institutionID, err := s.resolveInstitution(ctx, input.InstitutionID)
	if err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if err := s.checkCode(ctx, code, entity.ID); err != nil {
		return nil, err
	}

	entity.Name = input.Name
	entity.Code = code
	entity.Description = input.Description
	entity.InstitutionID = institutionID
	if err := s.repo.Save(ctx, entity); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.Wrap(apperrors.CodeConflict, err, "academic program already exists")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "update academic program")
	}

	dto := newProgramDTO(entity)
	return &dto, nil
}

func (s *programService) Delete(ctx context.Context, token string) error {
	entity, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return lookupError(err, "academic program")
	}

	blocked, err := s.repo.DeleteGuarded(ctx, entity, entity.ID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "delete academic program")
	}
	if blocked != "" {
		return apperrors.New(apperrors.CodeConflict, blocked)
	}

	logCtx := s.logg.WithField(ctx, "program_id", entity.ID)
	s.logg.Info(logCtx, "academic program deleted")
	return nil
}

func (s *programService) List(ctx context.Context, query ListQuery, institutionToken string) ([]ProgramDTO, pagination.Meta, error) {
	if institutionToken != "" {
		institutionID, err := s.resolveInstitution(ctx, institutionToken)
		if err != nil {
			return nil, pagination.Meta{}, err
		}
		if query.Exact == nil {
			query.Exact = map[string]any{}
		}
		query.Exact["institution_id"] = institutionID
	}

	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pagination.Meta{}, apperrors.Wrap(apperrors.CodeInternal, err, "list academic programs")
	}

	dtos := make([]ProgramDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, newProgramDTO(&rows[i]))
	}
	if err := s.attachInstitutionNames(ctx, dtos, nil); err != nil {
		return nil, pagination.Meta{}, err
	}
	return dtos, pagination.NewMeta(query.Page, total), nil
}

// attachInstitutionNames fills InstitutionName on the given DTOs with one
// query instead of a lookup per row.
func (s *programService) attachInstitutionNames(ctx context.Context, dtos []ProgramDTO, single *ProgramDTO) error {
	ids := make([]uint, 0, len(dtos)+1)
	for i := range dtos {
		ids = append(ids, dtos[i].InstitutionID)
	}
	if single != nil {
		ids = append(ids, single.InstitutionID)
	}
	if len(ids) == 0 {
		return nil
	}

	var rows []models.Institution
	err := s.repo.DB().WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "load program institutions")
	}

	names := make(map[uint]string, len(rows))
	for i := range rows {
		names[rows[i].ID] = rows[i].Name
	}
	for i := range dtos {
		if name, ok := names[dtos[i].InstitutionID]; ok {
			n := name
			dtos[i].Institution = &n
		}
	}
	if single != nil {
		if name, ok := names[single.InstitutionID]; ok {
			n := name
			single.Institution = &n
		}
	}
	return nil
}

func (s *programService) Options(ctx context.Context) ([]Option, error) {
	rows, err := s.repo.ListAll(ctx, "name asc")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "list program options")
	}
	return programOptions(rows), nil
}

// ByInstitution returns the select options scoped to one institution. An
// empty token yields an empty list so a form can render before an
// institution is chosen.
func (s *programService) ByInstitution(ctx context.Context, institutionToken string) ([]Option, error) {
	if strings.TrimSpace(institutionToken) == "" {
		return []Option{}, nil
	}

	institution, err := Resolve[models.Institution](ctx, s.repo.DB(), institutionToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []Option{}, nil
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "resolve institution")
	}

	var rows []models.AcademicProgram
	err = s.repo.DB().WithContext(ctx).
		Where("institution_id = ?", institution.ID).
		Order("name asc").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "list programs by institution")
	}
	return programOptions(rows), nil
}

func programOptions(rows []models.AcademicProgram) []Option {
	options := make([]Option, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		options = append(options, Option{
			ID:          row.ID,
			UUID:        row.UUID,
			DisplayName: fmt.Sprintf("%s (%s)", row.Name, row.Code),
		})
	}
	return options
}
