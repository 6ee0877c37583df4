package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/andresfq/registry-backend/internal/catalog"
	"github.com/andresfq/registry-backend/pkg/config"
	"github.com/andresfq/registry-backend/pkg/db"
	"github.com/andresfq/registry-backend/pkg/db/models"
	"github.com/andresfq/registry-backend/pkg/enums"
	apperrors "github.com/andresfq/registry-backend/pkg/errors"
	"github.com/andresfq/registry-backend/pkg/logger"
	"github.com/andresfq/registry-backend/pkg/pagination"
	"github.com/andresfq/registry-backend/pkg/security"
	"github.com/andresfq/registry-backend/pkg/storage/photos"
)

type Service interface {
	Create(ctx context.Context, input UserInput) (*UserDTO, error)
	Get(ctx context.Context, token string) (*UserDTO, error)
	Update(ctx context.Context, token string, input UserInput) (*UserDTO, error)
	Delete(ctx context.Context, token string) error
	List(ctx context.Context, opts ListOptions) ([]UserDTO, pagination.Meta, error)
	ToggleStatus(ctx context.Context, token string) (*UserDTO, error)
	BulkAction(ctx context.Context, input BulkActionInput) (*BulkResult, error)
	Statistics(ctx context.Context) (*Statistics, error)
}

type service struct {
	repo        *Repository
	photos      *photos.Store
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

func NewService(database *gorm.DB, store *photos.Store, passwordCfg config.PasswordConfig, logg *logger.Logger) Service {
	return &service{
		repo:        NewRepository(database),
		photos:      store,
		passwordCfg: passwordCfg,
		logg:        logg,
	}
}

// resolveReferences maps the payload's foreign key tokens to surrogate IDs.
// Every unresolvable token is reported, not just the first.
func (s *service) resolveReferences(ctx context.Context, input UserInput) (references, error) {
	var refs references
	details := map[string]string{}

	if dt, err := catalog.Resolve[models.DocumentType](ctx, s.repo.DB(), input.DocumentTypeID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return refs, apperrors.Wrap(apperrors.CodeInternal, err, "resolve document type")
		}
		details["document_type_id"] = "selected document type does not exist"
	} else {
		refs.documentTypeID = dt.ID
	}

	if ut, err := catalog.Resolve[models.UserType](ctx, s.repo.DB(), input.UserTypeID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return refs, apperrors.Wrap(apperrors.CodeInternal, err, "resolve user type")
		}
		details["user_type_id"] = "selected user type does not exist"
	} else {
		refs.userTypeID = ut.ID
	}

	if input.InstitutionID != nil && strings.TrimSpace(*input.InstitutionID) != "" {
		if inst, err := catalog.Resolve[models.Institution](ctx, s.repo.DB(), *input.InstitutionID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return refs, apperrors.Wrap(apperrors.CodeInternal, err, "resolve institution")
			}
			details["institution_id"] = "selected institution does not exist"
		} else {
			refs.institutionID = &inst.ID
		}
	}

	if input.AcademicProgramID != nil && strings.TrimSpace(*input.AcademicProgramID) != "" {
		if prog, err := catalog.Resolve[models.AcademicProgram](ctx, s.repo.DB(), *input.AcademicProgramID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return refs, apperrors.Wrap(apperrors.CodeInternal, err, "resolve academic program")
			}
			details["academic_program_id"] = "selected academic program does not exist"
		} else {
			refs.academicProgramID = &prog.ID
		}
	}

	if input.GenderID != nil && strings.TrimSpace(*input.GenderID) != "" {
		if gender, err := catalog.Resolve[models.Gender](ctx, s.repo.DB(), *input.GenderID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return refs, apperrors.Wrap(apperrors.CodeInternal, err, "resolve gender")
			}
			details["gender_id"] = "selected gender does not exist"
		} else {
			refs.genderID = &gender.ID
		}
	}

	if len(details) > 0 {
		return refs, apperrors.New(apperrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return refs, nil
}

// checkUnique guards email and document number among live users, skipping
// the row being updated.
func (s *service) checkUnique(ctx context.Context, email, documentNumber string, excludeID uint) error {
	details := map[string]string{}

	taken, err := s.repo.ValueTaken(ctx, "email", email, excludeID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "check user email")
	}
	if taken {
		details["email"] = "has already been taken"
	}
	taken, err = s.repo.ValueTaken(ctx, "document_number", documentNumber, excludeID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "check user document number")
	}
	if taken {
		details["document_number"] = "has already been taken"
	}
	if len(details) > 0 {
		return apperrors.New(apperrors.CodeConflict, "user already exists").WithDetails(details)
	}
	return nil
}

func (s *service) applyInput(user *models.User, input UserInput, refs references) error {
	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Email = strings.ToLower(strings.TrimSpace(input.Email))
	user.DocumentTypeID = refs.documentTypeID
	user.UserTypeID = refs.userTypeID
	user.DocumentNumber = strings.TrimSpace(input.DocumentNumber)
	user.InstitutionID = refs.institutionID
	user.AcademicProgramID = refs.academicProgramID
	user.GenderID = refs.genderID
	user.CompanyName = input.CompanyName
	user.CompanyAddress = input.CompanyAddress

	if input.Birthdate != nil && *input.Birthdate != "" {
		birthdate, err := time.Parse("2006-01-02", *input.Birthdate)
		if err != nil {
			return apperrors.New(apperrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"birthdate": "must be a date in YYYY-MM-DD format"})
		}
		user.Birthdate = &birthdate
	} else {
		user.Birthdate = nil
	}

	if input.Status != nil {
		status, err := enums.ParseUserStatus(*input.Status)
		if err != nil {
			return apperrors.New(apperrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"status": "must be one of active, inactive, pending"})
		}
		user.Status = status
	}
	if input.AcceptedTerms != nil {
		user.AcceptedTerms = *input.AcceptedTerms
	}
	return nil
}

func (s *service) Create(ctx context.Context, input UserInput) (*UserDTO, error) {
	if input.Password == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"password": "password is required"})
	}

	refs, err := s.resolveReferences(ctx, input)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.checkUnique(ctx, email, strings.TrimSpace(input.DocumentNumber), 0); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "hash password")
	}

	user := models.User{
		UUID:         uuid.New(),
		PasswordHash: hash,
		ProfilePhoto: input.ProfilePhoto,
		Status:       enums.UserStatusPending,
	}
	if err := s.applyInput(&user, input, refs); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &user); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.Wrap(apperrors.CodeConflict, err, "user already exists")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "create user")
	}

	logCtx := s.logg.WithEntity(ctx, "user", user.UUID.String())
	s.logg.Info(logCtx, "user created")

	dto := newUserDTO(&user)
	if err := s.attachReferences(ctx, nil, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *service) Get(ctx context.Context, token string) (*UserDTO, error) {
	user, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, userLookupError(err)
	}

	dto := newUserDTO(user)
	if err := s.attachReferences(ctx, nil, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *service) Update(ctx context.Context, token string, input UserInput) (*UserDTO, error) {
	user, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, userLookupError(err)
	}

	refs, err := s.resolveReferences(ctx, input)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.checkUnique(ctx, email, strings.TrimSpace(input.DocumentNumber), user.ID); err != nil {
		return nil, err
	}

	if input.Password != "" {
		hash, err := security.HashPassword(input.Password, s.passwordCfg)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "hash password")
		}
		user.PasswordHash = hash
	}

	previousPhoto := user.ProfilePhoto
	user.ProfilePhoto = input.ProfilePhoto
	if err := s.applyInput(user, input, refs); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, user); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.Wrap(apperrors.CodeConflict, err, "user already exists")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "update user")
	}

	if previousPhoto != nil && (user.ProfilePhoto == nil || *user.ProfilePhoto != *previousPhoto) {
		s.removePhoto(ctx, *previousPhoto)
	}

	dto := newUserDTO(user)
	if err := s.attachReferences(ctx, nil, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, token string) error {
	user, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return userLookupError(err)
	}

	if err := s.repo.Delete(ctx, user); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "delete user")
	}
	if user.ProfilePhoto != nil {
		s.removePhoto(ctx, *user.ProfilePhoto)
	}

	logCtx := s.logg.WithEntity(ctx, "user", user.UUID.String())
	s.logg.Info(logCtx, "user deleted")
	return nil
}

// removePhoto is best effort: a stale file on disk never fails the request.
func (s *service) removePhoto(ctx context.Context, path string) {
	if s.photos == nil {
		return
	}
	if err := s.photos.Remove(path); err != nil {
		logCtx := s.logg.WithField(ctx, "photo", path)
		s.logg.Warn(logCtx, "profile photo cleanup failed")
	}
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]UserDTO, pagination.Meta, error) {
	filters := listFilters{
		Search:    strings.TrimSpace(opts.Search),
		SortBy:    opts.SortBy,
		SortOrder: opts.SortOrder,
		Offset:    opts.Page.Offset(),
		Limit:     opts.Page.Limit(),
	}

	if opts.Status != "" {
		status, err := enums.ParseUserStatus(opts.Status)
		if err != nil {
			return nil, pagination.Meta{}, apperrors.New(apperrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"status": "must be one of active, inactive, pending"})
		}
		filters.Status = status.String()
	}
	if opts.UserTypeToken != "" {
		ut, err := catalog.Resolve[models.UserType](ctx, s.repo.DB(), opts.UserTypeToken)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pagination.Meta{}, apperrors.Wrap(apperrors.CodeInternal, err, "resolve user type filter")
			}
			return nil, pagination.Meta{}, apperrors.New(apperrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"user_type_id": "selected user type does not exist"})
		}
		filters.UserTypeID = ut.ID
	}
	if opts.InstitutionToken != "" {
		inst, err := catalog.Resolve[models.Institution](ctx, s.repo.DB(), opts.InstitutionToken)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pagination.Meta{}, apperrors.Wrap(apperrors.CodeInternal, err, "resolve institution filter")
			}
			return nil, pagination.Meta{}, apperrors.New(apperrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"institution_id": "selected institution does not exist"})
		}
		filters.InstitutionID = inst.ID
	}

	rows, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pagination.Meta{}, apperrors.Wrap(apperrors.CodeInternal, err, "list users")
	}

	dtos := make([]UserDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, newUserDTO(&rows[i]))
	}
	if err := s.attachReferences(ctx, dtos, nil); err != nil {
		return nil, pagination.Meta{}, err
	}
	return dtos, pagination.NewMeta(opts.Page, total), nil
}

func (s *service) ToggleStatus(ctx context.Context, token string) (*UserDTO, error) {
	user, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, userLookupError(err)
	}

	user.Status = user.Status.Toggled()
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "toggle user status")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"user_id": user.ID, "status": user.Status.String()})
	s.logg.Info(logCtx, "user status toggled")

	dto := newUserDTO(user)
	if err := s.attachReferences(ctx, nil, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

// BulkAction applies one action to a batch of users atomically. If any
// token fails to resolve, nothing is changed.
func (s *service) BulkAction(ctx context.Context, input BulkActionInput) (*BulkResult, error) {
	action, err := enums.ParseBulkAction(input.Action)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"action": "must be one of activate, deactivate, delete"})
	}

	targets, missing, err := s.repo.ResolveMany(ctx, input.IDs)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "resolve bulk targets")
	}
	if len(missing) > 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "validation failed").
			WithDetails(map[string]any{"ids": missing})
	}

	ids := make([]uint, 0, len(targets))
	for i := range targets {
		ids = append(ids, targets[i].ID)
	}

	var affected int64
	err = s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		switch action {
		case enums.BulkActionActivate:
			affected, txErr = s.repo.UpdateStatus(tx, ids, enums.UserStatusActive)
		case enums.BulkActionDeactivate:
			affected, txErr = s.repo.UpdateStatus(tx, ids, enums.UserStatusInactive)
		case enums.BulkActionDelete:
			affected, txErr = s.repo.SoftDelete(tx, ids)
		}
		return txErr
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "apply bulk action")
	}

	if action == enums.BulkActionDelete {
		var cleanupErr error
		for i := range targets {
			if targets[i].ProfilePhoto == nil || s.photos == nil {
				continue
			}
			cleanupErr = multierr.Append(cleanupErr, s.photos.Remove(*targets[i].ProfilePhoto))
		}
		if cleanupErr != nil {
			logCtx := s.logg.WithField(ctx, "count", len(multierr.Errors(cleanupErr)))
			s.logg.Warn(logCtx, "bulk delete photo cleanup failed")
		}
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"action": action.String(), "affected": affected})
	s.logg.Info(logCtx, "bulk action applied")
	return &BulkResult{Action: action.String(), Affected: int(affected)}, nil
}

func (s *service) Statistics(ctx context.Context) (*Statistics, error) {
	stats := Statistics{ByType: []TypeCount{}}

	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "count users")
	}
	stats.TotalUsers = total

	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "count users by status")
	}
	stats.ByStatus = map[string]int64{}
	for _, status := range []enums.UserStatus{enums.UserStatusActive, enums.UserStatusInactive, enums.UserStatusPending} {
		stats.ByStatus[status.String()] = byStatus[status.String()]
	}

	byType, err := s.repo.CountByType(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "count users by type")
	}
	stats.ByType = byType

	recent, err := s.repo.CountCreatedSince(ctx, time.Now().AddDate(0, 0, -30))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "count recent registrations")
	}
	stats.RecentRegistrations = recent

	return &stats, nil
}

func userLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.New(apperrors.CodeNotFound, "user not found")
	}
	return apperrors.Wrap(apperrors.CodeInternal, err, "find user")
}

// attachReferences fills the related display names on the DTOs with one
// query per reference table.
func (s *service) attachReferences(ctx context.Context, dtos []UserDTO, single *UserDTO) error {
	all := dtos
	if single != nil {
		all = append(all, *single)
	}
	if len(all) == 0 {
		return nil
	}

	docTypes := map[uint]string{}
	userTypes := map[uint]string{}
	institutions := map[uint]string{}
	programs := map[uint]string{}
	genders := map[uint]string{}

	collect := func() (docIDs, typeIDs, instIDs, progIDs, genderIDs []uint) {
		for i := range all {
			docIDs = append(docIDs, all[i].DocumentTypeID)
			typeIDs = append(typeIDs, all[i].UserTypeID)
			if all[i].InstitutionID != nil {
				instIDs = append(instIDs, *all[i].InstitutionID)
			}
			if all[i].AcademicProgramID != nil {
				progIDs = append(progIDs, *all[i].AcademicProgramID)
			}
			if all[i].GenderID != nil {
				genderIDs = append(genderIDs, *all[i].GenderID)
			}
		}
		return
	}
	docIDs, typeIDs, instIDs, progIDs, genderIDs := collect()

	database := s.repo.DB().WithContext(ctx)

	var docRows []models.DocumentType
	if err := database.Where("id IN ?", docIDs).Find(&docRows).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "load document types")
	}
	for i := range docRows {
		docTypes[docRows[i].ID] = docRows[i].Name
	}

	var typeRows []models.UserType
	if err := database.Where("id IN ?", typeIDs).Find(&typeRows).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "load user types")
	}
	for i := range typeRows {
		userTypes[typeRows[i].ID] = typeRows[i].Type
	}

	if len(instIDs) > 0 {
		var instRows []models.Institution
		if err := database.Where("id IN ?", instIDs).Find(&instRows).Error; err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "load institutions")
		}
		for i := range instRows {
			institutions[instRows[i].ID] = instRows[i].Name
		}
	}
	if len(progIDs) > 0 {
		var progRows []models.AcademicProgram
		if err := database.Where("id IN ?", progIDs).Find(&progRows).Error; err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "load academic programs")
		}
		for i := range progRows {
			programs[progRows[i].ID] = progRows[i].Name
		}
	}
	if len(genderIDs) > 0 {
		var genderRows []models.Gender
		if err := database.Where("id IN ?", genderIDs).Find(&genderRows).Error; err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "load genders")
		}
		for i := range genderRows {
			genders[genderRows[i].ID] = genderRows[i].Name
		}
	}

	assign := func(dto *UserDTO) {
		if name, ok := docTypes[dto.DocumentTypeID]; ok {
			n := name
			dto.DocumentType = &n
		}
		if name, ok := userTypes[dto.UserTypeID]; ok {
			n := name
			dto.UserType = &n
		}
		if dto.InstitutionID != nil {
			if name, ok := institutions[*dto.InstitutionID]; ok {
				n := name
				dto.Institution = &n
			}
		}
		if dto.AcademicProgramID != nil {
			if name, ok := programs[*dto.AcademicProgramID]; ok {
				n := name
				dto.AcademicProgram = &n
			}
		}
		if dto.GenderID != nil {
			if name, ok := genders[*dto.GenderID]; ok {
				n := name
				dto.Gender = &n
			}
		}
	}
	for i := range dtos {
		assign(&dtos[i])
	}
	if single != nil {
		assign(single)
	}
	return nil
}
