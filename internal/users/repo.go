package users

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andresfq/registry-backend/internal/catalog"
	"github.com/andresfq/registry-backend/pkg/db/models"
	"github.com/andresfq/registry-backend/pkg/enums"
)

// userSortColumns whitelists what a list query may order by.
var userSortColumns = map[string]bool{
	"id":         true,
	"first_name": true,
	"last_name":  true,
	"email":      true,
	"status":     true,
	"created_at": true,
}

// listFilters is the repository-level form of ListOptions, with foreign
// key tokens already resolved to surrogate IDs.
type listFilters struct {
	Search        string
	Status        string
	UserTypeID    uint
	InstitutionID uint
	SortBy        string
	SortOrder     string
	Offset        int
	Limit         int
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(database *gorm.DB) *Repository {
	return &Repository{db: database}
}

func (r *Repository) DB() *gorm.DB { return r.db }

func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *Repository) Save(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *Repository) FindByToken(ctx context.Context, token string) (*models.User, error) {
	return catalog.Resolve[models.User](ctx, r.db, token)
}

func (r *Repository) Delete(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Delete(user).Error
}

// ValueTaken reports whether a live user other than excludeID already holds
// value in column. Soft-deleted rows do not count.
func (r *Repository) ValueTaken(ctx context.Context, column string, value string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.User{}).Where(fmt.Sprintf("%s = ?", column), value)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) List(ctx context.Context, filters listFilters) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})

	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		q = q.Where(
			r.db.Where("first_name LIKE ?", pattern).
				Or("last_name LIKE ?", pattern).
				Or("email LIKE ?", pattern).
				Or("document_number LIKE ?", pattern),
		)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.UserTypeID != 0 {
		q = q.Where("user_type_id = ?", filters.UserTypeID)
	}
	if filters.InstitutionID != 0 {
		q = q.Where("institution_id = ?", filters.InstitutionID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := filters.SortBy
	if !userSortColumns[sortBy] {
		sortBy = "created_at"
	}
	order := "desc"
	if filters.SortOrder == "asc" {
		order = "asc"
	}

	var rows []models.User
	err := q.Order(fmt.Sprintf("%s %s", sortBy, order)).
		Offset(filters.Offset).
		Limit(filters.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ResolveMany resolves a batch of lookup tokens. Unresolvable tokens come
// back separately so the caller can reject the whole request.
func (r *Repository) ResolveMany(ctx context.Context, tokens []string) ([]models.User, []string, error) {
	found := make([]models.User, 0, len(tokens))
	seen := make(map[uint]bool, len(tokens))
	var missing []string

	for _, token := range tokens {
		user, err := catalog.Resolve[models.User](ctx, r.db, token)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				missing = append(missing, token)
				continue
			}
			return nil, nil, err
		}
		if seen[user.ID] {
			continue
		}
		seen[user.ID] = true
		found = append(found, *user)
	}
	return found, missing, nil
}

func (r *Repository) UpdateStatus(tx *gorm.DB, ids []uint, status enums.UserStatus) (int64, error) {
	res := tx.Model(&models.User{}).Where("id IN ?", ids).Update("status", status)
	return res.RowsAffected, res.Error
}

func (r *Repository) SoftDelete(tx *gorm.DB, ids []uint) (int64, error) {
	res := tx.Where("id IN ?", ids).Delete(&models.User{})
	return res.RowsAffected, res.Error
}

func (r *Repository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *Repository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byStatus := make(map[string]int64, len(rows))
	for _, row := range rows {
		byStatus[row.Status] = row.Count
	}
	return byStatus, nil
}

func (r *Repository) CountByType(ctx context.Context) ([]TypeCount, error) {
	var rows []TypeCount
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("users.user_type_id, user_types.type, count(*) as count").
		Joins("JOIN user_types ON user_types.id = users.user_type_id").
		Group("users.user_type_id, user_types.type").
		Order("count desc").
		Scan(&rows).Error
	return rows, err
}

func (r *Repository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}
