package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/andresfq/registry-backend/pkg/pagination"
)

// DependentCheck describes one table that can block a delete. OnlyLive
// restricts the count to rows that have not been soft deleted.
type DependentCheck struct {
	Table    string
	Column   string
	Message  string
	OnlyLive bool
}

// Descriptor carries the per-table knobs the generic repository needs.
// Columns named here are the only ones list queries may filter or sort by.
type Descriptor struct {
	Kind          string
	SearchColumns []string
	SortColumns   map[string]bool
	DefaultSort   string
	Dependents    []DependentCheck
}

// ListQuery is a normalized list request: exact and substring column
// filters, a free-text search OR-matched across SearchColumns, and
// whitelisted sorting.
type ListQuery struct {
	Filters   map[string]string
	Exact     map[string]any
	Search    string
	SortBy    string
	SortOrder string
	Page      pagination.Params
}

// Repository implements the shared persistence behavior of the reference
// tables. Entity-specific queries live in the services built on top of it.
type Repository[T any] struct {
	db   *gorm.DB
	desc Descriptor
}

func NewRepository[T any](db *gorm.DB, desc Descriptor) *Repository[T] {
	if desc.DefaultSort == "" {
		desc.DefaultSort = "id"
	}
	return &Repository[T]{db: db, desc: desc}
}

func (r *Repository[T]) DB() *gorm.DB { return r.db }

func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

func (r *Repository[T]) Save(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Save(entity).Error
}

// FindByToken resolves a row by public UUID or surrogate ID, whichever the
// token parses as.
func (r *Repository[T]) FindByToken(ctx context.Context, token string) (*T, error) {
	return Resolve[T](ctx, r.db, token)
}

// ValueTaken reports whether another row already holds value in column.
// Pass excludeID on updates so a row does not collide with itself.
func (r *Repository[T]) ValueTaken(ctx context.Context, column string, value any, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(new(T)).Where(fmt.Sprintf("%s = ?", column), value)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteGuarded removes the row unless a dependent table still references
// it. Checks and delete run in one transaction so a dependent created
// concurrently cannot slip past the guard. A non-empty message means the
// delete was blocked.
func (r *Repository[T]) DeleteGuarded(ctx context.Context, entity *T, id uint) (string, error) {
	var blocked string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dep := range r.desc.Dependents {
			var count int64
			q := tx.Table(dep.Table).Where(dep.Column+" = ?", id)
			if dep.OnlyLive {
				q = q.Where("deleted_at IS NULL")
			}
			if err := q.Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				blocked = dep.Message
				return nil
			}
		}
		return tx.Delete(entity).Error
	})
	return blocked, err
}

// List applies the query's filters, search, sorting and pagination and
// returns the page plus the total row count before paging.
func (r *Repository[T]) List(ctx context.Context, query ListQuery) ([]T, int64, error) {
	q := r.db.WithContext(ctx).Model(new(T))

	for column, value := range query.Exact {
		q = q.Where(fmt.Sprintf("%s = ?", column), value)
	}
	for column, value := range query.Filters {
		if value == "" {
			continue
		}
		q = q.Where(fmt.Sprintf("%s LIKE ?", column), "%"+value+"%")
	}
	if query.Search != "" && len(r.desc.SearchColumns) > 0 {
		pattern := "%" + query.Search + "%"
		or := r.db.Where(fmt.Sprintf("%s LIKE ?", r.desc.SearchColumns[0]), pattern)
		for _, column := range r.desc.SearchColumns[1:] {
			or = or.Or(fmt.Sprintf("%s LIKE ?", column), pattern)
		}
		q = q.Where(or)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := query.SortBy
	if !r.desc.SortColumns[sortBy] {
		sortBy = r.desc.DefaultSort
	}
	order := "asc"
	if query.SortOrder == "desc" {
		order = "desc"
	}
	page := query.Page.Normalize()

	var rows []T
	err := q.Order(fmt.Sprintf("%s %s", sortBy, order)).
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListAll returns every row ordered by orderBy. Used by the select-option
// endpoints, which never paginate.
func (r *Repository[T]) ListAll(ctx context.Context, orderBy string) ([]T, error) {
	var rows []T
	err := r.db.WithContext(ctx).Order(orderBy).Find(&rows).Error
	return rows, err
}
