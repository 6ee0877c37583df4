package controllers

import (
	"net/http"
	"strings"

	"github.com/andresfq/registry-backend/api/validators"
	"github.com/andresfq/registry-backend/internal/catalog"
)

// listQueryFromRequest assembles a catalog list query from the common
// query parameters plus the entity's substring filter keys.
func listQueryFromRequest(r *http.Request, filterKeys ...string) (catalog.ListQuery, error) {
	page, err := validators.ParsePagination(r)
	if err != nil {
		return catalog.ListQuery{}, err
	}
	sortBy, sortOrder := validators.ParseSort(r, "asc")

	query := catalog.ListQuery{
		Search:    strings.TrimSpace(r.URL.Query().Get("search")),
		SortBy:    sortBy,
		SortOrder: sortOrder,
		Page:      page,
	}
	for _, key := range filterKeys {
		value := strings.TrimSpace(r.URL.Query().Get(key))
		if value == "" {
			continue
		}
		if query.Filters == nil {
			query.Filters = map[string]string{}
		}
		query.Filters[key] = value
	}
	return query, nil
}
