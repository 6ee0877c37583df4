package catalog

import (
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/andresfq/registry-backend/pkg/errors"
)

// lookupError translates a resolver failure into the typed error the
// transport layer maps to a status code.
func lookupError(err error, kind string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.New(apperrors.CodeNotFound, kind+" not found")
	}
	return apperrors.Wrap(apperrors.CodeInternal, err, "find "+kind)
}
