package catalog

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Resolve locates exactly one row of T from a lookup token. The public UUID
// branch is tried first, then the surrogate numeric ID; the branches are
// alternatives, so a token matching both resolves to the UUID row. Tokens
// that parse as neither, or match nothing, resolve to gorm.ErrRecordNotFound
// rather than a format error.
func Resolve[T any](ctx context.Context, db *gorm.DB, token string) (*T, error) {
	trimmed := strings.TrimSpace(token)

	if id, err := uuid.Parse(trimmed); err == nil {
		var out T
		err := db.WithContext(ctx).Where("uuid = ?", id).First(&out).Error
		if err == nil {
			return &out, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if id, err := strconv.ParseUint(trimmed, 10, 64); err == nil {
		var out T
		err := db.WithContext(ctx).Where("id = ?", id).First(&out).Error
		if err == nil {
			return &out, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return nil, gorm.ErrRecordNotFound
}
