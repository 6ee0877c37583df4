package photos

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresfq/registry-backend/pkg/config"
)

// Store removes profile photos from the local photo directory. Uploads land
// in this directory through the static file surface; the registry only needs
// to clean paths up when the owning row goes away.
type Store struct {
	root string
}

// NewStore ensures the photo directory exists and returns a store rooted there.
func NewStore(cfg config.StorageConfig) (*Store, error) {
	if cfg.PhotoDir == "" {
		return nil, fmt.Errorf("photo directory is required")
	}
	if err := os.MkdirAll(cfg.PhotoDir, 0o755); err != nil {
		return nil, fmt.Errorf("create photo directory: %w", err)
	}
	return &Store{root: cfg.PhotoDir}, nil
}

// Remove deletes the stored photo at the given relative path. A missing
// file is not an error; callers log other failures instead of aborting
// the row operation.
func (s *Store) Remove(path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("remove photo: %w", err)
	}
	return nil
}

// Exists reports whether a photo is present at the given relative path.
func (s *Store) Exists(path string) bool {
	full, err := s.resolve(path)
	if err != nil {
		return false
	}
	_, statErr := os.Stat(full)
	return statErr == nil
}

// resolve joins the relative path under the root and rejects escapes.
func (s *Store) resolve(path string) (string, error) {
	cleaned := filepath.Clean(strings.TrimSpace(path))
	if cleaned == "" || cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid photo path %q", path)
	}
	return filepath.Join(s.root, cleaned), nil
}
