package photos

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/andresfq/registry-backend/pkg/config"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewStore(config.StorageConfig{PhotoDir: dir})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store, dir
}

func TestRemoveDeletesFile(t *testing.T) {
	store, dir := newTestStore(t)

	name := "user_42.jpg"
	if err := os.WriteFile(filepath.Join(dir, name), []byte("jpeg"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if err := store.Remove(name); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if store.Exists(name) {
		t.Fatal("expected photo to be gone")
	}
}

func TestRemoveMissingFileIsNotAnError(t *testing.T) {
	store, _ := newTestStore(t)
	if err := store.Remove("never_uploaded.png"); err != nil {
		t.Fatalf("expected nil for missing file, got %v", err)
	}
}

func TestRemoveRejectsEscapingPaths(t *testing.T) {
	store, _ := newTestStore(t)
	for _, path := range []string{"../secrets.txt", "/etc/passwd", "", "."} {
		if err := store.Remove(path); err == nil {
			t.Fatalf("expected error for path %q", path)
		}
	}
}

func TestNewStoreRequiresDir(t *testing.T) {
	if _, err := NewStore(config.StorageConfig{}); err == nil {
		t.Fatal("expected error for empty photo dir")
	}
}
