// Package testutil provides shared test helpers for setting up note directories and indexes.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/ztk/internal/index"
	"github.com/starford/ztk/internal/storage"
)

// TestDB creates a temporary SQLite index that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "ztk-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestNotes writes notes (file name to content) into a temporary directory
// and returns the directory with a store rooted at it.
func TestNotes(t *testing.T, notes map[string]string) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	for name, body := range notes {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}
