package note

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/ztk/internal/apperr"
	"github.com/starford/ztk/internal/storage"
)

func writeNotes(t *testing.T, files map[string]string) *storage.FS {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestLoad_Filters(t *testing.T) {
	store := writeNotes(t, map[string]string{
		"a.md": "# A\n#pub #x",
		"b.md": "# B\n#pub #draft",
		"c.md": "# C\n#x",
	})
	nodes, err := Load(store, Filter{Required: []string{"pub"}, Forbidden: []string{"draft"}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("len = %d, want 1", len(nodes))
	}
	a, ok := nodes["a"]
	if !ok {
		t.Fatalf("note a missing: %v", nodes)
	}
	if !a.HasTag("pub") {
		t.Error("pub should be kept without StripRequired")
	}
}

func TestLoad_StripRequired(t *testing.T) {
	store := writeNotes(t, map[string]string{"a.md": "#pub #x"})
	nodes, err := Load(store, Filter{Required: []string{"pub"}, StripRequired: true})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if nodes["a"].HasTag("pub") {
		t.Error("pub should have been stripped")
	}
	if !nodes["a"].HasTag("x") {
		t.Error("x should remain")
	}
}

func TestLoad_DuplicateID(t *testing.T) {
	store := writeNotes(t, map[string]string{"a.md": "one", "a.txt": "two"})
	_, err := Load(store, Filter{})
	if !errors.Is(err, apperr.ErrDuplicateID) {
		t.Errorf("err = %v, want ErrDuplicateID", err)
	}
}

func TestLoad_Empty(t *testing.T) {
	store := writeNotes(t, nil)
	nodes, err := Load(store, Filter{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(nodes) != 0 {
		t.Errorf("len = %d, want 0", len(nodes))
	}
}

type failingStore struct{}

func (failingStore) List() ([]storage.NoteFile, error) {
	return []storage.NoteFile{{Name: "broken.md"}}, nil
}

func (failingStore) Read(string) ([]byte, error) {
	return nil, os.ErrPermission
}

func TestLoad_ReadErrorAborts(t *testing.T) {
	_, err := Load(failingStore{}, Filter{})
	if !errors.Is(err, os.ErrPermission) {
		t.Errorf("err = %v, want os.ErrPermission", err)
	}
}
