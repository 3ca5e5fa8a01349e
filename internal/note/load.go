package note

import (
	"fmt"

	"github.com/starford/ztk/internal/apperr"
	"github.com/starford/ztk/internal/storage"
)

// Filter selects which notes are part of a site.
type Filter struct {
	Required  []string
	Forbidden []string
	// StripRequired removes the required tags from every included note so
	// they do not show up in per-page tag navigation.
	StripRequired bool
}

// Read loads a single note file through store.
func Read(store storage.Provider, name string) (*Note, error) {
	data, err := store.Read(name)
	if err != nil {
		return nil, fmt.Errorf("note: read %s: %w", name, err)
	}
	return New(IDFromName(name), string(data)), nil
}

// Load reads every file in store and returns the notes matching f, keyed by id.
// A read failure aborts the whole load.
func Load(store storage.Provider, f Filter) (map[string]*Note, error) {
	files, err := store.List()
	if err != nil {
		return nil, fmt.Errorf("note: list: %w", err)
	}

	sources := make(map[string]string, len(files))
	nodes := make(map[string]*Note, len(files))
	for _, file := range files {
		n, err := Read(store, file.Name)
		if err != nil {
			return nil, err
		}
		if prev, ok := sources[n.ID]; ok {
			return nil, fmt.Errorf("note: %s and %s both map to %q: %w", prev, file.Name, n.ID, apperr.ErrDuplicateID)
		}
		sources[n.ID] = file.Name

		if !n.Matches(f.Required, f.Forbidden) {
			continue
		}
		if f.StripRequired {
			n.StripTags(f.Required...)
		}
		nodes[n.ID] = n
	}
	return nodes, nil
}
