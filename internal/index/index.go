package index

import "github.com/starford/ztk/internal/graph"

// Searcher is what the preview server and MCP tools need from the index.
type Searcher interface {
	Search(query string, limit int) ([]SearchResult, error)
}

// NoteIndex is the full set of index operations.
type NoteIndex interface {
	Searcher
	Rebuild(g *graph.Graph) error
	Count() (int, error)
	Close() error
}

var _ NoteIndex = (*DB)(nil)
