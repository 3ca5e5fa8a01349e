package index

import (
	"encoding/json"
	"fmt"

	"github.com/starford/ztk/internal/graph"
)

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Rebuild replaces the indexed notes with the notes of g in one transaction.
// The index is never updated note by note.
func (db *DB) Rebuild(g *graph.Graph) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM notes`); err != nil {
		return fmt.Errorf("index: clear notes: %w", err)
	}
	if err := ftsClear(tx); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO notes (id, title, tags, body) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, n := range g.Nodes() {
		tags := n.SortedTags()
		tagsJSON, _ := json.Marshal(tags)
		if _, err := stmt.Exec(n.ID, n.Title, string(tagsJSON), n.Content); err != nil {
			return fmt.Errorf("index: insert %s: %w", n.ID, err)
		}
		if err := ftsInsert(tx, n.ID, n.Title, n.Content, tags); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Count returns the number of indexed notes.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}
