// Package storage defines the note directory and output tree abstractions.
package storage

import "time"

// NoteFile describes one source file in the notes directory.
type NoteFile struct {
	Name      string
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the read side: a flat directory of note files.
type Provider interface {
	// List returns every regular, non-hidden file at the top level of the root.
	List() ([]NoteFile, error)
	// Read returns the raw bytes of the file at name (relative to root).
	Read(name string) ([]byte, error)
}

// Writer is the write side: an output tree that creates directories on demand.
type Writer interface {
	// Write atomically writes content to path (slash-separated, relative to root).
	Write(path string, content []byte) error
}
