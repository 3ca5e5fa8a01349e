// Package apperr holds sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrDuplicateID = errors.New("duplicate note id")
	ErrUsage       = errors.New("invalid usage")
)
