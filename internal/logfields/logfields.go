// Package logfields keeps slog attribute names consistent across packages.
package logfields

import (
	"log/slog"
	"time"
)

const (
	KeyPage       = "page"
	KeyPages      = "pages"
	KeyNotes      = "notes"
	KeyTags       = "tags"
	KeyDir        = "dir"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

func Page(p string) slog.Attr  { return slog.String(KeyPage, p) }
func Pages(n int) slog.Attr    { return slog.Int(KeyPages, n) }
func Notes(n int) slog.Attr    { return slog.Int(KeyNotes, n) }
func Tags(n int) slog.Attr     { return slog.Int(KeyTags, n) }
func Dir(d string) slog.Attr   { return slog.String(KeyDir, d) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d)/float64(time.Millisecond))
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
