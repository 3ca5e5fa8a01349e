// Package watch rebuilds the site whenever the notes directory changes.
// Every rebuild starts from scratch; nothing is updated incrementally.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/ztk/internal/checksum"
	"github.com/starford/ztk/internal/logfields"
	"github.com/starford/ztk/internal/storage"
)

// DefaultDebounce is the quiet period after the last change before a rebuild.
const DefaultDebounce = 200 * time.Millisecond

// RebuildFunc rebuilds the whole site.
type RebuildFunc func(ctx context.Context) error

// Options configures Run.
type Options struct {
	// Dir is the notes directory; only its top level is watched.
	Dir string
	// Extra lists additional files (e.g. the stylesheet) that trigger a rebuild.
	Extra    []string
	Debounce time.Duration
	// Baseline is the fingerprint the caller built from. When set, Run
	// checks it against the files right away, so changes made before the
	// watcher was registered are not lost.
	Baseline string
}

// Run watches opts.Dir and opts.Extra until ctx is cancelled. Bursts of
// events are debounced, and a rebuild only runs when the content fingerprint
// of the watched files actually changed. Rebuild errors are logged and the
// loop keeps going.
func Run(ctx context.Context, store storage.Provider, opts Options, logger *slog.Logger, rebuild RebuildFunc) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return err
	}
	extra := make(map[string]struct{}, len(opts.Extra))
	for _, f := range opts.Extra {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		extra[abs] = struct{}{}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	watched := map[string]struct{}{dir: {}}
	for f := range extra {
		watched[filepath.Dir(f)] = struct{}{}
	}
	for d := range watched {
		if err := w.Add(d); err != nil {
			return err
		}
	}

	relevant := func(name string) bool {
		if _, ok := extra[name]; ok {
			return true
		}
		base := filepath.Base(name)
		return filepath.Dir(name) == dir && !strings.HasPrefix(base, ".") && !strings.HasSuffix(base, "~")
	}

	last := opts.Baseline
	if last == "" {
		if last, err = Fingerprint(store, opts.Extra); err != nil {
			logger.Warn("watch: initial fingerprint failed", logfields.Error(err))
		}
	}

	logger.Info("watch: started", logfields.Dir(dir))

	var timer *time.Timer
	var timerCh <-chan time.Time
	if opts.Baseline != "" {
		timer = time.NewTimer(0)
		timerCh = timer.C
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watch: stopped")
			return nil

		case <-timerCh:
			timerCh = nil
			fp, err := Fingerprint(store, opts.Extra)
			if err != nil {
				logger.Warn("watch: fingerprint failed", logfields.Error(err))
			} else if fp == last {
				logger.Debug("watch: content unchanged, skipping rebuild")
				continue
			}
			last = fp

			start := time.Now()
			if err := rebuild(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					continue
				}
				logger.Error("watch: rebuild failed", logfields.Error(err))
				continue
			}
			logger.Info("watch: rebuilt", logfields.Duration(time.Since(start)))

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev.Name) || ev.Op == fsnotify.Chmod {
				continue
			}
			logger.Debug("watch: change", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(opts.Debounce)
			} else {
				timer.Reset(opts.Debounce)
			}
			timerCh = timer.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch: error", logfields.Error(watchErr))
		}
	}
}

// Fingerprint digests the checksums of every note file plus the extra files.
// A missing extra file contributes an empty checksum.
func Fingerprint(store storage.Provider, extra []string) (string, error) {
	files, err := store.List()
	if err != nil {
		return "", err
	}
	sums := make(map[string]string, len(files)+len(extra))
	for _, f := range files {
		sums["note:"+f.Name] = f.Checksum
	}
	for _, path := range extra {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			sums["extra:"+path] = checksum.Sum(data)
		case errors.Is(err, os.ErrNotExist):
			sums["extra:"+path] = ""
		default:
			return "", err
		}
	}
	return checksum.Digest(sums), nil
}
