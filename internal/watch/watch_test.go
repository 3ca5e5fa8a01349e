package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/ztk/internal/storage"
)

func watchEnv(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return dir, store
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startWatch(t *testing.T, store storage.Provider, opts Options, calls *atomic.Int32) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, store, opts, quietLogger(), func(context.Context) error {
			calls.Add(1)
			return nil
		})
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	// Let the watcher register before the test starts writing.
	time.Sleep(100 * time.Millisecond)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestRun_DebouncesBurst(t *testing.T) {
	dir, store := watchEnv(t)
	var calls atomic.Int32
	startWatch(t, store, Options{Dir: dir, Debounce: 150 * time.Millisecond}, &calls)

	for i, name := range []string{"a.md", "b.md", "c.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte{byte('a' + i)}, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	waitFor(t, func() bool { return calls.Load() >= 1 })
	time.Sleep(400 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("rebuilds = %d, want 1", n)
	}
}

func TestRun_SkipsUnchangedContent(t *testing.T) {
	dir, store := watchEnv(t)
	path := filepath.Join(dir, "a.md")
	if err := os.WriteFile(path, []byte("same"), 0o644); err != nil {
		t.Fatal(err)
	}
	var calls atomic.Int32
	startWatch(t, store, Options{Dir: dir, Debounce: 50 * time.Millisecond}, &calls)

	if err := os.WriteFile(path, []byte("same"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(400 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("rebuilds = %d, want 0 for identical content", n)
	}
}

func TestRun_ExtraFile(t *testing.T) {
	dir, store := watchEnv(t)
	styleDir := t.TempDir()
	style := filepath.Join(styleDir, "style.css")
	var calls atomic.Int32
	startWatch(t, store, Options{Dir: dir, Extra: []string{style}, Debounce: 50 * time.Millisecond}, &calls)

	if err := os.WriteFile(filepath.Join(styleDir, "unrelated.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatalf("unrelated file triggered a rebuild")
	}

	if err := os.WriteFile(style, []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return calls.Load() == 1 })
}

func TestRun_BaselineCatchesEarlyChange(t *testing.T) {
	dir, store := watchEnv(t)
	path := filepath.Join(dir, "a.md")
	if err := os.WriteFile(path, []byte("before"), 0o644); err != nil {
		t.Fatal(err)
	}
	baseline, err := Fingerprint(store, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Edited after the build read the files but before Run registered.
	if err := os.WriteFile(path, []byte("after"), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	startWatch(t, store, Options{Dir: dir, Debounce: 50 * time.Millisecond, Baseline: baseline}, &calls)
	waitFor(t, func() bool { return calls.Load() == 1 })
}

func TestRun_BaselineUnchanged(t *testing.T) {
	dir, store := watchEnv(t)
	if err := os.WriteFile(filepath.Join(dir, "a.md"), []byte("same"), 0o644); err != nil {
		t.Fatal(err)
	}
	baseline, err := Fingerprint(store, nil)
	if err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	startWatch(t, store, Options{Dir: dir, Debounce: 50 * time.Millisecond, Baseline: baseline}, &calls)
	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("rebuilds = %d, want 0", n)
	}
}

func TestFingerprint(t *testing.T) {
	dir, store := watchEnv(t)
	_ = os.WriteFile(filepath.Join(dir, "a.md"), []byte("a"), 0o644)
	missing := filepath.Join(dir, "missing.css")

	fp1, err := Fingerprint(store, []string{missing})
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	_ = os.WriteFile(filepath.Join(dir, "a.md"), []byte("b"), 0o644)
	fp2, _ := Fingerprint(store, []string{missing})
	if fp1 == fp2 {
		t.Error("fingerprint should change with content")
	}
}
