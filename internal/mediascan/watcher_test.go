package mediascan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"

	"usher/internal/library"
	"usher/internal/logging"
)

// The fsnotify event loop itself is exercised at integration level; these
// tests drive the event handler and dirty-flag bookkeeping directly so they
// stay deterministic.

func newTestWatcher(t *testing.T) *Watcher {
	t.Helper()
	w, err := NewWatcher([]string{t.TempDir()}, logging.NewNop())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

func TestWatcherMarksDirtyOnVideoEvents(t *testing.T) {
	w := newTestWatcher(t)

	w.handleEvent(fsnotify.Event{Name: "/m/Matrix.1999.mkv", Op: fsnotify.Write})
	dirty, last, changes := w.Status()
	if !dirty {
		t.Fatal("write to a video file should mark the library dirty")
	}
	if last.IsZero() {
		t.Fatal("last change time not recorded")
	}
	if changes != 1 {
		t.Fatalf("changes = %d, want 1", changes)
	}

	w.handleEvent(fsnotify.Event{Name: "/m/Matrix.1999.mkv", Op: fsnotify.Remove})
	if _, _, changes := w.Status(); changes != 2 {
		t.Fatalf("changes = %d, want 2", changes)
	}
}

func TestWatcherIgnoresIrrelevantEvents(t *testing.T) {
	w := newTestWatcher(t)

	w.handleEvent(fsnotify.Event{Name: "/m/notes.txt", Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: "/m/Matrix.1999.mkv", Op: fsnotify.Chmod})

	if dirty, _, _ := w.Status(); dirty {
		t.Fatal("non-video writes and chmods must not mark the library dirty")
	}
}

func TestWatcherTracksNewDirectories(t *testing.T) {
	w := newTestWatcher(t)

	dir := filepath.Join(t.TempDir(), "incoming")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	w.handleEvent(fsnotify.Event{Name: dir, Op: fsnotify.Create})
	if dirty, _, _ := w.Status(); !dirty {
		t.Fatal("directory creation should mark the library dirty")
	}
}

func TestWatcherFiresOnDirtyOncePerTransition(t *testing.T) {
	w := newTestWatcher(t)

	var fired []string
	w.SetOnDirty(func(path string) { fired = append(fired, path) })

	w.handleEvent(fsnotify.Event{Name: "/m/Matrix.1999.mkv", Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: "/m/Heat.1995.mkv", Op: fsnotify.Write})
	if len(fired) != 1 || fired[0] != "/m/Matrix.1999.mkv" {
		t.Fatalf("hook fired %v, want once with first path", fired)
	}

	w.MarkClean()
	w.handleEvent(fsnotify.Event{Name: "/m/Heat.1995.mkv", Op: fsnotify.Remove})
	if len(fired) != 2 {
		t.Fatalf("hook fired %d times after clean, want 2", len(fired))
	}
}

func TestWatcherMarkClean(t *testing.T) {
	w := newTestWatcher(t)

	w.handleEvent(fsnotify.Event{Name: "/m/Matrix.1999.mkv", Op: fsnotify.Create})
	w.MarkClean()
	if dirty, last, _ := w.Status(); dirty || last.IsZero() {
		t.Fatal("MarkClean should clear the flag but keep the change time")
	}
}

type staticScanner struct {
	lib *library.Library
	err error
}

func (s staticScanner) Scan(ctx context.Context) (*library.Library, error) {
	return s.lib, s.err
}

func TestWrapScannerClearsDirty(t *testing.T) {
	w := newTestWatcher(t)
	w.handleEvent(fsnotify.Event{Name: "/m/Matrix.1999.mkv", Op: fsnotify.Write})

	wrapped := w.WrapScanner(staticScanner{lib: library.NewLibrary()})
	if _, err := wrapped.Scan(context.Background()); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if dirty, _, _ := w.Status(); dirty {
		t.Fatal("successful scan should clear the dirty flag")
	}
}

func TestWrapScannerKeepsDirtyOnError(t *testing.T) {
	w := newTestWatcher(t)
	w.handleEvent(fsnotify.Event{Name: "/m/Matrix.1999.mkv", Op: fsnotify.Write})

	wrapped := w.WrapScanner(staticScanner{err: errors.New("mount gone")})
	if _, err := wrapped.Scan(context.Background()); err == nil {
		t.Fatal("expected scan error")
	}
	if dirty, _, _ := w.Status(); !dirty {
		t.Fatal("failed scan must not clear the dirty flag")
	}
}

func TestWatcherMissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")
	if _, err := NewWatcher([]string{missing}, logging.NewNop()); err == nil {
		t.Fatal("expected error for missing root")
	}
}
