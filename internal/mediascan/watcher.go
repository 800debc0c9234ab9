package mediascan

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"usher/internal/library"
	"usher/internal/logging"
)

// Watcher tracks filesystem changes under the library roots so the daemon
// can report staleness without rescanning. It never feeds the search path
// directly; queries always trigger a fresh scan, and the watcher only
// answers "has anything moved since the last one".
type Watcher struct {
	fsw    *fsnotify.Watcher
	logger *slog.Logger

	mu         sync.Mutex
	dirty      bool
	lastChange time.Time
	changes    int64
	onDirty    func(path string)

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  bool
}

// NewWatcher registers every directory under the given roots with fsnotify.
// Roots that do not exist are an error; unreadable subdirectories are logged
// and skipped the same way Scan skips them.
func NewWatcher(roots []string, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create filesystem watcher: %w", err)
	}

	w := &Watcher{
		fsw:    fsw,
		logger: logging.WithComponent(logger, "watcher"),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	for _, root := range roots {
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return fmt.Errorf("watch library root %s: %w", root, err)
				}
				w.logger.Warn("skipping unreadable path",
					logging.String("path", path),
					logging.Error(err))
				if entry != nil && entry.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if !entry.IsDir() {
				return nil
			}
			if err := fsw.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			return nil
		})
		if err != nil {
			fsw.Close()
			return nil, err
		}
	}

	return w, nil
}

// Start runs the event loop until the context is cancelled or Close is
// called. It is non-blocking.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()
	go w.run(ctx)
}

// Close stops the event loop and releases the underlying watcher.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stop)
		err = w.fsw.Close()
		w.mu.Lock()
		started := w.started
		w.mu.Unlock()
		if started {
			<-w.done
		}
	})
	return err
}

// Status reports whether the library changed since the last completed scan
// and when the most recent change happened. A zero time means no change has
// been observed in this process.
func (w *Watcher) Status() (dirty bool, lastChange time.Time, changes int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dirty, w.lastChange, w.changes
}

// MarkClean clears the dirty flag. Call it after a scan has been served so
// the next change flips the flag again.
func (w *Watcher) MarkClean() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dirty = false
}

// SetOnDirty registers a hook fired once per clean-to-dirty transition with
// the path that flipped the flag. Set it before Start.
func (w *Watcher) SetOnDirty(fn func(path string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onDirty = fn
}

// WrapScanner returns a scanner that clears the dirty flag after every
// successful scan, keeping Status honest without coupling the engine to the
// watcher.
func (w *Watcher) WrapScanner(next library.Scanner) library.Scanner {
	return scanMarker{next: next, watcher: w}
}

type scanMarker struct {
	next    library.Scanner
	watcher *Watcher
}

func (m scanMarker) Scan(ctx context.Context) (*library.Library, error) {
	lib, err := m.next.Scan(ctx)
	if err != nil {
		return nil, err
	}
	m.watcher.MarkClean()
	return lib, nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", logging.Error(err))
		}
	}
}

// handleEvent decides whether a filesystem event invalidates the library.
// Directory creation is always relevant because the new directory may fill
// with media before any query runs; chmod-only events never are.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		// New directories are added to the watch set so files landing in
		// them later still register.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.fsw.Add(event.Name); err != nil {
				w.logger.Warn("watch new directory",
					logging.String("path", event.Name),
					logging.Error(err))
			}
			w.markDirty(event.Name)
			return
		}
	}

	if !Eligible(event.Name) {
		return
	}

	w.logger.Debug("library change",
		logging.String("op", event.Op.String()),
		logging.String("path", event.Name))
	w.markDirty(event.Name)
}

// markDirty records a change and fires the onDirty hook on the first change
// after a clean scan, so one copy burst produces one notification.
func (w *Watcher) markDirty(path string) {
	w.mu.Lock()
	wasDirty := w.dirty
	w.dirty = true
	w.lastChange = time.Now()
	w.changes++
	fn := w.onDirty
	w.mu.Unlock()

	if !wasDirty && fn != nil {
		fn(path)
	}
}
