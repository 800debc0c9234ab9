package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"usher/internal/api"
	"usher/internal/config"
	"usher/internal/logging"
	"usher/internal/mediascan"
	"usher/internal/notifications"
	"usher/internal/preflight"
	"usher/internal/session"
	"usher/internal/summaries"
)

// Daemon coordinates the background services and enforces single-instance execution.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	chat      *api.ChatService
	sessions  *session.Store
	summaries *summaries.Store
	watcher   *mediascan.Watcher
	notifier  notifications.Service

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	startedAt time.Time
	ctx       context.Context
	cancel    context.CancelFunc
	api       *apiServer
}

// RootStatus describes the reachability of one configured library root.
type RootStatus struct {
	Path   string
	OK     bool
	Detail string
}

// Status represents daemon runtime information.
type Status struct {
	Running           bool
	PID               int
	StartedAt         time.Time
	Uptime            time.Duration
	SessionDBPath     string
	SummariesDBPath   string
	LockFilePath      string
	LibraryRoots      []RootStatus
	Sessions          session.Stats
	LastLibraryChange time.Time
}

// New constructs a daemon with initialized dependencies. The watcher and
// notifier may be nil; chat, stores, and logger are required.
func New(cfg *config.Config, logger *slog.Logger, chat *api.ChatService, sessions *session.Store, summariesStore *summaries.Store, watcher *mediascan.Watcher, notifier notifications.Service) (*Daemon, error) {
	if cfg == nil || logger == nil || chat == nil || sessions == nil || summariesStore == nil {
		return nil, errors.New("daemon requires config, logger, chat service, and stores")
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "usherd.lock")
	return &Daemon{
		cfg:       cfg,
		logger:    logger,
		chat:      chat,
		sessions:  sessions,
		summaries: summariesStore,
		watcher:   watcher,
		notifier:  notifier,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the watcher and API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another usher daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	if d.watcher != nil {
		d.watcher.SetOnDirty(d.onLibraryChange)
		d.watcher.Start(d.ctx)
	}

	server, err := newAPIServer(d.cfg, d, d.logger)
	if err != nil {
		d.teardown()
		return fmt.Errorf("build api server: %w", err)
	}
	d.api = server
	if err := d.api.start(d.ctx); err != nil {
		d.teardown()
		return fmt.Errorf("start api server: %w", err)
	}

	d.startedAt = time.Now()
	d.running.Store(true)
	d.logger.Info("usher daemon started", logging.String("lock", d.lockPath))

	if err := d.notifier.NotifyDaemonStarted(d.ctx, d.bindAddress()); err != nil {
		d.logger.Warn("daemon start notification failed", logging.Error(err))
	}
	return nil
}

// Stop stops background services and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	uptime := time.Since(d.startedAt)
	d.teardown()
	d.running.Store(false)

	notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.notifier.NotifyDaemonStopped(notifyCtx, uptime); err != nil {
		d.logger.Warn("daemon stop notification failed", logging.Error(err))
	}
	d.logger.Info("usher daemon stopped", logging.Duration("uptime", uptime))
}

func (d *Daemon) teardown() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.api != nil {
		d.api.stop()
		d.api = nil
	}
	if d.watcher != nil {
		if err := d.watcher.Close(); err != nil {
			d.logger.Warn("failed to close library watcher", logging.Error(err))
		}
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	var errs []error
	if d.sessions != nil {
		errs = append(errs, d.sessions.Close())
	}
	if d.summaries != nil {
		errs = append(errs, d.summaries.Close())
	}
	return errors.Join(errs...)
}

// onLibraryChange fires once per clean-to-dirty watcher transition.
func (d *Daemon) onLibraryChange(path string) {
	d.logger.Info("library change detected", logging.String("path", path))

	notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.notifier.NotifyLibraryChanged(notifyCtx, path); err != nil {
		d.logger.Warn("library change notification failed", logging.Error(err))
	}
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:         d.running.Load(),
		PID:             os.Getpid(),
		SessionDBPath:   d.cfg.SessionDBPath(),
		SummariesDBPath: d.cfg.SummariesDBPath(),
		LockFilePath:    d.lockPath,
	}
	if status.Running {
		status.StartedAt = d.startedAt
		status.Uptime = time.Since(d.startedAt)
	}

	for _, root := range d.cfg.Library.Roots {
		check := preflight.CheckLibraryRoot(root)
		status.LibraryRoots = append(status.LibraryRoots, RootStatus{
			Path:   root,
			OK:     check.Passed,
			Detail: check.Detail,
		})
	}

	if stats, err := d.sessions.Stats(ctx); err == nil {
		status.Sessions = stats
	} else {
		d.logger.Warn("session stats unavailable", logging.Error(err))
	}

	if d.watcher != nil {
		if _, lastChange, _ := d.watcher.Status(); !lastChange.IsZero() {
			status.LastLibraryChange = lastChange
		}
	}
	return status
}

// Health reports component health for the /health endpoint. Checks stay
// local: store integrity plus configuration presence. Live connectivity
// probes belong to the CLI health command, which can afford to wait.
func (d *Daemon) Health(ctx context.Context) []preflight.Result {
	results := []preflight.Result{
		storeResult("Session store", d.sessions.CheckHealth(ctx)),
		storeResult("Summaries store", d.summaries.CheckHealth(ctx)),
		requiredKeyResult("LLM API", d.cfg.LLM.APIKey),
		requiredKeyResult("Embeddings API", d.cfg.Embeddings.APIKey),
		optionalResult("qBittorrent", d.cfg.Torrent.URL),
		optionalResult("OpenSubtitles", d.cfg.Subtitles.APIKey),
	}
	return results
}

func storeResult(name string, err error) preflight.Result {
	if err != nil {
		return preflight.Result{Name: name, Detail: err.Error()}
	}
	return preflight.Result{Name: name, Passed: true, Detail: "OK"}
}

func requiredKeyResult(name, key string) preflight.Result {
	if strings.TrimSpace(key) == "" {
		return preflight.Result{Name: name, Detail: "Missing API key"}
	}
	return preflight.Result{Name: name, Passed: true, Detail: "Configured"}
}

func optionalResult(name, value string) preflight.Result {
	if strings.TrimSpace(value) == "" {
		return preflight.Result{Name: name, Passed: true, Detail: "Not configured"}
	}
	return preflight.Result{Name: name, Passed: true, Detail: "Configured"}
}

func (d *Daemon) bindAddress() string {
	if d.api != nil && d.api.listener != nil {
		return d.api.listener.Addr().String()
	}
	return strings.TrimSpace(d.cfg.Paths.APIBind)
}
