package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"usher/internal/config"
)

const userAgent = "Usher/0.1.0"

// Service defines the notification surface exposed to the daemon and the
// agent services.
type Service interface {
	NotifyDaemonStarted(ctx context.Context, bind string) error
	NotifyDaemonStopped(ctx context.Context, uptime time.Duration) error
	NotifyDownloadStarted(ctx context.Context, name string) error
	NotifyLibraryChanged(ctx context.Context, path string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:  topic,
		client:    &http.Client{Timeout: timeout},
		daemon:    cfg.Notifications.Daemon,
		downloads: cfg.Notifications.Downloads,
		scans:     cfg.Notifications.Scans,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint  string
	client    *http.Client
	daemon    bool
	downloads bool
	scans     bool
}

func (n *ntfyService) NotifyDaemonStarted(ctx context.Context, bind string) error {
	if !n.daemon {
		return nil
	}
	data := payload{
		title:   "Usher - Started",
		message: fmt.Sprintf("Assistant listening on %s", strings.TrimSpace(bind)),
		tags:    []string{"usher", "daemon", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDaemonStopped(ctx context.Context, uptime time.Duration) error {
	if !n.daemon {
		return nil
	}
	uptime = uptime.Round(time.Second)
	if uptime < 0 {
		uptime = 0
	}
	data := payload{
		title:   "Usher - Stopped",
		message: fmt.Sprintf("Assistant stopped after %s", uptime),
		tags:    []string{"usher", "daemon", "stopped"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDownloadStarted(ctx context.Context, name string) error {
	if !n.downloads {
		return nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "unknown"
	}
	data := payload{
		title:   "Usher - Download Started",
		message: fmt.Sprintf("Download started: %s", name),
		tags:    []string{"usher", "download", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyLibraryChanged(ctx context.Context, path string) error {
	if !n.scans {
		return nil
	}
	message := "Library change detected"
	if path = strings.TrimSpace(path); path != "" {
		message = fmt.Sprintf("Library change detected: %s", path)
	}
	data := payload{
		title:   "Usher - Library Changed",
		message: message,
		tags:    []string{"usher", "library", "changed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Usher - Error",
		message:  builder.String(),
		tags:     []string{"usher", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Usher - Test",
		message:  "Notification system test",
		tags:     []string{"usher", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyDaemonStarted(context.Context, string) error        { return nil }
func (noopService) NotifyDaemonStopped(context.Context, time.Duration) error { return nil }
func (noopService) NotifyDownloadStarted(context.Context, string) error      { return nil }
func (noopService) NotifyLibraryChanged(context.Context, string) error       { return nil }
func (noopService) NotifyError(context.Context, error, string) error         { return nil }
func (noopService) TestNotification(context.Context) error                   { return nil }
