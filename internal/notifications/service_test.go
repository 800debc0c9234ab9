package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"usher/internal/config"
	"usher/internal/notifications"
)

type captured struct {
	calls    int
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		got.calls++
		got.title = r.Header.Get("Title")
		got.tags = r.Header.Get("Tags")
		got.priority = r.Header.Get("Priority")
		got.body = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server, got
}

func newNtfyConfig(topic string) config.Config {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	return cfg
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyDaemonStarted(context.Background(), "127.0.0.1:7447"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := svc.NotifyError(context.Background(), errors.New("boom"), "test"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		notify         func(notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "daemon started",
			notify: func(svc notifications.Service) error {
				return svc.NotifyDaemonStarted(context.Background(), "127.0.0.1:7447")
			},
			expectTitle:   "Usher - Started",
			expectMessage: "Assistant listening on 127.0.0.1:7447",
			expectTags:    "usher,daemon,started",
		},
		{
			name: "daemon stopped",
			notify: func(svc notifications.Service) error {
				return svc.NotifyDaemonStopped(context.Background(), 3723*time.Second)
			},
			expectTitle:   "Usher - Stopped",
			expectMessage: "Assistant stopped after 1h2m3s",
			expectTags:    "usher,daemon,stopped",
		},
		{
			name: "download started",
			notify: func(svc notifications.Service) error {
				return svc.NotifyDownloadStarted(context.Background(), "The.Matrix.1999.1080p.BluRay")
			},
			expectTitle:   "Usher - Download Started",
			expectMessage: "Download started: The.Matrix.1999.1080p.BluRay",
			expectTags:    "usher,download,started",
		},
		{
			name: "library changed",
			notify: func(svc notifications.Service) error {
				return svc.NotifyLibraryChanged(context.Background(), "/mnt/movies/New.Movie.mkv")
			},
			expectTitle:   "Usher - Library Changed",
			expectMessage: "Library change detected: /mnt/movies/New.Movie.mkv",
			expectTags:    "usher,library,changed",
		},
		{
			name: "error with context",
			notify: func(svc notifications.Service) error {
				return svc.NotifyError(context.Background(), errors.New("connection refused"), "torrent search")
			},
			expectTitle:    "Usher - Error",
			expectMessage:  "Error with torrent search: connection refused",
			expectTags:     "usher,error,alert",
			expectPriority: "high",
		},
		{
			name: "test notification",
			notify: func(svc notifications.Service) error {
				return svc.TestNotification(context.Background())
			},
			expectTitle:    "Usher - Test",
			expectMessage:  "Notification system test",
			expectTags:     "usher,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server, got := newCaptureServer(t)
			cfg := newNtfyConfig(server.URL)
			svc := notifications.NewService(&cfg)

			if err := tc.notify(svc); err != nil {
				t.Fatalf("notify returned error: %v", err)
			}
			if got.calls != 1 {
				t.Fatalf("ntfy called %d times, want 1", got.calls)
			}
			if got.title != tc.expectTitle {
				t.Errorf("title = %q, want %q", got.title, tc.expectTitle)
			}
			if got.body != tc.expectMessage {
				t.Errorf("message = %q, want %q", got.body, tc.expectMessage)
			}
			if got.tags != tc.expectTags {
				t.Errorf("tags = %q, want %q", got.tags, tc.expectTags)
			}
			if got.priority != tc.expectPriority {
				t.Errorf("priority = %q, want %q", got.priority, tc.expectPriority)
			}
		})
	}
}

func TestNtfyServiceHonorsToggles(t *testing.T) {
	server, got := newCaptureServer(t)
	cfg := newNtfyConfig(server.URL)
	cfg.Notifications.Daemon = false
	cfg.Notifications.Downloads = false
	cfg.Notifications.Scans = false
	svc := notifications.NewService(&cfg)

	ctx := context.Background()
	if err := svc.NotifyDaemonStarted(ctx, "127.0.0.1:7447"); err != nil {
		t.Fatalf("daemon started: %v", err)
	}
	if err := svc.NotifyDownloadStarted(ctx, "movie"); err != nil {
		t.Fatalf("download started: %v", err)
	}
	if err := svc.NotifyLibraryChanged(ctx, ""); err != nil {
		t.Fatalf("library changed: %v", err)
	}
	if got.calls != 0 {
		t.Fatalf("ntfy called %d times with all toggles off, want 0", got.calls)
	}

	// Errors are never toggled off.
	if err := svc.NotifyError(ctx, errors.New("boom"), ""); err != nil {
		t.Fatalf("notify error: %v", err)
	}
	if got.calls != 1 {
		t.Fatalf("ntfy called %d times after error, want 1", got.calls)
	}
	if got.body != "Error: boom" {
		t.Errorf("message = %q, want %q", got.body, "Error: boom")
	}
}

func TestNtfyServiceReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	cfg := newNtfyConfig(server.URL)
	svc := notifications.NewService(&cfg)

	err := svc.TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "ntfy returned 500") {
		t.Errorf("error = %q, want ntfy status detail", err)
	}
}
