package testsupport

import (
	"context"
	"testing"

	"usher/internal/config"
	"usher/internal/session"
	"usher/internal/summaries"
)

// MustOpenSessionStore opens a session.Store for tests and registers cleanup.
func MustOpenSessionStore(t testing.TB, cfg *config.Config) *session.Store {
	t.Helper()

	store, err := session.Open(cfg)
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenSummariesStore opens a summaries.Store for tests and registers cleanup.
func MustOpenSummariesStore(t testing.TB, cfg *config.Config) *summaries.Store {
	t.Helper()

	store, err := summaries.Open(cfg)
	if err != nil {
		t.Fatalf("summaries.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewThread ensures a fresh thread for tests using the provided store.
func NewThread(t testing.TB, store *session.Store) string {
	t.Helper()

	threadID, err := store.EnsureThread(context.Background(), "")
	if err != nil {
		t.Fatalf("store.EnsureThread: %v", err)
	}
	return threadID
}
