package session_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"usher/internal/session"
	"usher/internal/testsupport"
)

func TestEnsureThreadMintsID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenSessionStore(t, cfg)

	ctx := context.Background()
	threadID, err := store.EnsureThread(ctx, "")
	if err != nil {
		t.Fatalf("EnsureThread: %v", err)
	}
	if threadID == "" {
		t.Fatal("expected a minted thread id")
	}

	parts := strings.Split(threadID, "_")
	if len(parts) != 3 {
		t.Fatalf("unexpected thread id shape: %q", threadID)
	}
	if len(parts[0]) != 8 || len(parts[1]) != 6 || len(parts[2]) != 8 {
		t.Fatalf("unexpected thread id segments: %q", threadID)
	}

	thread, err := store.GetThread(ctx, threadID)
	if err != nil {
		t.Fatalf("GetThread: %v", err)
	}
	if thread == nil {
		t.Fatal("minted thread not persisted")
	}
}

func TestEnsureThreadKeepsClientID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenSessionStore(t, cfg)

	ctx := context.Background()
	got, err := store.EnsureThread(ctx, "client-thread-1")
	if err != nil {
		t.Fatalf("EnsureThread: %v", err)
	}
	if got != "client-thread-1" {
		t.Fatalf("client id rewritten to %q", got)
	}

	// Idempotent on repeat.
	again, err := store.EnsureThread(ctx, "client-thread-1")
	if err != nil {
		t.Fatalf("EnsureThread repeat: %v", err)
	}
	if again != got {
		t.Fatalf("repeat id mismatch: %q vs %q", again, got)
	}

	threads, err := store.Threads(ctx)
	if err != nil {
		t.Fatalf("Threads: %v", err)
	}
	if len(threads) != 1 {
		t.Fatalf("expected single thread, got %d", len(threads))
	}
}

func TestAppendAndHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenSessionStore(t, cfg)
	threadID := testsupport.NewThread(t, store)

	ctx := context.Background()
	if _, err := store.AppendMessage(ctx, threadID, session.RoleUser, "Do I have Inception?", ""); err != nil {
		t.Fatalf("AppendMessage user: %v", err)
	}
	if _, err := store.AppendMessage(ctx, threadID, session.RoleAssistant, "Found 1 movie.", "library"); err != nil {
		t.Fatalf("AppendMessage assistant: %v", err)
	}

	history, err := store.History(ctx, threadID, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Role != session.RoleUser || history[1].Role != session.RoleAssistant {
		t.Fatalf("history out of order: %+v", history)
	}
	if history[1].Agent != "library" {
		t.Fatalf("agent not stored: %+v", history[1])
	}
	if history[0].CreatedAt.IsZero() {
		t.Fatal("timestamps not parsed")
	}
}

func TestHistoryLimitKeepsNewest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenSessionStore(t, cfg)
	threadID := testsupport.NewThread(t, store)

	ctx := context.Background()
	for _, text := range []string{"one", "two", "three", "four"} {
		if _, err := store.AppendMessage(ctx, threadID, session.RoleUser, text, ""); err != nil {
			t.Fatalf("AppendMessage: %v", err)
		}
	}

	history, err := store.History(ctx, threadID, 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Content != "three" || history[1].Content != "four" {
		t.Fatalf("expected the two newest in order, got %+v", history)
	}
}

func TestThreadsSortedByActivity(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenSessionStore(t, cfg)

	ctx := context.Background()
	first, err := store.EnsureThread(ctx, "thread-a")
	if err != nil {
		t.Fatalf("EnsureThread: %v", err)
	}
	second, err := store.EnsureThread(ctx, "thread-b")
	if err != nil {
		t.Fatalf("EnsureThread: %v", err)
	}

	// Touch the first thread last so it sorts to the top.
	time.Sleep(5 * time.Millisecond)
	if _, err := store.AppendMessage(ctx, first, session.RoleUser, "hello", ""); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	threads, err := store.Threads(ctx)
	if err != nil {
		t.Fatalf("Threads: %v", err)
	}
	if len(threads) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(threads))
	}
	if threads[0].ID != first {
		t.Fatalf("expected %q first, got %q", first, threads[0].ID)
	}
	if threads[0].MessageCount != 1 {
		t.Fatalf("message count = %d, want 1", threads[0].MessageCount)
	}
	_ = second
}

func TestDeleteThreadCascades(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenSessionStore(t, cfg)
	threadID := testsupport.NewThread(t, store)

	ctx := context.Background()
	if _, err := store.AppendMessage(ctx, threadID, session.RoleUser, "hello", ""); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if err := store.DeleteThread(ctx, threadID); err != nil {
		t.Fatalf("DeleteThread: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Threads != 0 || stats.Messages != 0 {
		t.Fatalf("cascade delete incomplete: %+v", stats)
	}
}

func TestCheckHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenSessionStore(t, cfg)

	if err := store.CheckHealth(context.Background()); err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
}

func TestNewThreadIDShape(t *testing.T) {
	now := time.Date(2026, 5, 19, 14, 3, 22, 0, time.UTC)
	id := session.NewThreadID(now)
	if !strings.HasPrefix(id, "20260519_140322_") {
		t.Fatalf("unexpected prefix: %q", id)
	}
	if len(id) != len("20260519_140322_")+8 {
		t.Fatalf("unexpected length: %q", id)
	}
}
