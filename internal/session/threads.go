package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewThreadID mints a thread identifier of the form
// 20260519_140322_a1b2c3d4: a sortable timestamp plus a short random suffix
// so concurrent clients never collide.
func NewThreadID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return now.UTC().Format("20060102_150405") + "_" + suffix
}

// EnsureThread returns a usable thread identifier. A blank id mints a fresh
// thread; a client-supplied id is created on first use so callers can bring
// their own identifiers.
func (s *Store) EnsureThread(ctx context.Context, threadID string) (string, error) {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		threadID = NewThreadID(time.Now())
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO threads (id, created_at, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(id) DO NOTHING`,
		threadID,
		timestamp,
		timestamp,
	)
	if err != nil {
		return "", fmt.Errorf("ensure thread: %w", err)
	}
	return threadID, nil
}

// GetThread fetches a single thread, or nil if it does not exist.
func (s *Store) GetThread(ctx context.Context, threadID string) (*Thread, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT t.id, t.created_at, t.updated_at, COUNT(m.id)
         FROM threads t
         LEFT JOIN messages m ON m.thread_id = t.id
         WHERE t.id = ?
         GROUP BY t.id`,
		threadID,
	)
	thread, err := scanThread(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get thread: %w", err)
	}
	return thread, nil
}

// Threads lists all threads, most recently updated first.
func (s *Store) Threads(ctx context.Context) ([]Thread, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT t.id, t.created_at, t.updated_at, COUNT(m.id)
         FROM threads t
         LEFT JOIN messages m ON m.thread_id = t.id
         GROUP BY t.id
         ORDER BY t.updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	defer rows.Close()

	var threads []Thread
	for rows.Next() {
		thread, err := scanThread(rows)
		if err != nil {
			return nil, fmt.Errorf("scan thread: %w", err)
		}
		threads = append(threads, *thread)
	}
	return threads, rows.Err()
}

// DeleteThread removes a thread and, via the foreign key cascade, all of its
// messages.
func (s *Store) DeleteThread(ctx context.Context, threadID string) error {
	if _, err := s.execWithRetry(ctx, `DELETE FROM threads WHERE id = ?`, threadID); err != nil {
		return fmt.Errorf("delete thread: %w", err)
	}
	return nil
}

func scanThread(scanner interface{ Scan(dest ...any) error }) (*Thread, error) {
	var (
		id         string
		createdRaw string
		updatedRaw string
		count      int
	)
	if err := scanner.Scan(&id, &createdRaw, &updatedRaw, &count); err != nil {
		return nil, err
	}
	thread := &Thread{ID: id, MessageCount: count}
	thread.CreatedAt = parseTimestamp(createdRaw)
	thread.UpdatedAt = parseTimestamp(updatedRaw)
	return thread, nil
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return parsed
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed
	}
	return time.Time{}
}
