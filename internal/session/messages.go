package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const messageColumns = "id, thread_id, role, content, agent, created_at"

// AppendMessage stores one turn and bumps the thread's updated_at so the
// thread listing stays sorted by activity.
func (s *Store) AppendMessage(ctx context.Context, threadID, role, content, agent string) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO messages (thread_id, role, content, agent, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		threadID,
		role,
		content,
		nullableString(agent),
		timestamp,
	)
	if err != nil {
		return 0, fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := s.execWithRetry(
		ctx,
		`UPDATE threads SET updated_at = ? WHERE id = ?`,
		timestamp,
		threadID,
	); err != nil {
		return 0, fmt.Errorf("touch thread: %w", err)
	}
	return id, nil
}

// History returns the most recent limit messages of a thread in
// chronological order. A non-positive limit returns the whole thread.
func (s *Store) History(ctx context.Context, threadID string, limit int) ([]Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE thread_id = ? ORDER BY id DESC`
	args := []any{threadID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("thread history: %w", err)
	}
	defer rows.Close()

	var newestFirst []Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		newestFirst = append(newestFirst, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	history := make([]Message, len(newestFirst))
	for i, msg := range newestFirst {
		history[len(newestFirst)-1-i] = msg
	}
	return history, nil
}

// Messages returns every message of a thread in chronological order.
func (s *Store) Messages(ctx context.Context, threadID string) ([]Message, error) {
	return s.History(ctx, threadID, 0)
}

func scanMessage(scanner interface{ Scan(dest ...any) error }) (*Message, error) {
	var (
		id         int64
		threadID   string
		role       string
		content    string
		agent      sql.NullString
		createdRaw string
	)
	if err := scanner.Scan(&id, &threadID, &role, &content, &agent, &createdRaw); err != nil {
		return nil, err
	}
	return &Message{
		ID:        id,
		ThreadID:  threadID,
		Role:      role,
		Content:   content,
		Agent:     agent.String,
		CreatedAt: parseTimestamp(createdRaw),
	}, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
