package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Stats summarizes the stored conversations.
type Stats struct {
	Threads  int
	Messages int
}

// Stats counts stored threads and messages.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM threads`)
	if err := row.Scan(&stats.Threads); err != nil {
		return stats, fmt.Errorf("count threads: %w", err)
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM messages`)
	if err := row.Scan(&stats.Messages); err != nil {
		return stats, fmt.Errorf("count messages: %w", err)
	}
	return stats, nil
}

// CheckHealth verifies the database file exists, answers a ping, and passes
// an integrity check.
func (s *Store) CheckHealth(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("session database connection unavailable")
	}
	if s.path == "" {
		return errors.New("session database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("stat session database: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("session database path %q is a directory", s.path)
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		return fmt.Errorf("ping session database: %w", err)
	}

	var integrityResult string
	row := s.db.QueryRowContext(connCtx, "PRAGMA integrity_check")
	if err := row.Scan(&integrityResult); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if !strings.EqualFold(integrityResult, "ok") {
		return fmt.Errorf("integrity check failed: %s", integrityResult)
	}
	return nil
}
