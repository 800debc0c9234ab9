package library

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"usher/internal/logging"
)

// Scanner enumerates the media library. Implementations own any network or
// filesystem concurrency; the engine only sees the materialized result.
type Scanner interface {
	Scan(ctx context.Context) (*Library, error)
}

// Engine composes the intent parser, matcher, and formatter behind a single
// entry point. It holds no state between calls: every Run rescans, so the
// reply always reflects the library as it is on disk.
type Engine struct {
	scanner Scanner
	limit   int
	logger  *slog.Logger
}

// NewEngine builds an engine around a scanner. limit caps ranked results per
// query; values below one fall back to the default of 20.
func NewEngine(scanner Scanner, limit int, logger *slog.Logger) *Engine {
	if limit <= 0 {
		limit = 20
	}
	return &Engine{
		scanner: scanner,
		limit:   limit,
		logger:  logging.WithComponent(logger, "library"),
	}
}

// Run answers one user message about the library.
func (e *Engine) Run(ctx context.Context, message string) (string, error) {
	start := time.Now()
	lib, err := e.scanner.Scan(ctx)
	if err != nil {
		return "", fmt.Errorf("scan library: %w", err)
	}

	intent := ParseIntent(message)
	scope := lib
	if intent.Kind == IntentFormatFilter && intent.FormatHint != "" {
		scope = lib.FilterFormat(intent.FormatHint)
	}

	ranked := Search(scope, intent.Query, e.limit, intent.FormatHint)
	reply := FormatResults(lib, ranked, intent.Query, intent.Kind)

	e.logger.Debug("answered library query",
		logging.String("intent", intent.Kind.String()),
		logging.String("query", intent.Query),
		logging.String("format_hint", intent.FormatHint),
		logging.Int("library_size", lib.Len()),
		logging.Int("results", len(ranked)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return reply, nil
}
