package summaries

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"usher/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; a reimport rebuilds the store from the source JSONL.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store persists movie summaries and their embedding vectors in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the summaries database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return openPath(cfg.SummariesDBPath())
}

func openPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return tx.Commit()
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (reimport with 'usher summaries import')",
			ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Count returns the number of stored summaries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM summaries`)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count summaries: %w", err)
	}
	return count, nil
}

// Upsert stores a summary and its vector, replacing any previous record for
// the same title and year.
func (s *Store) Upsert(ctx context.Context, summary Summary, vector []float32, model string) error {
	if strings.TrimSpace(summary.Title) == "" {
		return errors.New("summary title required")
	}
	if len(vector) == 0 {
		return errors.New("summary vector required")
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO summaries (title, year, director, cast_list, genre, plot, embedding, model, dim, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(title, year) DO UPDATE SET
             director = excluded.director,
             cast_list = excluded.cast_list,
             genre = excluded.genre,
             plot = excluded.plot,
             embedding = excluded.embedding,
             model = excluded.model,
             dim = excluded.dim,
             created_at = excluded.created_at`,
		summary.Title,
		summary.Year,
		summary.Director,
		summary.Cast,
		summary.Genre,
		summary.Plot,
		encodeVector(vector),
		model,
		len(vector),
		timestamp,
	)
	if err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	return nil
}

type storedVector struct {
	id     int64
	vector []float32
}

func (s *Store) vectors(ctx context.Context) ([]storedVector, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, embedding FROM summaries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load vectors: %w", err)
	}
	defer rows.Close()

	var stored []storedVector
	for rows.Next() {
		var (
			id   int64
			blob []byte
		)
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("scan vector: %w", err)
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("decode vector %d: %w", id, err)
		}
		stored = append(stored, storedVector{id: id, vector: vec})
	}
	return stored, rows.Err()
}

const summaryColumns = "id, title, year, director, cast_list, genre, plot, created_at"

func (s *Store) getByID(ctx context.Context, id int64) (*Summary, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+summaryColumns+` FROM summaries WHERE id = ?`, id)
	summary, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get summary: %w", err)
	}
	return summary, nil
}

func scanSummary(scanner interface{ Scan(dest ...any) error }) (*Summary, error) {
	var (
		id         int64
		title      string
		year       sql.NullString
		director   sql.NullString
		castList   sql.NullString
		genre      sql.NullString
		plot       sql.NullString
		createdRaw sql.NullString
	)
	if err := scanner.Scan(&id, &title, &year, &director, &castList, &genre, &plot, &createdRaw); err != nil {
		return nil, err
	}
	summary := &Summary{
		ID:       id,
		Title:    title,
		Year:     year.String,
		Director: director.String,
		Cast:     castList.String,
		Genre:    genre.String,
		Plot:     plot.String,
	}
	if createdRaw.Valid {
		if parsed, err := time.Parse(time.RFC3339Nano, createdRaw.String); err == nil {
			summary.CreatedAt = parsed
		}
	}
	return summary, nil
}

// CheckHealth verifies the database answers a ping and passes an integrity
// check.
func (s *Store) CheckHealth(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("summaries database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		return fmt.Errorf("ping summaries database: %w", err)
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
