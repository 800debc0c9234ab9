package summaries

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"usher/internal/logging"
)

// importBatchSize caps how many documents go into one embedding request.
const importBatchSize = 32

// ImportResult reports what a JSONL import did.
type ImportResult struct {
	Imported int
	Skipped  int
}

type jsonlRecord struct {
	Title    string     `json:"title"`
	Year     flexString `json:"year"`
	Director string     `json:"director"`
	Cast     flexJoin   `json:"cast"`
	Genre    flexJoin   `json:"genre"`
	Plot     string     `json:"plot"`
}

// flexString accepts JSON strings and numbers; exports commonly disagree on
// whether a year is quoted.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexJoin accepts a string or an array of strings and flattens the array to
// a comma-separated list.
type flexJoin string

func (f *flexJoin) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		for i := range items {
			items[i] = strings.TrimSpace(items[i])
		}
		*f = flexJoin(strings.Join(items, ", "))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexJoin(strings.TrimSpace(s))
	return nil
}

// Import reads JSONL movie records, embeds their documents in batches, and
// upserts them into the store. Lines that fail to decode or lack a title are
// counted as skipped rather than aborting the import.
func Import(ctx context.Context, store *Store, embedder Embedder, r io.Reader, logger *slog.Logger) (ImportResult, error) {
	logger = logging.WithComponent(logger, "summaries")

	var result ImportResult
	var batch []Summary

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		texts := make([]string, len(batch))
		for i, summary := range batch {
			texts[i] = summary.Document()
		}
		vectors, err := embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch: %w", err)
		}
		for i, summary := range batch {
			if err := store.Upsert(ctx, summary, vectors[i], embedder.ModelID()); err != nil {
				return err
			}
		}
		result.Imported += len(batch)
		batch = batch[:0]
		return nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var record jsonlRecord
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			result.Skipped++
			logger.Warn("skipping malformed record",
				logging.Int("line", line),
				logging.Error(err))
			continue
		}
		if strings.TrimSpace(record.Title) == "" {
			result.Skipped++
			logger.Warn("skipping record without title", logging.Int("line", line))
			continue
		}

		batch = append(batch, Summary{
			Title:    strings.TrimSpace(record.Title),
			Year:     string(record.Year),
			Director: strings.TrimSpace(record.Director),
			Cast:     string(record.Cast),
			Genre:    string(record.Genre),
			Plot:     strings.TrimSpace(record.Plot),
		})
		if len(batch) >= importBatchSize {
			if err := flush(); err != nil {
				return result, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("read jsonl: %w", err)
	}
	if err := flush(); err != nil {
		return result, err
	}

	logger.Info("summaries import complete",
		logging.Int("imported", result.Imported),
		logging.Int("skipped", result.Skipped))
	return result, nil
}
