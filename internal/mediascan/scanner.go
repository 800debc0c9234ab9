package mediascan

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"usher/internal/library"
	"usher/internal/logging"
)

// videoExtensions lists the container formats that count as library entries.
// Comparison is against the lowercased extension, so MKV and mkv both match.
var videoExtensions = map[string]bool{
	".mkv": true,
	".mp4": true,
	".avi": true,
	".mov": true,
	".wmv": true,
}

// Eligible reports whether path names a video file the library should index.
func Eligible(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// Scanner walks the configured library roots and materializes a Library.
// Every call re-reads the filesystem; nothing is cached between scans, so
// results always reflect the current state of the mounts.
type Scanner struct {
	roots  []string
	logger *slog.Logger
}

// NewScanner constructs a scanner over the given root directories.
func NewScanner(roots []string, logger *slog.Logger) *Scanner {
	return &Scanner{
		roots:  roots,
		logger: logging.WithComponent(logger, "mediascan"),
	}
}

// Scan walks every root and returns the discovered entries sorted
// case-insensitively by display name. An unreadable root fails the whole
// scan so a dropped mount surfaces as an error instead of an empty library.
// Unreadable subdirectories below a root are logged and skipped.
func (s *Scanner) Scan(ctx context.Context) (*library.Library, error) {
	type record struct {
		display string
		path    string
	}
	var records []record

	for _, root := range s.roots {
		root := filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				if path == root {
					return fmt.Errorf("read library root %s: %w", root, err)
				}
				s.logger.Warn("skipping unreadable path",
					logging.String("path", path),
					logging.Error(err))
				if entry != nil && entry.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if entry.IsDir() || !Eligible(path) {
				return nil
			}
			records = append(records, record{
				display: library.CleanTitle(filepath.Base(path)),
				path:    path,
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(records, func(i, j int) bool {
		a, b := strings.ToLower(records[i].display), strings.ToLower(records[j].display)
		if a != b {
			return a < b
		}
		return records[i].path < records[j].path
	})

	lib := library.NewLibrary()
	for _, rec := range records {
		lib.Add(rec.display, rec.path)
	}

	s.logger.Debug("library scan complete",
		logging.Int("roots", len(s.roots)),
		logging.Int("entries", lib.Len()))
	return lib, nil
}
