package library

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Formatter tier boundaries. Small specific result sets get full detail,
// mid-sized sets get a summary, and everything else collapses to library
// statistics so the text stays cheap for a language model to consume.
const (
	detailMaxResults  = 5
	summaryMaxResults = 20
	sampleTitles      = 5
)

// FormatResults renders a ranked result list as the reply text.
//
// The shape depends on result cardinality and intent. Up to five results
// under a specific search or format filter are rendered in full, including
// per-file metadata. Six to twenty results summarize the top five. Anything
// else, including every general scan, falls back to a statistical overview
// of the whole library, which is computed from lib rather than ranked so a
// format filter never skews the totals.
func FormatResults(lib *Library, ranked []Match, query string, kind Intent) string {
	targeted := kind == IntentSpecificSearch || kind == IntentFormatFilter

	switch {
	case targeted && len(ranked) <= detailMaxResults:
		return formatDetailed(ranked, query)
	case targeted && len(ranked) <= summaryMaxResults:
		return formatSummary(ranked, query)
	default:
		return formatOverview(lib)
	}
}

func formatDetailed(ranked []Match, query string) string {
	if len(ranked) == 0 {
		return fmt.Sprintf("Found 0 movies%s.", matchingClause(query))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d %s%s:\n", len(ranked), pluralMovies(len(ranked)), matchingClause(query))
	for _, match := range ranked {
		meta := ExtractMetadata(filepath.Base(match.Path))
		b.WriteString("\n")
		b.WriteString(match.DisplayName)
		if meta.Year != "" {
			fmt.Fprintf(&b, " (%s)", meta.Year)
		}
		if meta.Quality != "" {
			fmt.Fprintf(&b, " [%s]", meta.Quality)
		}
		fmt.Fprintf(&b, "\nFormat: %s | Path: %s\n", meta.Format, match.Path)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSummary(ranked []Match, query string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d movies%s. Top matches:\n", len(ranked), matchingClause(query))
	top := ranked
	if len(top) > sampleTitles {
		top = top[:sampleTitles]
	}
	for _, match := range top {
		meta := ExtractMetadata(filepath.Base(match.Path))
		b.WriteString("- ")
		b.WriteString(match.DisplayName)
		if meta.Year != "" {
			fmt.Fprintf(&b, " (%s)", meta.Year)
		}
		b.WriteString("\n")
	}
	if extra := len(ranked) - sampleTitles; extra > 0 {
		fmt.Fprintf(&b, "... and %d more\n", extra)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatOverview(lib *Library) string {
	entries := lib.Entries()
	total := len(entries)

	var b strings.Builder
	fmt.Fprintf(&b, "Library contains %d %s.\n", total, pluralMovies(total))
	if total == 0 {
		return strings.TrimRight(b.String(), "\n")
	}

	counts := make(map[string]int)
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Path))
		if ext == "" {
			ext = "(none)"
		}
		counts[ext]++
	}
	formats := make([]string, 0, len(counts))
	for ext := range counts {
		formats = append(formats, ext)
	}
	sort.Strings(formats)

	b.WriteString("\nBy format:\n")
	for _, ext := range formats {
		fmt.Fprintf(&b, "- %s: %d\n", ext, counts[ext])
	}

	b.WriteString("\nSample titles:\n")
	samples := entries
	if len(samples) > sampleTitles {
		samples = samples[:sampleTitles]
	}
	for _, entry := range samples {
		fmt.Fprintf(&b, "- %s\n", entry.DisplayName)
	}
	if extra := total - sampleTitles; extra > 0 {
		fmt.Fprintf(&b, "... and %d more\n", extra)
	}
	return strings.TrimRight(b.String(), "\n")
}

func matchingClause(query string) string {
	if strings.TrimSpace(query) == "" {
		return ""
	}
	return fmt.Sprintf(" matching '%s'", query)
}

func pluralMovies(n int) string {
	if n == 1 {
		return "movie"
	}
	return "movies"
}
