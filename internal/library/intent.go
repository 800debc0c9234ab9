package library

import (
	"regexp"
	"strings"
)

// Intent classifies what a user message is asking the library for.
type Intent int

const (
	// IntentGeneralScan is a broad "what do I have" request.
	IntentGeneralScan Intent = iota
	// IntentSpecificSearch looks for particular titles by keyword.
	IntentSpecificSearch
	// IntentFormatFilter restricts the listing to one container format.
	IntentFormatFilter
)

// String renders the intent for logs and wire payloads.
func (i Intent) String() string {
	switch i {
	case IntentSpecificSearch:
		return "specific_search"
	case IntentFormatFilter:
		return "format_filter"
	default:
		return "general_scan"
	}
}

// ParsedIntent is the structured reading of one user message.
type ParsedIntent struct {
	Query      string
	FormatHint string
	Kind       Intent
}

// formatHints is probed in order; the first matching format wins.
var formatHints = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"mkv", regexp.MustCompile(`\bmkv\b`)},
	{"mp4", regexp.MustCompile(`\bmp4\b`)},
	{"avi", regexp.MustCompile(`\bavi\b`)},
	{"mov", regexp.MustCompile(`\bmov\b`)},
	{"wmv", regexp.MustCompile(`\bwmv\b`)},
}

// filterPhrases are the spoken forms that turn a format mention into a hard
// filter instead of a ranking hint.
var filterPhrases = []*regexp.Regexp{
	regexp.MustCompile(`\bshow\s+me\s+\w+\s+files\b`),
	regexp.MustCompile(`\bonly\s+\w+\b`),
	regexp.MustCompile(`\bjust\s+\w+\s+files\b`),
	regexp.MustCompile(`\b\w+\s+files\s+only\b`),
}

var wordToken = regexp.MustCompile(`[a-z0-9]+`)

var stopWords = map[string]struct{}{
	"do": {}, "i": {}, "have": {}, "show": {}, "me": {}, "my": {},
	"what": {}, "movies": {}, "files": {}, "the": {}, "a": {}, "an": {},
	"is": {}, "in": {}, "library": {}, "collection": {}, "only": {}, "just": {},
}

// ParseIntent reads a free-text message into a query, an optional format
// hint, and an intent kind. The steps are order-sensitive: hint detection,
// filter phrasing, then keyword extraction with stop words removed.
func ParseIntent(message string) ParsedIntent {
	lower := strings.ToLower(message)

	var hint string
	for _, candidate := range formatHints {
		if candidate.pattern.MatchString(lower) {
			hint = candidate.name
			break
		}
	}

	explicitFilter := false
	if hint != "" {
		for _, phrase := range filterPhrases {
			if phrase.MatchString(lower) {
				explicitFilter = true
				break
			}
		}
	}

	kind := IntentGeneralScan
	assigned := false
	if explicitFilter {
		kind = IntentFormatFilter
		assigned = true
	}

	var keywords []string
	for _, token := range wordToken.FindAllString(lower, -1) {
		if _, stop := stopWords[token]; stop {
			continue
		}
		// The format word names a container, not a movie; it never
		// doubles as a search keyword.
		if hint != "" && token == hint {
			continue
		}
		keywords = append(keywords, token)
	}

	query := strings.Join(keywords, " ")
	if query != "" && !assigned {
		kind = IntentSpecificSearch
		assigned = true
	}
	if query == "" && !assigned {
		kind = IntentGeneralScan
	}

	return ParsedIntent{Query: query, FormatHint: hint, Kind: kind}
}
