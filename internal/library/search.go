package library

import (
	"sort"
	"strings"
)

// Match is one ranked search result.
type Match struct {
	DisplayName string
	Path        string
	Score       float64
}

// Scoring tiers, tried in order; the first tier that produces a positive
// score wins for an entry.
const (
	exactScore       = 1.0
	allKeywordsScore = 0.9
	ratioThreshold   = 0.6
	partialWeight    = 0.5
	formatBoost      = 1.1
)

// Search ranks library entries against a keyword query and caps the result
// at limit.
//
// An empty query lists the first limit entries in library order, each at a
// full score. Otherwise every entry is scored by the first matching tier:
// exact substring, all keywords present, sequence similarity at or above
// 0.6, then partial keyword overlap. Entries scoring zero are dropped. A
// non-empty formatHint boosts entries of that container by 1.1x, capped at
// 1.0; the boost never resurrects a zero score. Ties keep library iteration
// order, which makes results deterministic for a sorted scan.
func Search(lib *Library, query string, limit int, formatHint string) []Match {
	if lib == nil || limit <= 0 {
		return nil
	}

	q := strings.ToLower(strings.TrimSpace(query))
	hint := strings.ToLower(strings.TrimSpace(formatHint))

	if q == "" {
		entries := lib.Entries()
		if len(entries) > limit {
			entries = entries[:limit]
		}
		matches := make([]Match, 0, len(entries))
		for _, entry := range entries {
			matches = append(matches, Match{DisplayName: entry.DisplayName, Path: entry.Path, Score: exactScore})
		}
		return matches
	}

	keywords := strings.Fields(q)
	var matches []Match
	for _, entry := range lib.Entries() {
		score := scoreEntry(strings.ToLower(entry.DisplayName), q, keywords)
		if score <= 0 {
			continue
		}
		if hint != "" && entryFormat(entry.Path) == hint {
			score *= formatBoost
			if score > 1.0 {
				score = 1.0
			}
		}
		matches = append(matches, Match{DisplayName: entry.DisplayName, Path: entry.Path, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func scoreEntry(title, query string, keywords []string) float64 {
	if strings.Contains(title, query) {
		return exactScore
	}

	found := 0
	for _, keyword := range keywords {
		if strings.Contains(title, keyword) {
			found++
		}
	}
	if len(keywords) > 0 && found == len(keywords) {
		return allKeywordsScore
	}
	if ratio := similarityRatio(query, title); ratio >= ratioThreshold {
		return ratio
	}
	if found > 0 {
		return partialWeight * float64(found) / float64(len(keywords))
	}
	return 0
}
