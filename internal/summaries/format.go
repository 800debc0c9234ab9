package summaries

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// plotLimit caps how much plot text a single result may print.
const plotLimit = 800

var titleCaser = cases.Title(language.English)

// FormatScored renders ranked summaries as numbered entries with indented
// detail lines, ready to hand back to the user or an agent.
func FormatScored(results []Scored) string {
	if len(results) == 0 {
		return "No matching summaries found."
	}

	var b strings.Builder
	for i, result := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		summary := result.Summary
		b.WriteString(fmt.Sprintf("%d. %s", i+1, displayTitle(summary.Title)))
		if summary.Year != "" {
			b.WriteString(fmt.Sprintf(" (%s)", summary.Year))
		}
		writeField(&b, "Director", summary.Director)
		writeField(&b, "Cast", summary.Cast)
		writeField(&b, "Genre", summary.Genre)
		writeField(&b, "Plot", truncatePlot(summary.Plot))
	}
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString(fmt.Sprintf("\n   %s: %s", label, value))
}

// displayTitle fixes shouting titles from bulk exports. Mixed-case titles
// pass through untouched so stylized names keep their casing.
func displayTitle(title string) string {
	hasLetter := false
	for _, r := range title {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return title
			}
		}
	}
	if !hasLetter {
		return title
	}
	return titleCaser.String(strings.ToLower(title))
}

func truncatePlot(plot string) string {
	runes := []rune(plot)
	if len(runes) <= plotLimit {
		return plot
	}
	return string(runes[:plotLimit]) + "..."
}
