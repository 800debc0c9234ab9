package library

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Metadata is the structured view of a single filename. Fields that cannot
// be recovered from the name are empty, never an error.
type Metadata struct {
	Title   string
	Year    string
	Quality string
	Format  string
}

var (
	separatorRun = regexp.MustCompile(`[^A-Za-z0-9]+`)
	yearToken    = regexp.MustCompile(`(19|20)\d{2}`)
)

// qualityTags is checked in order; the first tag found in the filename wins.
var qualityTags = []string{"1080p", "720p", "2160p", "4K", "BluRay", "BRRip", "WEB-DL", "WEBRip", "HDRip"}

// maxTitleLength bounds titles that carry no year token.
const maxTitleLength = 30

// CleanTitle derives a short display title from a raw media filename.
//
// The extension is stripped and every run of non-alphanumeric characters
// collapses to a single space. Scene releases bury the year between the
// title and a tail of quality/codec/group noise, so when a 19xx/20xx token
// starts at or after the 6th character the title is cut right after it.
// That position guard keeps year-first names ("2001 A Space Odyssey")
// intact. Titles without a usable year are cut at 30 characters. This is a
// heuristic, not a parser: a model number that looks like a year will
// truncate early, and that is accepted.
func CleanTitle(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	clean := strings.TrimSpace(separatorRun.ReplaceAllString(base, " "))

	for _, loc := range yearToken.FindAllStringIndex(clean, -1) {
		if loc[0] >= 5 {
			return clean[:loc[1]]
		}
	}
	if len(clean) > maxTitleLength {
		clean = strings.TrimRight(clean[:maxTitleLength], " ")
	}
	return clean
}

// ExtractMetadata pulls the title, year, quality tag, and container format
// out of a filename. Pure string work; no file is touched.
func ExtractMetadata(filename string) Metadata {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	lowerBase := strings.ToLower(base)

	meta := Metadata{
		Title:  CleanTitle(filename),
		Year:   yearToken.FindString(base),
		Format: strings.ToLower(ext),
	}
	for _, tag := range qualityTags {
		if strings.Contains(lowerBase, strings.ToLower(tag)) {
			meta.Quality = tag
			break
		}
	}
	return meta
}
