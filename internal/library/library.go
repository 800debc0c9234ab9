package library

import (
	"path/filepath"
	"strings"
)

// Entry is one scanned media file: the display name derived from its
// filename plus the absolute path it was found at.
type Entry struct {
	DisplayName string
	Path        string
}

// Library holds scanned entries in a stable order with a display-name index.
//
// Display names are lossy, so two files may normalize to the same name.
// Entries are a list rather than a name-to-path map so colliding files all
// survive and ranking sees every one of them.
type Library struct {
	entries []Entry
	index   map[string][]int
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{index: make(map[string][]int)}
}

// Add appends an entry, preserving insertion order. Duplicate display names
// are kept.
func (l *Library) Add(displayName, path string) {
	l.index[displayName] = append(l.index[displayName], len(l.entries))
	l.entries = append(l.entries, Entry{DisplayName: displayName, Path: path})
}

// Len reports the number of entries.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Entries returns the entries in insertion order. The slice is shared; callers
// must not mutate it.
func (l *Library) Entries() []Entry {
	if l == nil {
		return nil
	}
	return l.entries
}

// Lookup returns every entry whose display name matches exactly.
func (l *Library) Lookup(displayName string) []Entry {
	if l == nil {
		return nil
	}
	idxs := l.index[displayName]
	if len(idxs) == 0 {
		return nil
	}
	out := make([]Entry, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, l.entries[i])
	}
	return out
}

// FilterFormat returns a new library containing only entries whose file
// extension (without the dot) equals ext, preserving order.
func (l *Library) FilterFormat(ext string) *Library {
	want := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	filtered := NewLibrary()
	if l == nil || want == "" {
		return filtered
	}
	for _, entry := range l.entries {
		if entryFormat(entry.Path) == want {
			filtered.Add(entry.DisplayName, entry.Path)
		}
	}
	return filtered
}

// entryFormat reports the lowercased extension of a path without the dot.
func entryFormat(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
