// Package textutil provides filename sanitization helpers.
//
// Saved artifacts (subtitle files, exports) take their names from user
// queries, which may contain characters the filesystem rejects.
package textutil
