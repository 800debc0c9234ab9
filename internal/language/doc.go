// Package language normalizes language identifiers for subtitle retrieval.
//
// OpenSubtitles wants ISO 639-1 codes, users type whatever comes to mind
// ("es", "spa", "spanish"), and replies should read naturally ("Spanish").
// The conversions all run off one table so the three views never drift.
package language
