// Package subtitles finds and saves movie subtitles through OpenSubtitles.
//
// The service searches by movie name, keeps the highest-downloaded candidate
// per language, and writes each payload as <query>.<lang>.srt under the
// configured subtitle directory. Requested languages accept ISO codes or
// plain words ("es", "spa", "spanish").
package subtitles
