// Package library is the local movie-library search engine.
//
// It turns noisy scene-release filenames into display titles and metadata,
// reads user messages into a search intent, ranks entries with a tiered
// fuzzy matcher, and renders results at a verbosity chosen by result count
// so replies stay small enough to hand to a language model. Everything
// except the Scanner collaborator is pure string work over in-memory data,
// which keeps the whole pipeline unit-testable without touching a share.
//
// Treat this package as the single source of truth for how filenames map to
// titles and how queries map to results; agents and CLI commands should go
// through Engine.Run rather than re-deriving any of it.
package library
