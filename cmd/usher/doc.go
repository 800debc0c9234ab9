// Package main hosts the Usher CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into direct
// calls against the library engine, the session and summaries stores, the
// qBittorrent and OpenSubtitles services, and the assistant itself. It
// centralizes configuration resolution and logger setup so subcommands can
// focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
