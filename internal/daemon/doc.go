// Package daemon coordinates the long-running Usher process and system
// integration points.
//
// It wires configuration, the session and summaries stores, the library
// watcher, the assistant, and the HTTP API into a single lifecycle with
// flock-based locking to prevent multiple instances. The daemon owns the
// startup and shutdown notifications and tracks runtime status for the
// /api/status endpoint.
//
// Keep orchestration logic here: conversation handling lives in the
// assistant, scanning in mediascan, and service clients in their own
// packages while the daemon focuses on startup, shutdown, and high level
// coordination.
package daemon
