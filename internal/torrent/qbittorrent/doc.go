// Package qbittorrent is a minimal client for the qBittorrent WebUI v2 API.
//
// Authentication is cookie based: the client logs in lazily before the
// first call and drops the session when the server answers 403. The plugin
// search flow (start, poll, results, delete) is wrapped in a single Search
// call so callers never leak search jobs.
package qbittorrent
