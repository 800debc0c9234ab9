// Package opensubtitles is a client for the OpenSubtitles REST API.
//
// Searches are movie-only and ordered by download count. Downloads are two
// requests: negotiate a short-lived link, then fetch the payload. The free
// tier throttles hard, so the package also provides a minimum-interval
// Limiter and an IsRetriable classifier for backoff loops.
package opensubtitles
