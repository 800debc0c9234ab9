// Package torrent turns qBittorrent state into replies the download agent
// can hand to the user: active transfer listings, ranked search results,
// and download confirmations.
package torrent
