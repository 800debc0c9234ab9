// Package services holds the error taxonomy and context plumbing shared by
// the external service clients (LLM, qBittorrent, OpenSubtitles, embeddings).
//
// Sentinel errors classify failures for the agents: configuration and
// not-found errors mean the operator has to act, everything else is worth a
// retry. Context annotations carry request, thread, and agent identifiers
// from the API layer down into service logs.
package services
