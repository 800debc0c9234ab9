package preflight

import (
	"context"
	"strings"

	"usher/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks for optional services only run when the service is configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// State directory (always checked)
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	// Log directory (when configured)
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	// Subtitle directory (when configured)
	if cfg.Paths.SubtitleDir != "" {
		results = append(results, CheckDirectoryAccess("Subtitle directory", cfg.Paths.SubtitleDir))
	}

	// Library roots
	for _, root := range cfg.Library.Roots {
		results = append(results, CheckLibraryRoot(root))
	}

	// The chat LLM and the embeddings provider back the supervisor and the
	// movie summaries retriever. Both are core, so a missing key surfaces
	// as a failed result rather than a skipped check.
	results = append(results, CheckLLM(ctx, "LLM API", cfg.GetLLM()))
	results = append(results, CheckEmbeddings(ctx, cfg))

	// qBittorrent (when a WebUI URL is configured)
	if strings.TrimSpace(cfg.Torrent.URL) != "" {
		results = append(results, CheckQBittorrent(ctx, cfg))
	}

	// OpenSubtitles (when an API key is configured)
	if strings.TrimSpace(cfg.Subtitles.APIKey) != "" {
		results = append(results, CheckOpenSubtitles(ctx, cfg.Subtitles.BaseURL, cfg.Subtitles.APIKey, cfg.Subtitles.UserAgent))
	}

	return results
}
