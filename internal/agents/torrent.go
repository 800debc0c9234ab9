package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"usher/internal/services"
	"usher/internal/services/llm"
	"usher/internal/supervisor"
)

// torrentPrompt frames the download manager agent for the model.
const torrentPrompt = `You are the download manager of a home theater system.

You check active downloads, search for movie torrents, and start downloads through the local torrent client.

Guidelines:
- Use torrent_downloads to report current download progress.
- Use torrent_search to list available files before committing to a download.
- Use torrent_download to start a download by movie name or magnet link.
- Report results plainly. If a tool reports a problem, pass the explanation on to the user.`

// TransferManager abstracts the torrent service behind the download agent.
type TransferManager interface {
	Status(ctx context.Context) (string, error)
	SearchTorrents(ctx context.Context, query string) (string, error)
	Download(ctx context.Context, target string) (string, error)
}

// NewTorrentAgent builds the agent that manages movie downloads.
func NewTorrentAgent(client ToolCompleter, transfers TransferManager, logger *slog.Logger) *ToolAgent {
	status := tool{
		def: llm.NewTool(
			"torrent_downloads",
			"Check current torrent downloads and their progress.",
			nil,
		),
		run: func(ctx context.Context, _ string) (string, error) {
			return transfers.Status(ctx)
		},
	}

	search := tool{
		def: llm.NewTool(
			"torrent_search",
			"Search for movie torrents by title or keyword.",
			json.RawMessage(`{"type":"object","properties":{"search_term":{"type":"string","description":"Movie title or keywords to search for."}},"required":["search_term"]}`),
		),
		run: func(ctx context.Context, args string) (string, error) {
			var params struct {
				SearchTerm string `json:"search_term"`
			}
			if err := decodeArgs(args, &params); err != nil {
				return "", err
			}
			return transfers.SearchTorrents(ctx, params.SearchTerm)
		},
	}

	download := tool{
		def: llm.NewTool(
			"torrent_download",
			"Start downloading a movie. Accepts a movie title, a magnet link, or a torrent URL.",
			json.RawMessage(`{"type":"object","properties":{"target":{"type":"string","description":"Movie title, magnet link, or torrent file URL."}},"required":["target"]}`),
		),
		run: func(ctx context.Context, args string) (string, error) {
			var params struct {
				Target string `json:"target"`
			}
			if err := decodeArgs(args, &params); err != nil {
				return "", err
			}
			if strings.TrimSpace(params.Target) == "" {
				return "", fmt.Errorf("%w: target is required", services.ErrValidation)
			}
			return transfers.Download(ctx, params.Target)
		},
	}

	return newToolAgent(supervisor.AgentTorrent, client, torrentPrompt, []tool{status, search, download}, logger)
}
