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

// subtitlesPrompt frames the subtitle specialist agent for the model.
const subtitlesPrompt = `You are the subtitle specialist of a home theater system.

You find and download subtitles from OpenSubtitles by movie title.

Guidelines:
- Use search_subtitles to list available subtitles for a movie.
- Use download_subtitles to fetch the best subtitle per requested language; it saves the files and reports each path.
- Languages may be names or ISO codes. When the user names no language, the configured defaults apply.
- Report saved file locations back to the user.`

// SubtitleFetcher abstracts the subtitles service behind the agent.
type SubtitleFetcher interface {
	SearchSubtitles(ctx context.Context, query string) (string, error)
	Download(ctx context.Context, query string, langs []string) (string, error)
}

// NewSubtitlesAgent builds the agent that finds and downloads subtitles.
func NewSubtitlesAgent(client ToolCompleter, fetcher SubtitleFetcher, logger *slog.Logger) *ToolAgent {
	search := tool{
		def: llm.NewTool(
			"search_subtitles",
			"Search OpenSubtitles for available subtitles by movie title.",
			json.RawMessage(`{"type":"object","properties":{"movie_name":{"type":"string","description":"Movie title, optionally with year."}},"required":["movie_name"]}`),
		),
		run: func(ctx context.Context, args string) (string, error) {
			var params struct {
				MovieName string `json:"movie_name"`
			}
			if err := decodeArgs(args, &params); err != nil {
				return "", err
			}
			return fetcher.SearchSubtitles(ctx, params.MovieName)
		},
	}

	download := tool{
		def: llm.NewTool(
			"download_subtitles",
			"Download the best subtitle per language for a movie and save the files locally.",
			json.RawMessage(`{"type":"object","properties":{"movie_name":{"type":"string","description":"Movie title, optionally with year."},"languages":{"type":"array","items":{"type":"string"},"description":"Languages as names or ISO codes. Omit to use the configured defaults."}},"required":["movie_name"]}`),
		),
		run: func(ctx context.Context, args string) (string, error) {
			var params struct {
				MovieName string   `json:"movie_name"`
				Languages []string `json:"languages"`
			}
			if err := decodeArgs(args, &params); err != nil {
				return "", err
			}
			if strings.TrimSpace(params.MovieName) == "" {
				return "", fmt.Errorf("%w: movie_name is required", services.ErrValidation)
			}
			return fetcher.Download(ctx, params.MovieName, params.Languages)
		},
	}

	return newToolAgent(supervisor.AgentSubtitles, client, subtitlesPrompt, []tool{search, download}, logger)
}
