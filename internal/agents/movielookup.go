package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"usher/internal/services"
	"usher/internal/services/llm"
	"usher/internal/summaries"
	"usher/internal/supervisor"
)

// movieLookupPrompt frames the movie lookup agent for the model.
const movieLookupPrompt = `You are a movie database expert with access to a curated collection of movie summaries.

Your expertise covers plots, cast, directors, genres, release years, and recommendations.

Use the search_movie_summaries tool for every movie information request, searching with keywords taken from the user's question. Present the results in a helpful, organized answer. If the tool reports a problem, explain it to the user instead of guessing.`

// SummarySearcher abstracts the movie summaries retriever.
type SummarySearcher interface {
	Search(ctx context.Context, query string) ([]summaries.Scored, error)
}

// NewMovieLookupAgent builds the agent that answers movie detail questions
// from the summaries store.
func NewMovieLookupAgent(client ToolCompleter, retriever SummarySearcher, logger *slog.Logger) *ToolAgent {
	search := tool{
		def: llm.NewTool(
			"search_movie_summaries",
			"Search the curated movie summaries database for plot, cast, director, genre, and recommendation information.",
			json.RawMessage(`{"type":"object","properties":{"query":{"type":"string","description":"Free-text description of the movies to find."}},"required":["query"]}`),
		),
		run: func(ctx context.Context, args string) (string, error) {
			var params struct {
				Query string `json:"query"`
			}
			if err := decodeArgs(args, &params); err != nil {
				return "", err
			}
			if strings.TrimSpace(params.Query) == "" {
				return "", fmt.Errorf("%w: query is required", services.ErrValidation)
			}
			if retriever == nil {
				return "", fmt.Errorf("%w: summaries retriever is not configured", services.ErrConfiguration)
			}
			results, err := retriever.Search(ctx, params.Query)
			if err != nil {
				return "", err
			}
			return summaries.FormatScored(results), nil
		},
	}
	return newToolAgent(supervisor.AgentMovieLookup, client, movieLookupPrompt, []tool{search}, logger)
}
