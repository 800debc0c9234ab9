package summaries

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"usher/internal/logging"
)

// Retriever answers natural language movie questions from the summaries
// store by ranking stored embeddings against an embedded query.
type Retriever struct {
	store    *Store
	embedder Embedder
	topK     int
	logger   *slog.Logger
}

// NewRetriever wires a store and embedder together. A non-positive topK
// falls back to five results.
func NewRetriever(store *Store, embedder Embedder, topK int, logger *slog.Logger) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{
		store:    store,
		embedder: embedder,
		topK:     topK,
		logger:   logging.WithComponent(logger, "summaries"),
	}
}

// Search embeds the query, scores it against every stored vector, and
// returns the topK summaries ordered by descending similarity.
func (r *Retriever) Search(ctx context.Context, query string) ([]Scored, error) {
	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryVector := vectors[0]

	stored, err := r.store.vectors(ctx)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, nil
	}

	type candidate struct {
		id    int64
		score float64
	}
	candidates := make([]candidate, 0, len(stored))
	for _, entry := range stored {
		candidates = append(candidates, candidate{
			id:    entry.id,
			score: cosineSimilarity(queryVector, entry.vector),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].id < candidates[j].id
	})
	if len(candidates) > r.topK {
		candidates = candidates[:r.topK]
	}

	results := make([]Scored, 0, len(candidates))
	for _, entry := range candidates {
		summary, err := r.store.getByID(ctx, entry.id)
		if err != nil {
			return nil, err
		}
		if summary == nil {
			continue
		}
		results = append(results, Scored{Summary: *summary, Score: entry.score})
	}

	r.logger.Debug("summaries search",
		logging.String("query", query),
		logging.Int("candidates", len(stored)),
		logging.Int("results", len(results)))
	return results, nil
}
