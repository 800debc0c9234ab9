package summaries

import (
	"context"
	"fmt"
	"strings"

	"usher/internal/config"
)

// Embedder turns text into fixed-size vectors. Implementations batch where
// the provider allows it; callers must not assume per-text requests.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// ModelID names the embedding model, used to detect stale stored vectors.
	ModelID() string

	// Dim returns the vector dimensionality.
	Dim() int
}

// NewEmbedder constructs the configured embedding provider.
func NewEmbedder(ctx context.Context, cfg *config.Config) (Embedder, error) {
	section := cfg.Embeddings
	switch strings.ToLower(strings.TrimSpace(section.Provider)) {
	case "openai", "":
		return NewOpenAIEmbedder(OpenAIConfig{
			APIKey:    section.APIKey,
			BaseURL:   section.BaseURL,
			Model:     section.Model,
			Dimension: section.Dimension,
		}), nil
	case "gemini":
		return NewGeminiEmbedder(ctx, GeminiConfig{
			APIKey:    section.APIKey,
			Model:     section.Model,
			Dimension: section.Dimension,
		})
	default:
		return nil, fmt.Errorf("unsupported embeddings provider %q (use \"openai\" or \"gemini\")", section.Provider)
	}
}
