package summaries

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const (
	defaultGeminiModel     = "gemini-embedding-001"
	defaultGeminiDimension = 768
)

// GeminiConfig carries connection settings for the Gemini embeddings API.
type GeminiConfig struct {
	APIKey    string
	Model     string
	Dimension int
}

// GeminiEmbedder generates embeddings through the Google GenAI SDK.
type GeminiEmbedder struct {
	client *genai.Client
	cfg    GeminiConfig
}

// NewGeminiEmbedder constructs an embedder backed by the Gemini API.
func NewGeminiEmbedder(ctx context.Context, cfg GeminiConfig) (*GeminiEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("embeddings: gemini api key required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = defaultGeminiDimension
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("embeddings: create gemini client: %w", err)
	}
	return &GeminiEmbedder{client: client, cfg: cfg}, nil
}

// ModelID names the embedding model.
func (e *GeminiEmbedder) ModelID() string {
	return e.cfg.Model
}

// Dim returns the vector dimensionality.
func (e *GeminiEmbedder) Dim() int {
	return e.cfg.Dimension
}

// Embed requests vectors for all texts in a single batched call.
func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := e.client.Models.EmbedContent(ctx,
		e.cfg.Model,
		contents,
		&genai.EmbedContentConfig{
			TaskType: "SEMANTIC_SIMILARITY",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("embeddings: gemini embed: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embeddings: got %d vectors for %d inputs", len(result.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("embeddings: missing vector for input %d", i)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// HealthCheck embeds a short probe string to verify connectivity.
func (e *GeminiEmbedder) HealthCheck(ctx context.Context) error {
	_, err := e.Embed(ctx, []string{"ping"})
	return err
}

// Close releases the underlying client.
func (e *GeminiEmbedder) Close() error {
	return nil
}
