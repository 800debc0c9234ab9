package summaries

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOpenAIBaseURL   = "https://api.openai.com/v1"
	defaultOpenAIModel     = "text-embedding-3-small"
	defaultOpenAIDimension = 1536
	openAIRequestTimeout   = 60 * time.Second
)

// OpenAIConfig carries connection settings for the OpenAI embeddings API.
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	Dimension int
}

// OpenAIEmbedder calls the OpenAI embeddings endpoint. Any service exposing
// the same wire format works by overriding BaseURL.
type OpenAIEmbedder struct {
	cfg        OpenAIConfig
	httpClient *http.Client
}

// NewOpenAIEmbedder constructs an embedder over the OpenAI REST API.
func NewOpenAIEmbedder(cfg OpenAIConfig) *OpenAIEmbedder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenAIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = defaultOpenAIDimension
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return &OpenAIEmbedder{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: openAIRequestTimeout},
	}
}

// WithHTTPClient overrides the HTTP client, mainly for tests.
func (e *OpenAIEmbedder) WithHTTPClient(client *http.Client) *OpenAIEmbedder {
	if client != nil {
		e.httpClient = client
	}
	return e
}

// ModelID names the embedding model.
func (e *OpenAIEmbedder) ModelID() string {
	return e.cfg.Model
}

// Dim returns the vector dimensionality.
func (e *OpenAIEmbedder) Dim() int {
	return e.cfg.Dimension
}

type openAIEmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Embed requests vectors for all texts in a single call.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if e.cfg.APIKey == "" {
		return nil, errors.New("embeddings: api key required")
	}

	encoded, err := json.Marshal(openAIEmbeddingRequest{Model: e.cfg.Model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("embeddings: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/embeddings", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("embeddings: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embeddings: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embeddings: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed openAIEmbeddingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("embeddings: decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("embeddings: api error: %s", strings.TrimSpace(parsed.Error.Message))
	}
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings: got %d vectors for %d inputs", len(parsed.Data), len(texts))
	}

	// Results carry their input index and are not guaranteed to be ordered.
	vectors := make([][]float32, len(texts))
	for _, item := range parsed.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("embeddings: vector index %d out of range", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	for i, vec := range vectors {
		if len(vec) == 0 {
			return nil, fmt.Errorf("embeddings: missing vector for input %d", i)
		}
	}
	return vectors, nil
}

// HealthCheck embeds a short probe string to verify connectivity.
func (e *OpenAIEmbedder) HealthCheck(ctx context.Context) error {
	_, err := e.Embed(ctx, []string{"ping"})
	return err
}
