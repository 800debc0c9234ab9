package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Message is a single turn of a chat conversation. Role follows the
// OpenAI-compatible wire format: system, user, assistant, or tool. Tool
// result messages must carry the ToolCallID they answer.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Index    int          `json:"index,omitempty"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names the requested function and carries its JSON-encoded
// arguments exactly as the model produced them.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool describes one function the model may call.
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction carries the function schema advertised to the model.
// Parameters holds a JSON Schema object.
type ToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// NewTool builds a function tool definition from a name, description, and a
// JSON Schema for the parameters.
func NewTool(name, description string, parameters json.RawMessage) Tool {
	if len(parameters) == 0 {
		parameters = json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return Tool{
		Type: "function",
		Function: ToolFunction{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
	Tools          []Tool            `json:"tools,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatResponseMessage `json:"message"`
		// Some providers mistakenly return the streaming schema (delta) even
		// when stream=false, so tolerate it as a fallback.
		Delta chatResponseMessage `json:"delta"`
		// Legacy "text" field (completion-style responses).
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type chatResponseMessage struct {
	Content      string        `json:"content"`
	ToolCalls    []ToolCall    `json:"tool_calls"`
	FunctionCall *FunctionCall `json:"function_call"`
	Refusal      string        `json:"refusal"`
}

// Complete sends the conversation and returns the assistant's text reply.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("llm complete: messages required")
	}
	if c.cfg.APIKey == "" {
		return "", errors.New("llm complete: api key required")
	}
	payload := chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: 0,
	}
	reply, err := c.sendWithRetry(ctx, payload, "llm complete")
	if err != nil {
		return "", err
	}
	return reply.Content, nil
}

// CompleteJSON issues a JSON-only chat completion request with the supplied
// prompts. It returns the raw JSON payload produced by the model.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	if systemPrompt == "" {
		return "", errors.New("llm complete: system prompt required")
	}
	if userPrompt == "" {
		return "", errors.New("llm complete: user prompt required")
	}
	if c.cfg.APIKey == "" {
		return "", errors.New("llm complete: api key required")
	}
	payload := chatRequest{
		Model: c.cfg.Model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    0,
		ResponseFormat: map[string]string{"type": jsonResponseType},
	}
	reply, err := c.sendWithRetry(ctx, payload, "llm complete")
	if err != nil {
		return "", err
	}
	return reply.Content, nil
}

// CompleteTools sends the conversation together with a tool catalogue and
// returns the assistant's reply, which carries either text content or one
// or more tool calls to execute.
func (c *Client) CompleteTools(ctx context.Context, messages []Message, tools []Tool) (Message, error) {
	if len(messages) == 0 {
		return Message{}, errors.New("llm tools: messages required")
	}
	if c.cfg.APIKey == "" {
		return Message{}, errors.New("llm tools: api key required")
	}
	payload := chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: 0,
		Tools:       tools,
	}
	return c.sendWithRetry(ctx, payload, "llm tools")
}

// HealthCheck issues a fast ping to verify the API key and model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return errors.New("llm health: api key required")
	}
	payload := chatRequest{
		Model: c.cfg.Model,
		Messages: []Message{
			{Role: "system", Content: "You must respond with JSON only."},
			{Role: "user", Content: "Respond with {\"ok\":true}"},
		},
		Temperature:    0,
		ResponseFormat: map[string]string{"type": jsonResponseType},
	}
	reply, err := c.sendWithRetry(ctx, payload, "llm health")
	if err != nil {
		return err
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := DecodeLLMJSON(reply.Content, &parsed); err != nil {
		return fmt.Errorf("llm health: parse payload: %w", err)
	}
	if !parsed.OK {
		return errors.New("llm health: unexpected response")
	}
	return nil
}

// sendWithRetry issues the request until the model produces a usable reply,
// meaning non-empty content or at least one tool call. Transport failures
// and empty replies are retried per the retry policy.
func (c *Client) sendWithRetry(ctx context.Context, payload chatRequest, op string) (Message, error) {
	attempts := c.retryAttempts()
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		completion, body, err := c.sendOnce(ctx, payload)
		if err == nil {
			reply, finishReason := extractReply(completion)
			if reply.Content != "" || len(reply.ToolCalls) > 0 {
				return reply, nil
			}
			if len(completion.Choices) == 0 {
				err = fmt.Errorf("%s: empty choices", op)
			} else {
				err = &emptyContentError{
					Op:           op,
					FinishReason: finishReason,
					Refusal:      extractRefusal(completion),
					Snippet:      summarizePayloadSnippet(string(body)),
				}
			}
		}

		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			return Message{}, err
		}
		if err := c.sleep(ctx, delay); err != nil {
			return Message{}, err
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	return Message{}, fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}

func extractReply(completion chatResponse) (Message, string) {
	var finishReason string
	for _, choice := range completion.Choices {
		if finishReason == "" {
			finishReason = strings.TrimSpace(choice.FinishReason)
		}
		if calls := firstToolCalls(choice.Message.ToolCalls, choice.Delta.ToolCalls); len(calls) > 0 {
			return Message{
				Role:      "assistant",
				Content:   strings.TrimSpace(choice.Message.Content),
				ToolCalls: calls,
			}, finishReason
		}
		if content := firstNonEmpty(
			choice.Message.Content,
			choice.Delta.Content,
			choice.Text,
		); content != "" {
			return Message{Role: "assistant", Content: content}, finishReason
		}
		// Legacy function_call responses map onto a single tool call.
		if fc := firstFunctionCall(choice.Message.FunctionCall, choice.Delta.FunctionCall); fc != nil {
			return Message{
				Role: "assistant",
				ToolCalls: []ToolCall{{
					Type:     "function",
					Function: *fc,
				}},
			}, finishReason
		}
	}
	return Message{}, finishReason
}

func extractRefusal(completion chatResponse) string {
	for _, choice := range completion.Choices {
		if refusal := firstNonEmpty(choice.Message.Refusal, choice.Delta.Refusal); refusal != "" {
			return refusal
		}
	}
	return ""
}

func firstToolCalls(groups ...[]ToolCall) []ToolCall {
	for _, calls := range groups {
		var usable []ToolCall
		for _, call := range calls {
			if strings.TrimSpace(call.Function.Name) != "" {
				usable = append(usable, call)
			}
		}
		if len(usable) > 0 {
			return usable
		}
	}
	return nil
}

func firstFunctionCall(calls ...*FunctionCall) *FunctionCall {
	for _, fc := range calls {
		if fc != nil && strings.TrimSpace(fc.Name) != "" {
			return fc
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func (c *Client) sendOnce(ctx context.Context, payload chatRequest) (chatResponse, []byte, error) {
	var completion chatResponse
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "")
	if err != nil {
		return completion, nil, fmt.Errorf("llm request: build url: %w", err)
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return completion, nil, fmt.Errorf("llm request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return completion, nil, fmt.Errorf("llm request: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", c.cfg.Referer)
		req.Header.Set("Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		req.Header.Set("X-Title", c.cfg.Title)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return completion, nil, fmt.Errorf("llm request: http error (timeout=%s): %w", c.timeoutDuration(), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return completion, nil, fmt.Errorf("llm request: read body (timeout=%s): %w", c.timeoutDuration(), err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return completion, body, &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: retryAfter,
		}
	}
	if err := json.Unmarshal(body, &completion); err != nil {
		return completion, body, fmt.Errorf("llm request: decode response: %w", err)
	}
	if completion.Error != nil {
		return completion, body, fmt.Errorf("llm request: api error: %s", strings.TrimSpace(completion.Error.Message))
	}
	return completion, body, nil
}
