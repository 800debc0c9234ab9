package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"usher/internal/logging"
	"usher/internal/services/llm"
)

// Completer abstracts the LLM JSON-completion call used for routing.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Request carries the latest message the routing decision is based on.
// From names the agent that produced it and is empty when the message came
// from the user.
type Request struct {
	Message string
	From    AgentID
}

// Router picks the next agent for a conversation turn by asking the LLM to
// apply the routing rules to the latest message.
type Router struct {
	client Completer
	logger *slog.Logger
}

// NewRouter builds a Router on the given completion client.
func NewRouter(client Completer, logger *slog.Logger) *Router {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Router{client: client, logger: logging.WithComponent(logger, "supervisor")}
}

// Route returns the agent that should handle the latest message, or Finish
// when the conversation is complete. A reply naming an unknown agent is an
// error, never a silent fallback.
func (r *Router) Route(ctx context.Context, req Request) (AgentID, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return "", fmt.Errorf("route: empty message")
	}

	raw, err := r.client.CompleteJSON(ctx, RoutingPrompt, buildRoutePrompt(message, req.From))
	if err != nil {
		return "", fmt.Errorf("routing completion: %w", err)
	}

	var decision routeDecision
	if err := llm.DecodeLLMJSON(raw, &decision); err != nil {
		return "", fmt.Errorf("decode routing reply: %w", err)
	}

	next, err := ParseAgentID(decision.Next)
	if err != nil {
		return "", fmt.Errorf("routing reply: %w", err)
	}

	r.logger.Debug("routing decision",
		logging.String("next", string(next)),
		logging.String("from", string(req.From)),
	)
	return next, nil
}

// buildRoutePrompt labels the latest message with its origin so the model
// can tell an agent reply apart from a fresh user request.
func buildRoutePrompt(message string, from AgentID) string {
	if from == "" {
		return "User request:\n" + message
	}
	return fmt.Sprintf("Latest message, from the %s agent:\n%s", from, message)
}
