package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"usher/internal/logging"
	"usher/internal/services"
	"usher/internal/services/llm"
	"usher/internal/supervisor"
)

// maxToolIterations bounds the tool-calling loop of a single agent turn.
const maxToolIterations = 3

// Request carries the conversation as one agent sees it. History holds the
// stored turns oldest first, ending with the latest user message, which
// UserMessage repeats for agents that act on it directly.
type Request struct {
	UserMessage string
	History     []llm.Message
}

// Agent is one specialist the supervisor can dispatch a turn to.
type Agent interface {
	ID() supervisor.AgentID
	Respond(ctx context.Context, req Request) (string, error)
}

// ToolCompleter abstracts the tool-calling completion agents run on.
type ToolCompleter interface {
	CompleteTools(ctx context.Context, messages []llm.Message, tools []llm.Tool) (llm.Message, error)
}

// tool pairs a schema advertised to the model with its executor. The
// executor receives the argument payload exactly as the model produced it.
type tool struct {
	def llm.Tool
	run func(ctx context.Context, args string) (string, error)
}

// ToolAgent runs one specialist as a bounded tool-calling loop: send the
// history and tool schemas, execute any returned tool calls, feed the
// results back, and stop at plain content or the iteration cap.
type ToolAgent struct {
	id     supervisor.AgentID
	client ToolCompleter
	system string
	tools  []tool
	logger *slog.Logger
}

func newToolAgent(id supervisor.AgentID, client ToolCompleter, system string, tools []tool, logger *slog.Logger) *ToolAgent {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ToolAgent{
		id:     id,
		client: client,
		system: system,
		tools:  tools,
		logger: logging.WithComponent(logger, "agents"),
	}
}

// ID reports which supervisor route this agent serves.
func (a *ToolAgent) ID() supervisor.AgentID {
	return a.id
}

// Respond drives the tool loop for one turn and returns the agent's final
// text reply.
func (a *ToolAgent) Respond(ctx context.Context, req Request) (string, error) {
	messages := make([]llm.Message, 0, len(req.History)+1)
	messages = append(messages, llm.Message{Role: "system", Content: a.system})
	messages = append(messages, req.History...)

	defs := make([]llm.Tool, len(a.tools))
	for i, t := range a.tools {
		defs[i] = t.def
	}

	for iteration := 0; iteration < maxToolIterations; iteration++ {
		reply, err := a.client.CompleteTools(ctx, messages, defs)
		if err != nil {
			return "", fmt.Errorf("%s agent completion: %w", a.id, err)
		}
		if len(reply.ToolCalls) == 0 {
			return strings.TrimSpace(reply.Content), nil
		}

		messages = append(messages, reply)
		for _, call := range reply.ToolCalls {
			messages = append(messages, llm.Message{
				Role:       "tool",
				ToolCallID: call.ID,
				Content:    a.execute(ctx, call),
			})
		}
	}

	return fmt.Sprintf("Stopped after %d tool iterations without a final answer.", maxToolIterations), nil
}

// execute runs one requested tool call. Failures become tool output rather
// than errors so a broken service never aborts the conversation.
func (a *ToolAgent) execute(ctx context.Context, call llm.ToolCall) string {
	name := call.Function.Name
	for _, t := range a.tools {
		if t.def.Function.Name != name {
			continue
		}
		result, err := t.run(ctx, call.Function.Arguments)
		if err != nil {
			a.logger.Warn("tool call failed",
				logging.String("agent", string(a.id)),
				logging.String("tool", name),
				logging.Error(err),
			)
			return toolFailure(name, err)
		}
		a.logger.Debug("tool call completed",
			logging.String("agent", string(a.id)),
			logging.String("tool", name),
		)
		return result
	}
	return fmt.Sprintf("Tool %q does not exist.", name)
}

// toolFailure renders a tool error as model-readable output. Configuration
// gaps get a setup hint; anything else reads as a transient failure worth
// reporting to the user.
func toolFailure(name string, err error) string {
	if services.Unavailable(err) {
		return fmt.Sprintf("Tool %s is unavailable: %v. Tell the user this feature needs to be configured.", name, err)
	}
	return fmt.Sprintf("Tool %s failed: %v. Tell the user what went wrong.", name, err)
}

// decodeArgs parses the model-produced argument payload. An empty payload
// decodes as an empty object, which some providers send for no-argument
// tools.
func decodeArgs(raw string, target any) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(trimmed), target); err != nil {
		return fmt.Errorf("decode tool arguments: %w", err)
	}
	return nil
}
