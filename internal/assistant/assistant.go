package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"usher/internal/agents"
	"usher/internal/logging"
	"usher/internal/services"
	"usher/internal/services/llm"
	"usher/internal/session"
	"usher/internal/supervisor"
)

const (
	// maxSupervisorSteps caps the route and dispatch loop for one chat
	// turn so a routing cycle can never spin forever.
	maxSupervisorSteps = 10
	// defaultHistoryLimit bounds how many stored turns feed the agents.
	defaultHistoryLimit = 20
)

// noActionReply answers turns the supervisor finishes without dispatching
// any agent, such as greetings and thanks.
const noActionReply = "Happy to help. Ask me about movie details, downloads, subtitles, or your movie library."

// Store abstracts conversation persistence.
type Store interface {
	EnsureThread(ctx context.Context, threadID string) (string, error)
	AppendMessage(ctx context.Context, threadID, role, content, agent string) (int64, error)
	History(ctx context.Context, threadID string, limit int) ([]session.Message, error)
}

// Router abstracts the supervisor routing decision.
type Router interface {
	Route(ctx context.Context, req supervisor.Request) (supervisor.AgentID, error)
}

// Reply is the assistant's answer to one chat message.
type Reply struct {
	ThreadID string
	Agent    supervisor.AgentID
	Message  string
	Steps    int
}

// Assistant drives one chat turn: route the latest message, dispatch the
// chosen agent, feed its reply back to the router, and repeat until the
// supervisor finishes. Every turn is persisted to the session store.
type Assistant struct {
	router       Router
	roster       map[supervisor.AgentID]agents.Agent
	store        Store
	historyLimit int
	logger       *slog.Logger
}

// New builds an assistant from a router, a session store, and the agent
// roster. Every routable agent must appear exactly once.
func New(router Router, store Store, roster []agents.Agent, logger *slog.Logger) (*Assistant, error) {
	if router == nil {
		return nil, fmt.Errorf("assistant: router required")
	}
	if store == nil {
		return nil, fmt.Errorf("assistant: session store required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	byID := make(map[supervisor.AgentID]agents.Agent, len(roster))
	for _, agent := range roster {
		if agent == nil {
			return nil, fmt.Errorf("assistant: nil agent in roster")
		}
		if _, dup := byID[agent.ID()]; dup {
			return nil, fmt.Errorf("assistant: duplicate agent %q", agent.ID())
		}
		byID[agent.ID()] = agent
	}
	for _, id := range supervisor.Agents() {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("assistant: missing agent %q", id)
		}
	}

	return &Assistant{
		router:       router,
		roster:       byID,
		store:        store,
		historyLimit: defaultHistoryLimit,
		logger:       logging.WithComponent(logger, "assistant"),
	}, nil
}

// Chat answers one user message within a thread. A blank threadID starts a
// new thread; the returned Reply carries the thread the turn was stored in.
func (a *Assistant) Chat(ctx context.Context, threadID, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, fmt.Errorf("%w: message is required", services.ErrValidation)
	}

	threadID, err := a.store.EnsureThread(ctx, threadID)
	if err != nil {
		return Reply{}, fmt.Errorf("ensure thread: %w", err)
	}

	stored, err := a.store.History(ctx, threadID, a.historyLimit)
	if err != nil {
		return Reply{}, fmt.Errorf("load history: %w", err)
	}
	if _, err := a.store.AppendMessage(ctx, threadID, session.RoleUser, message, ""); err != nil {
		return Reply{}, fmt.Errorf("store user message: %w", err)
	}

	history := make([]llm.Message, 0, len(stored)+1)
	for _, msg := range stored {
		history = append(history, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	history = append(history, llm.Message{Role: "user", Content: message})

	reply := Reply{ThreadID: threadID}
	latest := supervisor.Request{Message: message}

	for reply.Steps < maxSupervisorSteps {
		reply.Steps++

		next, err := a.router.Route(ctx, latest)
		if err != nil {
			return Reply{}, fmt.Errorf("route step %d: %w", reply.Steps, err)
		}
		if next == supervisor.Finish {
			break
		}

		agent, ok := a.roster[next]
		if !ok {
			return Reply{}, fmt.Errorf("no agent registered for %q", next)
		}

		answer, err := agent.Respond(ctx, agents.Request{UserMessage: message, History: history})
		if err != nil {
			return Reply{}, fmt.Errorf("%s agent: %w", next, err)
		}
		if _, err := a.store.AppendMessage(ctx, threadID, session.RoleAssistant, answer, string(next)); err != nil {
			return Reply{}, fmt.Errorf("store agent reply: %w", err)
		}

		history = append(history, llm.Message{Role: "assistant", Content: answer})
		reply.Agent = next
		reply.Message = answer
		latest = supervisor.Request{Message: answer, From: next}
	}

	if reply.Message == "" {
		reply.Message = noActionReply
		if _, err := a.store.AppendMessage(ctx, threadID, session.RoleAssistant, reply.Message, ""); err != nil {
			return Reply{}, fmt.Errorf("store assistant reply: %w", err)
		}
	}
	if reply.Steps == maxSupervisorSteps {
		a.logger.Warn("supervisor step cap reached",
			logging.String("thread_id", threadID),
			logging.Int("steps", reply.Steps),
		)
	}

	a.logger.Info("chat turn answered",
		logging.String("thread_id", threadID),
		logging.String("agent", string(reply.Agent)),
		logging.Int("steps", reply.Steps),
	)
	return reply, nil
}
