package agents

import (
	"context"
	"fmt"
	"log/slog"

	"usher/internal/library"
	"usher/internal/logging"
	"usher/internal/services"
	"usher/internal/supervisor"
)

// LibraryAgent answers questions about the movies already on disk. It
// short-circuits the tool loop: every request goes straight to the library
// engine with the user's message, no model round trip.
type LibraryAgent struct {
	engine *library.Engine
	logger *slog.Logger
}

// NewLibraryAgent wraps the library engine as a routable agent.
func NewLibraryAgent(engine *library.Engine, logger *slog.Logger) *LibraryAgent {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LibraryAgent{engine: engine, logger: logging.WithComponent(logger, "agents")}
}

// ID reports which supervisor route this agent serves.
func (a *LibraryAgent) ID() supervisor.AgentID {
	return supervisor.AgentLibrary
}

// Respond scans the library and answers the latest user message. Scan
// failures become a reply rather than an error so the conversation keeps
// going.
func (a *LibraryAgent) Respond(ctx context.Context, req Request) (string, error) {
	reply, err := a.engine.Run(ctx, req.UserMessage)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		a.logger.Warn("library scan failed",
			logging.String("agent", string(a.ID())),
			logging.Error(err),
		)
		if services.Unavailable(err) {
			return fmt.Sprintf("The movie library is not reachable: %v. Check the configured library roots.", err), nil
		}
		return fmt.Sprintf("Library scan failed: %v", err), nil
	}
	return reply, nil
}
