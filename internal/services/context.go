package services

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	threadIDKey  contextKey = "thread_id"
	agentKey     contextKey = "agent"
)

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithThreadID annotates context with the conversation thread identifier.
func WithThreadID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, threadIDKey, id)
}

// ThreadIDFromContext extracts the conversation thread identifier if present.
func ThreadIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(threadIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithAgent annotates context with the agent currently handling the message.
func WithAgent(ctx context.Context, agent string) context.Context {
	if agent == "" {
		return ctx
	}
	return context.WithValue(ctx, agentKey, agent)
}

// AgentFromContext returns the handling agent name if present.
func AgentFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(agentKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
