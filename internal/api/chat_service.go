package api

import (
	"context"
	"errors"

	"usher/internal/assistant"
)

// ChatRunner abstracts the conversation loop the chat endpoint dispatches into.
type ChatRunner interface {
	Chat(ctx context.Context, threadID, message string) (assistant.Reply, error)
}

// ChatService exposes the assistant as a transport-friendly service.
type ChatService struct {
	runner ChatRunner
}

// NewChatService constructs a ChatService around the provided runner.
func NewChatService(runner ChatRunner) *ChatService {
	if runner == nil {
		return nil
	}
	return &ChatService{runner: runner}
}

// Chat executes one conversational turn. Validation errors from the runner
// pass through unwrapped so handlers can classify them.
func (s *ChatService) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if s == nil || s.runner == nil {
		return ChatResponse{}, errors.New("assistant unavailable")
	}
	reply, err := s.runner.Chat(ctx, req.ThreadID, req.Message)
	if err != nil {
		return ChatResponse{}, err
	}
	return FromReply(reply), nil
}
