package session

import "time"

// Message roles stored alongside each turn.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Thread is one conversation between a user and the assistant.
type Thread struct {
	ID           string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int
}

// Message is a single stored turn. Agent records which agent produced an
// assistant reply and is empty for user messages.
type Message struct {
	ID        int64
	ThreadID  string
	Role      string
	Content   string
	Agent     string
	CreatedAt time.Time
}
