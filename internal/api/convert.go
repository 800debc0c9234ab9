package api

import (
	"time"

	"usher/internal/assistant"
	"usher/internal/preflight"
)

// FromReply converts an assistant reply into the /chat wire format.
func FromReply(reply assistant.Reply) ChatResponse {
	return ChatResponse{
		ThreadID: reply.ThreadID,
		Agent:    string(reply.Agent),
		Response: reply.Message,
	}
}

// FromResults converts preflight results into health components.
func FromResults(results []preflight.Result) []HealthComponent {
	if len(results) == 0 {
		return nil
	}
	out := make([]HealthComponent, 0, len(results))
	for _, result := range results {
		out = append(out, HealthComponent{
			Name:    result.Name,
			Healthy: result.Passed,
			Detail:  result.Detail,
		})
	}
	return out
}

// HealthStatus derives the overall status string from component health.
func HealthStatus(components []HealthComponent) string {
	for _, component := range components {
		if !component.Healthy {
			return "degraded"
		}
	}
	return "ok"
}

// FormatTime renders a timestamp for API payloads. Zero times render empty.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateTimeFormat)
}
