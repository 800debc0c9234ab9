package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ChatRequest is the payload for POST /chat.
type ChatRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id,omitempty"`
}

// ChatResponse carries the assistant's reply for one turn.
type ChatResponse struct {
	ThreadID string `json:"thread_id"`
	Agent    string `json:"agent,omitempty"`
	Response string `json:"response"`
}

// HealthComponent reports the health of a single dependency.
type HealthComponent struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail,omitempty"`
}

// HealthResponse is the payload for GET /health.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components []HealthComponent `json:"components,omitempty"`
}

// LibraryRootStatus describes one configured library root.
type LibraryRootStatus struct {
	Path      string `json:"path"`
	Reachable bool   `json:"reachable"`
	Detail    string `json:"detail,omitempty"`
}

// SessionStats summarizes the conversation store.
type SessionStats struct {
	Threads  int `json:"threads"`
	Messages int `json:"messages"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running           bool                `json:"running"`
	PID               int                 `json:"pid"`
	StartedAt         string              `json:"started_at,omitempty"`
	UptimeSeconds     int64               `json:"uptime_seconds"`
	SessionDBPath     string              `json:"session_db_path"`
	SummariesDBPath   string              `json:"summaries_db_path"`
	LockFilePath      string              `json:"lock_file_path"`
	LibraryRoots      []LibraryRootStatus `json:"library_roots"`
	Sessions          SessionStats        `json:"sessions"`
	LastLibraryChange string              `json:"last_library_change,omitempty"`
}
