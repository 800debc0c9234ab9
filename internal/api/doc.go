// Package api defines wire-format types and services for the HTTP API layer.
// It translates internal models into transport-friendly DTOs so handlers and
// remote consumers never couple to internal types.
//
// # Key Types
//
// ChatRequest/ChatResponse: one conversational turn against the assistant,
// carrying the thread id so callers can continue a conversation.
//
// HealthResponse: overall service status plus per-component details.
//
// DaemonStatus: aggregated runtime information including library roots and
// session store counts.
//
// # Design Notes
//
// DTOs use snake_case JSON tags matching the /chat wire format. Timestamps
// use RFC3339 with milliseconds. The chat service reports validation
// failures with services.ErrValidation so handlers can map them to 400
// while upstream assistant failures become 502.
package api
