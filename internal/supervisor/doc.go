// Package supervisor decides which specialist agent handles the next turn
// of a conversation. Routing is an LLM call constrained to a strict JSON
// reply naming one agent or the finish sentinel.
package supervisor
