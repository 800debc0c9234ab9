// Package assistant orchestrates chat turns across the supervisor and the
// specialist agents, persisting every message to the session store.
package assistant
