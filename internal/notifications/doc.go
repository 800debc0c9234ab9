// Package notifications delivers assistant events via ntfy push messages.
//
// The default implementation publishes to the topic configured in
// config.toml and gracefully degrades to a no-op when no topic is set.
// Per-event toggles let users silence daemon lifecycle, download, and
// library-change messages independently; errors always go through.
//
// All callers depend only on the Service interface, so alternative
// transports slot in without touching daemon or agent code.
package notifications
