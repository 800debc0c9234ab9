// Package agents implements the specialist agents the supervisor routes
// conversation turns to. Most agents run a bounded tool-calling loop over
// their service; the library agent calls the library engine directly.
package agents
