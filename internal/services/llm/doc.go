// Package llm provides an OpenAI-compatible chat client used by the
// supervisor and the tool-calling agents.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send a conversation, receive the text reply.
// Client.CompleteJSON: send system/user prompts, receive a JSON response.
// Client.CompleteTools: send a conversation plus a tool catalogue, receive
// text or tool calls.
// Client.HealthCheck: verify API key and model availability.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, network timeouts, and
// empty replies with exponential backoff (base 1s, max 10s, up to 5
// attempts by default). A Retry-After header takes precedence over the
// computed backoff. Context cancellation aborts retries immediately.
//
// # Response Tolerance
//
// Providers differ in how faithfully they implement the chat schema, so the
// decoder accepts message, delta, and legacy text payloads, folds
// function_call responses into tool calls, and DecodeLLMJSON strips code
// fences and surrounding prose before giving up on a JSON payload.
package llm
