// Package llm provides an OpenRouter-compatible chat client for the
// conversation engine and the analysis pipeline.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send a system prompt plus conversation turns, receive the
// next reply as plain text. An empty reply is valid.
// Client.CompleteJSON: send system/user prompts with a JSON response format,
// receive the raw JSON payload.
// Client.HealthCheck: verify API key and model availability.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors and network timeouts with
// exponential backoff (base 1s, max 10s, up to 5 attempts by default),
// honoring Retry-After when present. Context cancellation aborts retries
// immediately.
//
// # Error Classification
//
// Transport and API failures wrap services.ErrUpstream; a missing API key
// wraps services.ErrUnavailable so handlers can answer 503 rather than 500.
package llm
