// Package llmhttp implements card generation against the REST APIs of
// OpenAI, xAI and Anthropic.
//
// OpenAI and xAI expose the same chat-completions protocol, so both are
// served by ChatClient pointed at different base URLs. Anthropic's messages
// API differs enough (header-based auth, top-level system prompt, content
// blocks) to warrant its own AnthropicClient.
//
// The clients hold no credentials. Every generation request carries its own
// API key, resolved upstream from either the user's stored key or the
// server's fallback key, and the key travels no further than the request
// headers.
//
// All three adapters share one retry policy: transient failures (rate
// limits, server errors, transport problems, truncated JSON) are retried
// with exponential backoff, permanent errors abort immediately.
package llmhttp
