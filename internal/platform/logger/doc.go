// Package logger configures the process-wide slog JSON logger and carries
// request-scoped loggers through context. Every handler it installs wraps
// the output in a redacting layer so connection strings, tokens, and AI
// provider keys never reach the log stream.
package logger
