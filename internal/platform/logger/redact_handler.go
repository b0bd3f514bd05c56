package logger

import (
	"context"
	"log/slog"

	"github.com/phrazzld/mnemo-api/internal/redact"
)

// RedactingHandler is a slog.Handler that redacts sensitive information from
// log messages and string attribute values before forwarding records to the
// wrapped handler. It keeps connection strings, passwords, provider API keys,
// and raw SQL out of the log stream even when an error message carries them.
type RedactingHandler struct {
	handler slog.Handler
}

// NewRedactingHandler wraps the provided handler with redaction.
func NewRedactingHandler(inner slog.Handler) *RedactingHandler {
	return &RedactingHandler{handler: inner}
}

// Enabled implements the slog.Handler interface.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// WithAttrs implements the slog.Handler interface. Attributes attached via
// Logger.With are redacted once here rather than on every record.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		redacted[i] = redactAttr(attr)
	}
	return &RedactingHandler{handler: h.handler.WithAttrs(redacted)}
}

// WithGroup implements the slog.Handler interface.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{handler: h.handler.WithGroup(name)}
}

// Handle implements the slog.Handler interface. It rebuilds the record with
// the message and each attribute passed through the redaction filters.
func (h *RedactingHandler) Handle(ctx context.Context, record slog.Record) error {
	clean := slog.NewRecord(record.Time, record.Level, redact.String(record.Message), record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		clean.AddAttrs(redactAttr(attr))
		return true
	})
	return h.handler.Handle(ctx, clean)
}

// redactAttr returns a copy of attr with sensitive string content replaced.
// Groups are walked recursively; errors are flattened to their redacted
// message so the underlying handler never serializes the original text.
func redactAttr(attr slog.Attr) slog.Attr {
	attr.Value = attr.Value.Resolve()

	switch attr.Value.Kind() {
	case slog.KindString:
		attr.Value = slog.StringValue(redact.String(attr.Value.String()))
	case slog.KindGroup:
		group := attr.Value.Group()
		cleaned := make([]slog.Attr, len(group))
		for i, member := range group {
			cleaned[i] = redactAttr(member)
		}
		attr.Value = slog.GroupValue(cleaned...)
	case slog.KindAny:
		if err, ok := attr.Value.Any().(error); ok && err != nil {
			attr.Value = slog.StringValue(redact.Error(err))
		}
	}

	return attr
}
