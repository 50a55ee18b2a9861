package logger

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// With derives a context whose logger carries the extra fields. The request
// middleware uses this to scope every log line to a trace id.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, contextKey{}, From(ctx).With(fields...))
}

// From returns the request-scoped logger, falling back to the process-wide
// one when the context carries none.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
