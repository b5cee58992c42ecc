package logging

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// WithContextID stores the execution-context identifier on ctx.
func WithContextID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKey{}, id)
}

// ContextIDFromContext extracts the execution-context identifier, if any.
func ContextIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := ContextIDFromContext(ctx); ok {
		return logger.With(slog.String(FieldContextID, id))
	}
	return logger
}
