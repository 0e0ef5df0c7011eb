package slogx

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// WithContext stores logger on ctx for FromContext.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the request-scoped logger, or the default logger when
// none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// With derives the request logger with extra attributes, e.g. the
// authenticated user id, and stores it back on the returned context.
func With(ctx context.Context, args ...any) context.Context {
	return WithContext(ctx, FromContext(ctx).With(args...))
}
