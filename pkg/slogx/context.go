package slogx

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the request logger, or slog.Default outside a request.
func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}

// WithUser tags the request logger with the authenticated subject and role.
func WithUser(ctx context.Context, userID, role string) context.Context {
	l := FromContext(ctx).With("user_id", userID, "role", role)
	if h, ok := ctx.Value(holderKey{}).(*loggerHolder); ok {
		h.logger = h.logger.With("user_id", userID, "role", role)
	}
	return WithContext(ctx, l)
}

type holderKey struct{}

// loggerHolder lets handlers deeper in the chain enrich the logger used for
// the access log line written by HTTPMiddleware.
type loggerHolder struct {
	logger *slog.Logger
}

func withHolder(ctx context.Context, h *loggerHolder) context.Context {
	return context.WithValue(ctx, holderKey{}, h)
}
