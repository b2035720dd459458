package slogx

import (
	"context"
	"log/slog"
	"sync"
)

type (
	loggerKey  struct{}
	requestKey struct{}
)

// request is the per-request state HTTPMiddleware shares with handlers.
type request struct {
	id string

	mu    sync.Mutex
	attrs []slog.Attr
}

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the request scoped logger, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}

// With returns a context whose logger carries the extra attributes. Inside
// HTTPMiddleware the attributes are also added to the access log line.
func With(ctx context.Context, attrs ...slog.Attr) context.Context {
	if req, ok := ctx.Value(requestKey{}).(*request); ok {
		req.mu.Lock()
		req.attrs = append(req.attrs, attrs...)
		req.mu.Unlock()
	}

	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return WithContext(ctx, FromContext(ctx).With(args...))
}

// RequestID returns the id HTTPMiddleware assigned, or "".
func RequestID(ctx context.Context) string {
	if req, ok := ctx.Value(requestKey{}).(*request); ok {
		return req.id
	}
	return ""
}

func (r *request) snapshot() []slog.Attr {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]slog.Attr(nil), r.attrs...)
}
