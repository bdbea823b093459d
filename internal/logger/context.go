package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type ctxKey struct{}

type eventKey struct{}

// ContextWithLogger stores a logger in the context.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext extracts a logger from the context.
// Returns zap.NewNop() if no logger is found.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// FromContextOr is FromContext with an explicit fallback for code that also runs outside requests.
func FromContextOr(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return fallback
}

// Event collects fields for a request's single canonical log line.
// Any layer below the HTTP middleware can add to it through Annotate.
type Event struct {
	mu     sync.Mutex
	fields []zap.Field
}

// ContextWithEvent attaches an empty Event to ctx.
func ContextWithEvent(ctx context.Context) (context.Context, *Event) {
	ev := &Event{}
	return context.WithValue(ctx, eventKey{}, ev), ev
}

// Annotate appends fields to the request's event. No-op outside a request.
func Annotate(ctx context.Context, fields ...zap.Field) {
	ev, ok := ctx.Value(eventKey{}).(*Event)
	if !ok {
		return
	}
	ev.mu.Lock()
	ev.fields = append(ev.fields, fields...)
	ev.mu.Unlock()
}

// Fields returns a copy of the collected fields.
func (e *Event) Fields() []zap.Field {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]zap.Field, len(e.fields))
	copy(out, e.fields)
	return out
}
