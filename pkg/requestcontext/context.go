// Package requestcontext provides transport-independent context accessors for
// values that are set at the edge (HTTP middleware, the event bus) and consumed by
// services and handlers.
//
// Usage in services (read values):
//
//	now := requestcontext.Now(ctx)
//	requestID := requestcontext.RequestID(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey   struct{}
	requestTimeKey struct{}
	causationKey   struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
	ContextKeyCausation   = causationKey{}
)

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// CausationID returns the ID of the event whose delivery is running on ctx.
// Empty outside of a handler invocation.
func CausationID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyCausation).(string); ok {
		return id
	}
	return ""
}

// WithCausationID marks ctx as running on behalf of the given event.
func WithCausationID(ctx context.Context, eventID string) context.Context {
	return context.WithValue(ctx, ContextKeyCausation, eventID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (workers, event handlers, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
// Useful for:
//   - Service unit tests that don't run the full HTTP middleware chain
//   - Handlers that must stamp derived records with the publishing time
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
