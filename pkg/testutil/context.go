package testutil

import (
	"context"
	"time"

	"scriptorium/pkg/requestcontext"
)

// FixedTime is the clock most scenario tests run at.
var FixedTime = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

// Context returns a background context pinned to FixedTime with a request id.
func Context() context.Context {
	ctx := requestcontext.WithTime(context.Background(), FixedTime)
	return requestcontext.WithRequestID(ctx, "test-request")
}

// At pins ctx to t.
func At(ctx context.Context, t time.Time) context.Context {
	return requestcontext.WithTime(ctx, t)
}
