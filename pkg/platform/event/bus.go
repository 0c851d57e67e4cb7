package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	dErrors "scriptorium/pkg/domain-errors"
	"scriptorium/pkg/requestcontext"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks scriptorium/pkg/platform/event Handler,Publisher

// DefaultHandlerTimeout bounds a single handler invocation.
const DefaultHandlerTimeout = 5 * time.Second

// Handler reacts to a delivered event.
type Handler interface {
	Handle(ctx context.Context, evt Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, evt Event) error

func (f HandlerFunc) Handle(ctx context.Context, evt Event) error { return f(ctx, evt) }

// Publisher hands events to subscribers. The returned count is the number of
// handler invocations the call made.
type Publisher interface {
	Publish(ctx context.Context, evt Event) (int, error)
	PublishAll(ctx context.Context, events []Event) (int, error)
}

// Subscriber registers handlers by topic pattern.
type Subscriber interface {
	Subscribe(pattern string, h Handler)
}

type subscription struct {
	pattern string
	name    string
	handler Handler
}

// Bus is the in-process Publisher/Subscriber shared by all contexts.
//
// Delivery is synchronous: Publish returns once every matching handler has
// finished, failed or timed out, in registration order. A failing handler is
// logged and counted; it never blocks later handlers and its error is not
// returned to the publisher. There is no durability: events published to a bus
// that dies are gone.
type Bus struct {
	mu      sync.RWMutex
	subs    []subscription
	logger  *slog.Logger
	timeout time.Duration
	metrics *Metrics
	tracer  trace.Tracer
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithHandlerTimeout bounds each handler call. Zero disables the bound and runs
// handlers inline on the publishing goroutine.
func WithHandlerTimeout(d time.Duration) Option {
	return func(b *Bus) {
		b.timeout = d
	}
}

// WithMetrics enables prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(b *Bus) {
		b.metrics = m
	}
}

// WithTracerProvider overrides the global otel tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(b *Bus) {
		if tp != nil {
			b.tracer = tp.Tracer(tracerName)
		}
	}
}

const tracerName = "scriptorium/pkg/platform/event"

// NewBus constructs an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		logger:  slog.Default(),
		timeout: DefaultHandlerTimeout,
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers h for every later event whose topic matches pattern.
// pattern is a topic name or Wildcard. Panics on a nil handler or malformed
// pattern; both are wiring mistakes.
func (b *Bus) Subscribe(pattern string, h Handler) {
	if h == nil {
		panic("event: nil handler")
	}
	if pattern != Wildcard && !ValidName(pattern) {
		panic(fmt.Sprintf("event: invalid topic pattern %q", pattern))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscription{
		pattern: pattern,
		name:    handlerName(h),
		handler: h,
	})
}

// Subscriptions returns the number of registered handlers.
func (b *Bus) Subscriptions() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers evt to every matching handler and returns how many ran.
// The only error is a caller context that ends before delivery completes;
// handlers not yet reached are then skipped.
func (b *Bus) Publish(ctx context.Context, evt Event) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeTimeout, "publish aborted")
	}

	ctx, span := b.tracer.Start(ctx, "event.publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("event.id", evt.ID),
			attribute.String("event.topic", evt.Topic),
			attribute.String("event.code", evt.Code),
		),
	)
	defer span.End()

	invoked := 0
	for _, sub := range b.snapshot() {
		if !Matches(sub.pattern, evt.Topic) {
			continue
		}
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "publish aborted")
			return invoked, dErrors.Wrap(err, dErrors.CodeTimeout, "publish aborted")
		}
		invoked++
		b.deliver(ctx, sub, evt)
	}

	span.SetAttributes(attribute.Int("event.handlers", invoked))
	b.metrics.observePublished(evt.Topic)
	return invoked, nil
}

// PublishAll publishes events in order; all handlers for one event finish
// before the next event is published.
func (b *Bus) PublishAll(ctx context.Context, events []Event) (int, error) {
	total := 0
	for _, evt := range events {
		n, err := b.Publish(ctx, evt)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (b *Bus) snapshot() []subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]subscription(nil), b.subs...)
}

func (b *Bus) deliver(ctx context.Context, sub subscription, evt Event) {
	start := time.Now()
	err := b.invoke(requestcontext.WithCausationID(ctx, evt.ID), sub.handler, evt)
	b.metrics.observeDelivery(sub.name, time.Since(start), err)
	if err == nil {
		return
	}
	trace.SpanFromContext(ctx).RecordError(err, trace.WithAttributes(attribute.String("event.handler", sub.name)))
	b.logger.ErrorContext(ctx, "event handler failed",
		"handler", sub.name,
		"event_id", evt.ID,
		"topic", evt.Topic,
		"code", evt.Code,
		"reason", failureReason(err),
		"error", err,
	)
}

// invoke runs h under the handler timeout. A handler that ignores its context
// keeps running in the background after the timeout fires; the bus moves on.
func (b *Bus) invoke(ctx context.Context, h Handler, evt Event) error {
	if b.timeout <= 0 {
		return safeHandle(ctx, h, evt)
	}

	hctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- safeHandle(hctx, h, evt)
	}()

	select {
	case err := <-done:
		return err
	case <-hctx.Done():
		return dErrors.Wrap(hctx.Err(), dErrors.CodeTimeout, "handler did not finish")
	}
}

func safeHandle(ctx context.Context, h Handler, evt Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errPanic{value: r}
		}
	}()
	return h.Handle(ctx, evt)
}

type errPanic struct{ value any }

func (e errPanic) Error() string { return fmt.Sprintf("handler panicked: %v", e.value) }

func failureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case dErrors.HasCode(err, dErrors.CodeTimeout):
		return "timeout"
	}
	if _, ok := err.(errPanic); ok {
		return "panic"
	}
	return "error"
}

func handlerName(h Handler) string {
	if n, ok := h.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", h)
}
