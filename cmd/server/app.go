package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"

	"scriptorium/internal/admin"
	"scriptorium/internal/identity"
	identitymetrics "scriptorium/internal/identity/metrics"
	identitymodels "scriptorium/internal/identity/models"
	identityservice "scriptorium/internal/identity/service"
	"scriptorium/internal/notification"
	"scriptorium/internal/notification/mailer"
	notifmodels "scriptorium/internal/notification/models"
	notifstore "scriptorium/internal/notification/store"
	"scriptorium/internal/payment"
	paymodels "scriptorium/internal/payment/models"
	paymentservice "scriptorium/internal/payment/service"
	paystore "scriptorium/internal/payment/store"
	"scriptorium/internal/platform/config"
	"scriptorium/internal/platform/metrics"
	"scriptorium/internal/publishing"
	pubmodels "scriptorium/internal/publishing/models"
	pubstore "scriptorium/internal/publishing/store"
	id "scriptorium/pkg/domain"
	"scriptorium/pkg/platform/cache"
	"scriptorium/pkg/platform/cache/memory"
	rediscache "scriptorium/pkg/platform/cache/redis"
	"scriptorium/pkg/platform/circuit"
	"scriptorium/pkg/platform/event"
	"scriptorium/pkg/platform/eventlog"
	eventlogmemory "scriptorium/pkg/platform/eventlog/memory"
	eventlogpostgres "scriptorium/pkg/platform/eventlog/postgres"
	"scriptorium/pkg/platform/httputil"
	adminmw "scriptorium/pkg/platform/middleware/admin"
	"scriptorium/pkg/platform/middleware/request"
)

// infra holds the optional external backends. Nil fields fall back to the
// in-process implementations.
type infra struct {
	redis goredis.UniversalClient
	pool  *pgxpool.Pool
}

// app is the fully wired process minus its listeners.
type app struct {
	bus           *event.Bus
	recorder      *eventlog.Recorder
	events        eventlog.Repository
	identity      *identity.Service
	publishing    *publishing.Service
	payments      *payment.Service
	notifications *notification.Service
	router        http.Handler
}

// stores builds every repository backend the same way: redis or memory,
// wrapped with hit/miss metrics.
type stores struct {
	redis   goredis.UniversalClient
	ttl     time.Duration
	metrics *cache.Metrics
	logger  *slog.Logger
}

func newStore[K ~string, V any](s stores, name string) cache.Store[K, V] {
	var backend cache.Store[K, V]
	if s.redis != nil {
		backend = rediscache.New[K, V](s.redis, "scriptorium:"+name+":",
			rediscache.WithTTL[K, V](s.ttl),
			rediscache.WithLogger[K, V](s.logger),
		)
	} else {
		backend = memory.New[K, V]()
	}
	return cache.Instrument(name, backend, s.metrics)
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg *metrics.Registry, tp trace.TracerProvider, deps infra) (*app, error) {
	bus := event.NewBus(
		event.WithLogger(logger),
		event.WithHandlerTimeout(cfg.Events.HandlerTimeout),
		event.WithMetrics(event.NewMetrics(reg)),
		event.WithTracerProvider(tp),
	)

	logMetrics := eventlog.NewMetrics(reg)
	var events eventlog.Repository = eventlogmemory.NewInMemoryStore()
	if deps.pool != nil {
		pg := eventlogpostgres.New(deps.pool)
		if err := pg.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate event log: %w", err)
		}
		events = eventlog.Guard(pg, circuit.New("eventlog-postgres"), logger, logMetrics)
	}
	recorder := eventlog.NewRecorder(events,
		eventlog.WithLogger(logger),
		eventlog.WithAsyncBuffer(cfg.Events.LogAsyncBuffer),
		eventlog.WithMetrics(logMetrics),
	)
	bus.Subscribe(event.Wildcard, recorder)

	st := stores{redis: deps.redis, ttl: cfg.Redis.CacheTTL, metrics: cache.NewMetrics(reg), logger: logger}
	page := cfg.Pagination

	users := identity.NewStore(newStore[id.UserID, *identitymodels.User](st, "users"), page)
	identitySvc := identity.NewService(users, bus,
		identityservice.WithLogger(logger),
		identityservice.WithMetrics(identitymetrics.New(reg)),
	)

	authors := pubstore.NewAuthorStore(newStore[id.AuthorID, *pubmodels.Author](st, "authors"), page)
	readers := pubstore.NewReaderStore(newStore[id.ReaderID, *pubmodels.Reader](st, "readers"), page)
	publishing.Subscribe(bus, authors, readers, logger)

	payments := paystore.New(newStore[id.PaymentID, *paymodels.Payment](st, "payments"), page)
	paymentSvc := payment.NewService(payments, readers, bus, paymentservice.WithLogger(logger))

	notifications := notifstore.New(newStore[id.NotificationID, *notifmodels.Notification](st, "notifications"), page)
	recipients := notifstore.NewRecipients(newStore[id.UserID, string](st, "recipients"))
	notification.Subscribe(bus, notifications, recipients, mailer.NewLogMailer(logger), logger)

	a := &app{
		bus:           bus,
		recorder:      recorder,
		events:        events,
		identity:      identitySvc,
		publishing:    publishing.NewService(authors, readers),
		payments:      paymentSvc,
		notifications: notification.NewService(notifications, bus),
	}
	a.router = newRouter(cfg, logger, reg, deps, admin.New(events, identitySvc, page, logger))
	return a, nil
}

func newRouter(cfg *config.Config, logger *slog.Logger, reg *metrics.Registry, deps infra, adminHandler *admin.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(request.AccessLog(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := checkHealth(r.Context(), deps); err != nil {
			logger.WarnContext(r.Context(), "health check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", reg.Handler())

	r.Group(func(r chi.Router) {
		r.Use(adminmw.RequireAdminToken(cfg.Server.AdminToken, logger))
		adminHandler.Register(r)
	})
	return r
}

func checkHealth(ctx context.Context, deps infra) error {
	if deps.redis != nil {
		if err := deps.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	if deps.pool != nil {
		if err := deps.pool.Ping(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	return nil
}
