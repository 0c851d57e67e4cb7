package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	"scriptorium/internal/platform/config"
	"scriptorium/internal/platform/httpserver"
	"scriptorium/internal/platform/logger"
	"scriptorium/internal/platform/metrics"
	"scriptorium/internal/platform/redis"
)

func main() {
	if err := run(); err != nil {
		slog.Error("scriptorium stopped", "error", err)
		os.Exit(1)
	}
}

// run wires the process, serves until SIGINT/SIGTERM and drains the event log
// worker before returning.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	defer func() {
		if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	var deps infra
	if cfg.Server.CacheBackend == config.CacheBackendRedis {
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		deps.redis = client.Client
	}
	if cfg.Database.URL != "" {
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		deps.pool = pool
	}

	reg := metrics.New()
	a, err := newApp(ctx, cfg, log, reg, tp, deps)
	if err != nil {
		return err
	}

	srv := httpserver.New(cfg.Server.Addr, a.router)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// nothing publishes once the server is down
		defer a.recorder.Close()
		log.Info("starting scriptorium",
			"addr", cfg.Server.Addr,
			"cache_backend", cfg.Server.CacheBackend,
			"event_log", eventLogKind(deps),
		)
		return httpserver.Run(gctx, srv, cfg.Server.ShutdownTimeout)
	})
	if w := a.recorder.Worker(); w != nil {
		g.Go(func() error {
			return w.Run(context.WithoutCancel(gctx))
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if dropped := a.recorder.Dropped(); dropped > 0 {
		log.Warn("event log dropped events", "count", dropped)
	}
	log.Info("scriptorium stopped")
	return nil
}

func eventLogKind(deps infra) string {
	if deps.pool != nil {
		return "postgres"
	}
	return "memory"
}
