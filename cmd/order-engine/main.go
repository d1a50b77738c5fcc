package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/selliq/order-engine/internal/coordinator"
	splitsqlite "github.com/selliq/order-engine/internal/coordinator/splitlog/sqlite"
	"github.com/selliq/order-engine/internal/orders/app"
	"github.com/selliq/order-engine/internal/orders/infra/httpx"
	ordersqlite "github.com/selliq/order-engine/internal/orders/infra/store/sqlite"
	"github.com/selliq/order-engine/internal/pkg/cache"
	"github.com/selliq/order-engine/internal/pkg/telemetry"
)

const serviceName = "order-engine"

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, serviceName)
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(flushCtx)
	}()

	store, err := openOrderStore(getEnv("ORDERS_DB_PATH", "./data/orders.db"))
	if err != nil {
		slog.Error("failed to open order store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	journal, err := openSplitLog(getEnv("SPLITLOG_DB_PATH", "./data/splitlog.db"))
	if err != nil {
		slog.Error("failed to open split journal", "error", err)
		os.Exit(1)
	}
	defer journal.Close()

	var reportCache cache.Cache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		reportCache = cache.NewRedisCache(addr, serviceName)
	}

	splitter := app.NewSplitter(store, app.NewEpochSequence(), journal)
	statuses := app.NewStatusMachine(store)
	payments := app.NewPaymentTracker(store)
	reports := app.NewAggregator(store)

	// The reconciler rolls back splits abandoned by a crash. Stale
	// threshold must comfortably exceed a checkout's worst case.
	reconciler := coordinator.NewReconciler(journal, journal, store, getDuration("RECONCILE_STALE_AFTER", 5*time.Minute))
	go reconciler.Run(ctx, getDuration("RECONCILE_INTERVAL", time.Minute))

	handler := httpx.NewHandler(splitter, statuses, payments, reports, store, reportCache)
	srv := &http.Server{
		Addr:              getEnv("HTTP_ADDR", ":8080"),
		Handler:           httpx.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("order engine listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		slog.Error("http shutdown failed", "error", err)
	}
}

func openOrderStore(path string) (*ordersqlite.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return ordersqlite.Open(path)
}

func openSplitLog(path string) (*splitsqlite.Repository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return splitsqlite.Open(path)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}
