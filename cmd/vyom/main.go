package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	vyomhttp "github.com/NetPranav/Vyom/internal/adapter/http"
	vyomnats "github.com/NetPranav/Vyom/internal/adapter/nats"
	vyomotel "github.com/NetPranav/Vyom/internal/adapter/otel"
	"github.com/NetPranav/Vyom/internal/adapter/postgres"
	"github.com/NetPranav/Vyom/internal/adapter/ristretto"
	"github.com/NetPranav/Vyom/internal/adapter/ws"
	"github.com/NetPranav/Vyom/internal/config"
	"github.com/NetPranav/Vyom/internal/logger"
	"github.com/NetPranav/Vyom/internal/middleware"
	"github.com/NetPranav/Vyom/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	slog.SetDefault(logger.New(cfg.Logging))

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"claim_requires_offer", cfg.Lifecycle.ClaimRequiresOffer,
		"bar_rejected_assignee", cfg.Lifecycle.BarRejectedAssignee,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	queue, err := vyomnats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = queue.Close() }()

	snapshots, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer snapshots.Close()

	if cfg.Telemetry.Enabled {
		shutdown, err := vyomotel.Setup(ctx, cfg.Logging.Service, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				slog.Error("telemetry shutdown", "error", err)
			}
		}()
	}

	metrics, err := vyomotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Services ---

	hub := ws.NewHub()
	store := postgres.NewStore(pool)
	events := postgres.NewEventStore(pool)
	lifecycleSvc := service.NewLifecycleService(store, events, queue, snapshots, hub, metrics, cfg.Lifecycle, cfg.Cache.TTL)
	offerSvc := service.NewOfferService(store, hub, metrics)

	// --- HTTP ---

	limiter := middleware.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)
	limiterDone := make(chan struct{})
	defer close(limiterDone)
	limiter.StartCleanup(time.Minute, 10*time.Minute, limiterDone)

	r := chi.NewRouter()
	r.Use(vyomhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(middleware.RequestID)
	r.Use(vyomhttp.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(limiter.Handler)
	r.Use(middleware.Actor)
	if cfg.Telemetry.Enabled {
		r.Use(vyomotel.HTTPMiddleware(cfg.Logging.Service))
	}

	r.Get("/health", healthHandler(pool, queue))
	r.Get("/ws", hub.HandleWS)
	vyomhttp.MountRoutes(r, vyomhttp.NewHandlers(lifecycleSvc, offerSvc))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// healthHandler reports liveness of the service and its backends.
func healthHandler(pool *pgxpool.Pool, queue *vyomnats.Queue) http.HandlerFunc {
	type healthStatus struct {
		Status   string `json:"status"`
		Postgres string `json:"postgres"`
		NATS     string `json:"nats"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		status := healthStatus{Status: "ok", Postgres: "ok", NATS: "ok"}

		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			status.Status = "degraded"
			status.Postgres = "unreachable"
		}
		if !queue.IsConnected() {
			status.Status = "degraded"
			status.NATS = "disconnected"
		}

		code := http.StatusOK
		if status.Status != "ok" {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	}
}
