package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/markthomas93/WBBMTT/internal/adapter/httpserver"
	"github.com/markthomas93/WBBMTT/internal/adapter/metrics"
	wsadapter "github.com/markthomas93/WBBMTT/internal/adapter/websocket"
	"github.com/markthomas93/WBBMTT/internal/app"
	"github.com/markthomas93/WBBMTT/internal/platform/config"
	"github.com/markthomas93/WBBMTT/internal/platform/logging"
	"github.com/markthomas93/WBBMTT/internal/platform/version"
	"github.com/markthomas93/WBBMTT/internal/render"
)

const shutdownTimeout = 10 * time.Second

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func runGracefulShutdown(ctx context.Context, srv *httpserver.Server, wsHandler *wsadapter.Handler, registry *app.Registry) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		slog.Info("Shutdown signal received, cleaning up...")

		wsHandler.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		registry.StopAll()
		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logger := logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Get().String())

	if _, err := render.ParseColor(cfg.BackgroundColor); err != nil {
		slog.Error("Invalid BACKGROUND_COLOR", "error", err)
		os.Exit(1)
	}

	reg := metrics.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(reg)
	wsMetrics := metrics.NewWebSocketMetrics(reg)
	vizMetrics := metrics.NewVisualizerMetrics(reg)

	registry := app.NewRegistry(clock, cfg.MaxSessions, vizMetrics)

	settings := wsadapter.Settings{
		Defaults:       cfg.SessionDefaults(),
		DebugInput:     cfg.DebugInput,
		ResizeDelay:    cfg.ResizeDelay,
		ShakeDelay:     cfg.ShakeDelay,
		ShakeThreshold: cfg.ShakeThreshold,
	}
	if cfg.DebugInput {
		slog.Warn("Debug input enabled, mouse and pen pointers are accepted")
	}

	wsHandler := wsadapter.NewHandler(registry, settings, clock, wsMetrics, logger,
		wsadapter.NewCheckOrigin(cfg.AppURL, cfg.IsDevelopment()))

	srv, err := httpserver.NewServer(cfg, httpserver.Deps{
		Registry:         registry,
		Resolver:         settings,
		Defaults:         cfg.SessionDefaults(),
		WebsocketHandler: wsHandler,
		MetricsHandler:   metrics.Handler(reg),
		HTTPMetrics:      httpMetrics,
		HealthChecks:     []httpserver.HealthCheck{httpserver.CapacityCheck(registry.Available)},
		Clock:            clock,
	})
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := runGracefulShutdown(ctx, srv, wsHandler, registry)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
