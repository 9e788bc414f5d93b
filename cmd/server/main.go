package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/ameliadesk/internal/client"
	"github.com/JonMunkholm/ameliadesk/internal/config"
	"github.com/JonMunkholm/ameliadesk/internal/core"
	_ "github.com/JonMunkholm/ameliadesk/internal/core/exports" // Register all exports
	"github.com/JonMunkholm/ameliadesk/internal/logging"
	"github.com/JonMunkholm/ameliadesk/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	api, err := client.NewFromConfig(cfg.API)
	if err != nil {
		slog.Error("failed to create API client", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout)
	if api.TestConnection(ctx) {
		slog.Info("booking API reachable", "base_url", api.BaseURL())
	} else {
		// Not fatal: the API may come up after us, and /api/connection reports it.
		slog.Warn("booking API not reachable at startup", "base_url", api.BaseURL())
	}
	cancel()

	service := core.NewService(api, cfg.Import)
	slog.Info("exports registered", "count", len(service.ListExports()), "resources", len(api.Resources()))

	server := web.NewServer(cfg, service)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.Limiter().Status(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
