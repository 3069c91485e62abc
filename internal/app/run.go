// Package app provides the shared entry point wiring for the attachd binary.
package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edudashpro/attachd/internal/composer"
	"github.com/edudashpro/attachd/internal/config"
	"github.com/edudashpro/attachd/internal/gateway"
	"github.com/edudashpro/attachd/internal/janitor"
	"github.com/edudashpro/attachd/internal/storage/bucket"
	"github.com/edudashpro/attachd/internal/store"
	"github.com/edudashpro/attachd/internal/telemetry"
	"github.com/edudashpro/attachd/internal/upload"
)

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is the path to the YAML configuration file.
	ConfigPath string

	// Version is injected at build time via ldflags.
	Version string
}

// Run loads configuration, wires the service together, and blocks until a
// shutdown signal is received.
func Run(params RunParams) error {
	cfg, err := config.Load(params.ConfigPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry.OTLPEndpoint, params.Version)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("store close failed", "error", err)
		}
	}()

	objectStore := bucket.New(cfg.Storage.BaseURL, cfg.Storage.Bucket, cfg.Storage.APIKey)
	uploader := upload.New(objectStore, upload.WithLogger(logger))
	comp := composer.New(uploader, st, composer.WithLogger(logger))

	jan := janitor.New(janitorConfig(cfg), st, objectStore, logger)
	if err := jan.Start(); err != nil {
		return err
	}
	defer jan.Stop()

	gw := gateway.New(gateway.Config{Addr: cfg.Server.Addr}, comp, st, gateway.WithLogger(logger))

	errCh := make(chan error, 1)
	go func() {
		errCh <- gw.Start()
	}()

	logger.Info("attachd started",
		"version", params.Version,
		"addr", cfg.Server.Addr,
		"bucket", cfg.Storage.Bucket,
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return gw.Shutdown(shutdownCtx)
}

// janitorConfig translates the validated config into janitor settings.
func janitorConfig(cfg *config.Config) janitor.Config {
	jc := janitor.Config{Schedule: cfg.Janitor.Schedule}
	if cfg.Janitor.PendingGrace != "" {
		jc.PendingGrace, _ = time.ParseDuration(cfg.Janitor.PendingGrace)
	}
	if cfg.Janitor.MessageRetention != "" {
		jc.MessageRetention, _ = time.ParseDuration(cfg.Janitor.MessageRetention)
	}
	return jc
}

// logLevel maps a config level string to a slog.Level.
func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
