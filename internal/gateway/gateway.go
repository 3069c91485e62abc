// Package gateway exposes the composer over a small JSON HTTP API for the
// mobile and web clients, plus health, metrics, and a websocket progress
// feed. Authentication lives in the fronting app backend; the gateway
// trusts the X-Sender-ID header it receives from it.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/edudashpro/attachd/internal/composer"
	"github.com/edudashpro/attachd/internal/store"
)

// Config tunes the gateway server.
type Config struct {
	// Addr is the listen address, e.g. ":8787".
	Addr string

	// MaxUploadBytes bounds multipart request memory. Defaults to 52 MiB,
	// just above the largest per-family size cap.
	MaxUploadBytes int64
}

// Option configures optional Gateway behavior.
type Option func(*Gateway)

// WithLogger injects a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// Gateway is the HTTP surface of the attachment service.
type Gateway struct {
	config   Config
	composer *composer.Composer
	store    *store.Store
	logger   *slog.Logger
	metrics  *Metrics
	registry *prometheus.Registry
	srv      *http.Server
}

// New creates a Gateway around the composer and store.
func New(cfg Config, c *composer.Composer, st *store.Store, opts ...Option) *Gateway {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52 << 20
	}

	g := &Gateway{
		config:   cfg,
		composer: c,
		store:    st,
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.New(slog.DiscardHandler)
	}
	g.metrics = NewMetrics(g.registry)

	g.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           g.buildRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return g
}

// Start runs the HTTP server and blocks until it stops.
func (g *Gateway) Start() error {
	g.logger.Info("gateway listening", "addr", g.config.Addr)
	if err := g.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.srv.Shutdown(ctx)
}
