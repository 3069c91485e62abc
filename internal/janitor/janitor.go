// Package janitor runs scheduled cleanup: storage objects whose upload rows
// stayed pending past a grace window are deleted (the client uploaded but
// never sent the message), and message rows past the configured retention
// are pruned.
package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/edudashpro/attachd/internal/storage"
	"github.com/edudashpro/attachd/internal/store"
)

// Config tunes the janitor.
type Config struct {
	// Schedule is a cron expression. Defaults to hourly.
	Schedule string

	// PendingGrace is how long an upload may stay pending before its
	// object is considered orphaned. Defaults to 24h.
	PendingGrace time.Duration

	// MessageRetention prunes message rows older than this. Zero disables
	// message pruning.
	MessageRetention time.Duration
}

// defaults fills zero-value fields.
func (c *Config) defaults() {
	if c.Schedule == "" {
		c.Schedule = "@hourly"
	}
	if c.PendingGrace <= 0 {
		c.PendingGrace = 24 * time.Hour
	}
}

// Janitor owns the cron schedule and the cleanup passes.
type Janitor struct {
	cfg    Config
	store  *store.Store
	object storage.Storage
	logger *slog.Logger
	cron   *cron.Cron
}

// New creates a Janitor. Call Start to begin the schedule.
func New(cfg Config, st *store.Store, object storage.Storage, logger *slog.Logger) *Janitor {
	cfg.defaults()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Janitor{
		cfg:    cfg,
		store:  st,
		object: object,
		logger: logger,
	}
}

// Start schedules the cleanup job.
func (j *Janitor) Start() error {
	j.cron = cron.New()
	if _, err := j.cron.AddFunc(j.cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		j.Sweep(ctx)
	}); err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop stops the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	if j.cron != nil {
		<-j.cron.Stop().Done()
	}
}

// Sweep runs one cleanup pass. It is safe to call directly, outside the
// schedule.
func (j *Janitor) Sweep(ctx context.Context) {
	j.sweepOrphans(ctx)
	j.sweepRetention(ctx)
}

// sweepOrphans deletes storage objects for uploads that stayed pending past
// the grace window, then removes their rows.
func (j *Janitor) sweepOrphans(ctx context.Context) {
	cutoff := time.Now().Add(-j.cfg.PendingGrace)

	orphans, err := j.store.OrphanedUploads(ctx, cutoff)
	if err != nil {
		j.logger.Error("janitor: list orphans failed", "error", err)
		return
	}

	for _, up := range orphans {
		if err := j.object.Delete(ctx, up.ObjectKey); err != nil {
			// Keep the row so the next sweep retries the delete.
			j.logger.Warn("janitor: delete object failed", "key", up.ObjectKey, "error", err)
			continue
		}
		if err := j.store.DeleteUpload(ctx, up.ID); err != nil {
			j.logger.Warn("janitor: delete upload row failed", "id", up.ID, "error", err)
			continue
		}
		j.logger.Info("janitor: removed orphaned object", "key", up.ObjectKey)
	}
}

// sweepRetention prunes message rows past the retention window.
func (j *Janitor) sweepRetention(ctx context.Context) {
	if j.cfg.MessageRetention <= 0 {
		return
	}

	cutoff := time.Now().Add(-j.cfg.MessageRetention)
	n, err := j.store.DeleteMessagesBefore(ctx, cutoff)
	if err != nil {
		j.logger.Error("janitor: prune messages failed", "error", err)
		return
	}
	if n > 0 {
		j.logger.Info("janitor: pruned messages", "count", n)
	}
}
