// Package upload implements the attachment upload pipeline: size and type
// policy validation, object-key derivation, and a bounded exponential-backoff
// retry loop against object storage.
package upload

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/edudashpro/attachd/internal/storage"
)

const (
	maxAttempts    = 3
	initialBackoff = time.Second
	maxBackoff     = 10 * time.Second
)

// File is a byte-bearing attachment. Data is held in memory, matching the
// blob semantics of the client apps; microphone recordings carry no Name and
// rely on Options.ContentType.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Options tunes a single Upload call.
type Options struct {
	// PathPrefix is prepended to the derived object key.
	PathPrefix string

	// FilenameHint takes priority over File.Name for extension resolution.
	FilenameHint string

	// ContentType overrides File.MIMEType. Used for blobs that carry no
	// intrinsic type.
	ContentType string

	// OnProgress, if set, receives a 0% signal at the start of each attempt
	// and a 100% signal on success. The storage write is single-shot, so
	// there is no byte-level progress in between.
	OnProgress func(Progress)
}

// Progress is a coarse upload progress signal.
type Progress struct {
	Loaded     int64 `json:"loaded"`
	Total      int64 `json:"total"`
	Percentage int   `json:"percentage"`
}

// Result is the outcome of a successful upload. It is constructed once and
// never mutated.
type Result struct {
	URL      string `json:"url"`
	Path     string `json:"path"`
	MIMEType string `json:"mimeType"`
}

// Option configures optional Uploader behavior.
type Option func(*Uploader)

// WithLogger injects a structured logger. When omitted, log output is
// silently discarded.
func WithLogger(l *slog.Logger) Option {
	return func(u *Uploader) { u.logger = l }
}

// withSleep overrides the backoff sleep. Test hook.
func withSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(u *Uploader) { u.sleep = fn }
}

// Uploader validates attachments and writes them to object storage with
// bounded retry. Concurrent Upload calls are independent: each derives its
// own object key and owns its own retry loop.
type Uploader struct {
	store  storage.Storage
	logger *slog.Logger
	tracer trace.Tracer
	sleep  func(ctx context.Context, d time.Duration) error
}

// New creates an Uploader backed by the given storage.
func New(store storage.Storage, opts ...Option) *Uploader {
	u := &Uploader{
		store:  store,
		tracer: otel.Tracer("attachd/upload"),
		sleep:  sleepCtx,
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.logger == nil {
		u.logger = slog.New(slog.DiscardHandler)
	}
	return u
}

// Upload validates file, derives a unique object key, and writes the bytes
// to storage with up to three attempts. Validation failures surface
// immediately as *ValidationError and are never retried; terminal network
// failures surface as *UploadError. Cancelling ctx aborts the backoff sleep
// and any further attempts.
func (u *Uploader) Upload(ctx context.Context, file File, opts Options) (Result, error) {
	contentType := opts.ContentType
	if contentType == "" {
		contentType = file.MIMEType
	}
	size := int64(len(file.Data))

	if err := ValidateAttachment(size, contentType); err != nil {
		return Result{}, err
	}

	ext := resolveExtension(opts.FilenameHint, file.Name, contentType)
	// The key is computed once; retries of this call reuse it, and the
	// storage layer refuses to overwrite occupied keys.
	key := newObjectKey(opts.PathPrefix, ext)

	ctx, span := u.tracer.Start(ctx, "upload",
		trace.WithAttributes(
			attribute.String("object.key", key),
			attribute.String("object.content_type", contentType),
			attribute.Int64("object.size_bytes", size),
		))
	defer span.End()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "cancelled")
			return Result{}, err
		}

		reportProgress(opts.OnProgress, Progress{Loaded: 0, Total: size, Percentage: 0})

		err := u.store.Upload(ctx, key, bytes.NewReader(file.Data), size, contentType)
		if err == nil {
			reportProgress(opts.OnProgress, Progress{Loaded: size, Total: size, Percentage: 100})
			span.SetAttributes(attribute.Int("upload.attempts", attempt))
			return Result{
				URL:      u.store.PublicURL(key),
				Path:     key,
				MIMEType: contentType,
			}, nil
		}

		lastErr = err
		msg, retryable := classify(err)

		u.logger.Warn("upload attempt failed",
			"key", key,
			"attempt", attempt,
			"retryable", retryable,
			"error", err,
		)
		span.AddEvent("attempt failed", trace.WithAttributes(
			attribute.Int("attempt", attempt),
			attribute.Bool("retryable", retryable),
		))

		if !retryable || attempt == maxAttempts {
			span.RecordError(err)
			span.SetStatus(codes.Error, msg)
			return Result{}, &UploadError{Message: msg}
		}

		if err := u.sleep(ctx, backoffDelay(attempt)); err != nil {
			span.SetStatus(codes.Error, "cancelled")
			return Result{}, err
		}
	}

	// Unreachable: the loop always returns on the final attempt.
	msg, _ := classify(lastErr)
	return Result{}, &UploadError{Message: msg}
}

// backoffDelay returns the sleep before the attempt following the given
// number of failures: 1s, 2s, capped at 10s.
func backoffDelay(failures int) time.Duration {
	d := initialBackoff << (failures - 1)
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// sleepCtx blocks for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// reportProgress invokes the callback when set.
func reportProgress(fn func(Progress), p Progress) {
	if fn != nil {
		fn(p)
	}
}
