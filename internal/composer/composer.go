// Package composer wires the uploader and the content codec to message
// persistence. It is the programmatic surface the gateway (and any other
// host) drives: send text, send an attachment, record a missed call.
package composer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edudashpro/attachd/internal/store"
	"github.com/edudashpro/attachd/internal/upload"
	"github.com/edudashpro/attachd/pkg/content"
)

// ErrEmptyMessage indicates a text send with no content.
var ErrEmptyMessage = errors.New("composer: empty message")

// Option configures optional Composer behavior.
type Option func(*Composer)

// WithLogger injects a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Composer) { c.logger = l }
}

// Composer orchestrates message composition. Each SendAttachment call is
// independent; concurrent uploads do not serialise against each other.
type Composer struct {
	uploader *upload.Uploader
	store    *store.Store
	broker   *ProgressBroker
	logger   *slog.Logger
}

// New creates a Composer.
func New(up *upload.Uploader, st *store.Store, opts ...Option) *Composer {
	c := &Composer{
		uploader: up,
		store:    st,
		broker:   NewProgressBroker(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// Progress returns the broker carrying upload progress events.
func (c *Composer) Progress() *ProgressBroker {
	return c.broker
}

// SendText stores a plain-text message row.
func (c *Composer) SendText(ctx context.Context, threadID, senderID, text string) (store.Message, error) {
	if strings.TrimSpace(text) == "" {
		return store.Message{}, ErrEmptyMessage
	}
	return c.store.InsertMessage(ctx, threadID, senderID, text)
}

// AttachmentOptions tunes a SendAttachment call.
type AttachmentOptions struct {
	// UploadID identifies the upload for progress subscribers. Generated
	// when empty.
	UploadID string

	// ContentType overrides the file's own type (microphone blobs).
	ContentType string

	// FilenameHint takes priority for extension resolution.
	FilenameHint string

	// DurationMs is carried into the media envelope for audio.
	DurationMs int64
}

// SendAttachment validates and uploads the file, encodes a media envelope,
// and stores the resulting message row. Progress events for the upload are
// published under the returned message's upload ID.
func (c *Composer) SendAttachment(ctx context.Context, threadID, senderID string, file upload.File, opts AttachmentOptions) (store.Message, upload.Result, error) {
	uploadID := opts.UploadID
	if uploadID == "" {
		uploadID = uuid.NewString()
	}

	result, err := c.uploader.Upload(ctx, file, upload.Options{
		PathPrefix:   "threads/" + threadID,
		FilenameHint: opts.FilenameHint,
		ContentType:  opts.ContentType,
		OnProgress: func(p upload.Progress) {
			// The terminal Done event below carries the 100% signal.
			if p.Percentage == 100 {
				return
			}
			c.broker.Publish(Event{UploadID: uploadID, Progress: p})
		},
	})
	if err != nil {
		c.broker.Publish(Event{UploadID: uploadID, Error: err.Error()})
		return store.Message{}, upload.Result{}, err
	}

	up, err := c.store.RecordUpload(ctx, result.Path, result.MIMEType, int64(len(file.Data)))
	if err != nil {
		c.broker.Publish(Event{UploadID: uploadID, Error: err.Error()})
		return store.Message{}, upload.Result{}, err
	}

	encoded := content.EncodeMedia(content.Media{
		MediaType:  mediaTypeFor(result.MIMEType),
		URL:        result.URL,
		Name:       attachmentName(file.Name, opts.FilenameHint),
		MIMEType:   result.MIMEType,
		Size:       int64(len(file.Data)),
		DurationMs: opts.DurationMs,
	})

	msg, err := c.store.InsertMessage(ctx, threadID, senderID, encoded)
	if err != nil {
		c.broker.Publish(Event{UploadID: uploadID, Error: err.Error()})
		return store.Message{}, upload.Result{}, err
	}

	if err := c.store.LinkUpload(ctx, result.Path, msg.ID); err != nil {
		// The message row exists; an unlinked upload row only delays
		// janitor cleanup eligibility, so log and carry on.
		c.logger.Warn("link upload failed", "key", result.Path, "error", err)
	}

	c.broker.Publish(Event{UploadID: uploadID, Progress: upload.Progress{
		Loaded: int64(len(file.Data)), Total: int64(len(file.Data)), Percentage: 100,
	}, Done: true})

	c.logger.Info("attachment sent",
		"thread", threadID,
		"upload", up.ID,
		"key", result.Path,
		"mime", result.MIMEType,
	)

	return msg, result, nil
}

// RecordMissedCall stores a call-event message row for a missed call.
func (c *Composer) RecordMissedCall(ctx context.Context, threadID, senderID string, ev content.CallEvent) (store.Message, error) {
	if ev.CallID == "" {
		return store.Message{}, fmt.Errorf("composer: missed call requires a call id")
	}
	if ev.ThreadID == "" {
		ev.ThreadID = threadID
	}
	if ev.OccurredAt == "" {
		ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	}
	return c.store.InsertMessage(ctx, threadID, senderID, content.EncodeCallEvent(ev))
}

// mediaTypeFor maps a MIME type to the media envelope category.
func mediaTypeFor(contentType string) content.MediaType {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return content.MediaImage
	case strings.HasPrefix(contentType, "audio/"):
		return content.MediaAudio
	default:
		return content.MediaFile
	}
}

// attachmentName picks the display name for the media envelope.
func attachmentName(fileName, hint string) string {
	if fileName != "" {
		return fileName
	}
	return hint
}
