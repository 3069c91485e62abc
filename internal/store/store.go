package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message is a persisted message row. Content is the encoded string
// produced by pkg/content.
type Message struct {
	ID        string
	ThreadID  string
	SenderID  string
	Content   string
	CreatedAt time.Time
}

// Upload statuses.
const (
	UploadPending = "pending"
	UploadLinked  = "linked"
)

// Upload is a persisted upload-tracking row. Rows start pending and become
// linked once a message references the object; pending rows past a grace
// window are orphans and get cleaned up by the janitor.
type Upload struct {
	ID        string
	ObjectKey string
	MIMEType  string
	SizeBytes int64
	Status    string
	MessageID string
	CreatedAt time.Time
}

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// InsertMessage persists a new message row and returns it with its
// generated ID and timestamp.
func (s *Store) InsertMessage(ctx context.Context, threadID, senderID, content string) (Message, error) {
	msg := Message{
		ID:        uuid.NewString(),
		ThreadID:  threadID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, thread_id, sender_id, content, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.ThreadID, msg.SenderID, msg.Content,
		msg.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Message{}, fmt.Errorf("store: insert message: %w", err)
	}

	return msg, nil
}

// ListThread returns up to limit messages for a thread, oldest first.
// A limit of 0 or less returns all messages.
func (s *Store) ListThread(ctx context.Context, threadID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, thread_id, sender_id, content, created_at
		FROM messages
		WHERE thread_id = ?
		ORDER BY created_at, id
		LIMIT ?`,
		threadID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list thread: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanMessages(rows)
}

// DeleteMessagesBefore removes message rows created before cutoff and
// returns how many were deleted.
func (s *Store) DeleteMessagesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM messages WHERE created_at < ?",
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("store: delete messages: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("store: delete messages: %w", err)
	}
	return n, nil
}

// RecordUpload persists a pending upload row for a freshly stored object.
func (s *Store) RecordUpload(ctx context.Context, objectKey, mimeType string, sizeBytes int64) (Upload, error) {
	up := Upload{
		ID:        uuid.NewString(),
		ObjectKey: objectKey,
		MIMEType:  mimeType,
		SizeBytes: sizeBytes,
		Status:    UploadPending,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO uploads (id, object_key, mime_type, size_bytes, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		up.ID, up.ObjectKey, up.MIMEType, up.SizeBytes, up.Status,
		up.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Upload{}, fmt.Errorf("store: record upload: %w", err)
	}

	return up, nil
}

// LinkUpload marks the upload row for objectKey as referenced by a message.
func (s *Store) LinkUpload(ctx context.Context, objectKey, messageID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE uploads SET status = ?, message_id = ? WHERE object_key = ?",
		UploadLinked, messageID, objectKey,
	)
	if err != nil {
		return fmt.Errorf("store: link upload: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: link upload: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// OrphanedUploads returns pending upload rows created before cutoff.
func (s *Store) OrphanedUploads(ctx context.Context, cutoff time.Time) ([]Upload, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, object_key, mime_type, size_bytes, status, message_id, created_at
		FROM uploads
		WHERE status = ? AND created_at < ?
		ORDER BY created_at`,
		UploadPending, cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("store: orphaned uploads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Upload
	for rows.Next() {
		var up Upload
		var createdAt string
		if err := rows.Scan(&up.ID, &up.ObjectKey, &up.MIMEType, &up.SizeBytes,
			&up.Status, &up.MessageID, &createdAt); err != nil {
			return nil, fmt.Errorf("store: scan upload: %w", err)
		}
		up.CreatedAt = parseTime(createdAt)
		out = append(out, up)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: orphaned uploads: %w", err)
	}
	return out, nil
}

// DeleteUpload removes an upload row by ID.
func (s *Store) DeleteUpload(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM uploads WHERE id = ?", id); err != nil {
		return fmt.Errorf("store: delete upload: %w", err)
	}
	return nil
}

// scanMessages reads all message rows from a result set.
func scanMessages(rows *sql.Rows) ([]Message, error) {
	var out []Message
	for rows.Next() {
		var msg Message
		var createdAt string
		if err := rows.Scan(&msg.ID, &msg.ThreadID, &msg.SenderID, &msg.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("store: scan message: %w", err)
		}
		msg.CreatedAt = parseTime(createdAt)
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: scan messages: %w", err)
	}
	return out, nil
}

// parseTime parses a stored RFC 3339 timestamp, tolerating the SQLite
// default format. Zero time on failure; rows are never rejected over a
// malformed timestamp.
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}
