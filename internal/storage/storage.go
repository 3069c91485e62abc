// Package storage defines the object-storage port consumed by the uploader.
// Implementations are injected at startup; the bucket subpackage provides
// the HTTP client for the hosted storage API.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Storage is the interface for writing and addressing stored objects.
type Storage interface {
	// Upload writes data to the store under the given key. Existing keys
	// are never overwritten; uploading to an occupied key is an error.
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Delete removes the object identified by key.
	Delete(ctx context.Context, key string) error

	// PublicURL constructs the publicly resolvable URL for a key.
	PublicURL(key string) string
}

// ErrKeyExists indicates an upload targeted a key that is already occupied.
var ErrKeyExists = errors.New("storage: key already exists")

// APIError is a structured error from the storage API. The uploader
// classifies failures by Status first and falls back to message substring
// heuristics only for untyped transport errors.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("storage: HTTP %d", e.Status)
	}
	return fmt.Sprintf("storage: HTTP %d: %s", e.Status, e.Message)
}
