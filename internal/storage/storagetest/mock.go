// Package storagetest provides an in-memory Storage double for tests.
package storagetest

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/edudashpro/attachd/internal/storage"
)

// Object is a stored object captured by the mock.
type Object struct {
	Data        []byte
	ContentType string
}

// MockStorage is a test double that implements storage.Storage. It records
// uploaded objects and allows scripting failures via UploadFunc.
type MockStorage struct {
	mu      sync.Mutex
	objects map[string]Object
	deleted []string

	// UploadFunc, if set, is called instead of the default recording
	// behavior. Useful for scripting per-attempt failures.
	UploadFunc func(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// BaseURL is prepended to keys by PublicURL. Defaults to
	// "https://cdn.test/" when empty.
	BaseURL string
}

// Compile-time interface guard.
var _ storage.Storage = (*MockStorage)(nil)

// NewMockStorage creates an empty MockStorage.
func NewMockStorage() *MockStorage {
	return &MockStorage{objects: make(map[string]Object)}
}

// Upload records the object. If UploadFunc is set, it delegates to it.
// Uploading to an occupied key returns storage.ErrKeyExists.
func (m *MockStorage) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, key, r, size, contentType)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.objects[key]; exists {
		return storage.ErrKeyExists
	}
	m.objects[key] = Object{Data: buf.Bytes(), ContentType: contentType}
	return nil
}

// Delete removes the object and records the key.
func (m *MockStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

// PublicURL returns BaseURL + key.
func (m *MockStorage) PublicURL(key string) string {
	base := m.BaseURL
	if base == "" {
		base = "https://cdn.test/"
	}
	return base + key
}

// Object returns the stored object for key and whether it exists.
func (m *MockStorage) Object(key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	return obj, ok
}

// Len returns the number of stored objects.
func (m *MockStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Deleted returns the keys passed to Delete, in order.
func (m *MockStorage) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}
