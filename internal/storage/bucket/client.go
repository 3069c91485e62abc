// Package bucket implements the Storage port against the hosted object
// storage HTTP API used by the product backend.
package bucket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/edudashpro/attachd/internal/storage"
)

// maxResponseBytes bounds reads of API responses.
const maxResponseBytes = 1 << 20 // 1 MiB

// Client is a thin HTTP wrapper around the storage API. Objects are written
// with upsert disabled so a key can never be silently overwritten.
type Client struct {
	baseURL string
	bucket  string
	apiKey  string
	http    *http.Client
}

// New creates a storage client for the given API base URL and bucket.
func New(baseURL, bucket, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		bucket:  bucket,
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// errorBody is the JSON error payload returned by the storage API.
type errorBody struct {
	Message    string `json:"message"`
	Error      string `json:"error"`
	StatusCode string `json:"statusCode"`
}

// Upload implements storage.Storage. It performs a single-shot object write;
// retry policy belongs to the caller.
func (c *Client) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.objectURL(key), r)
	if err != nil {
		return fmt.Errorf("bucket: create upload request: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Upsert", "false")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("bucket: upload %s: %w", key, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil
	}

	if resp.StatusCode == http.StatusConflict {
		return storage.ErrKeyExists
	}

	return c.apiError(resp)
}

// Delete implements storage.Storage.
func (c *Client) Delete(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.objectURL(key), nil)
	if err != nil {
		return fmt.Errorf("bucket: create delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("bucket: delete %s: %w", key, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 || resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil
	}

	return c.apiError(resp)
}

// PublicURL implements storage.Storage.
func (c *Client) PublicURL(key string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", c.baseURL, c.bucket, escapeKey(key))
}

// objectURL builds the authenticated object endpoint for a key.
func (c *Client) objectURL(key string) string {
	return fmt.Sprintf("%s/object/%s/%s", c.baseURL, c.bucket, escapeKey(key))
}

// apiError decodes the response body into a structured storage.APIError.
// The body is best-effort: an unparseable body still yields the status code.
func (c *Client) apiError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))

	var body errorBody
	msg := ""
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			msg = body.Message
		} else {
			msg = body.Error
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	return &storage.APIError{Status: resp.StatusCode, Message: msg}
}

// escapeKey escapes each path segment of an object key while preserving
// the segment separators.
func escapeKey(key string) string {
	segs := strings.Split(key, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
