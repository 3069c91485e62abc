package upload

import (
	"errors"
	"net/http"
	"strings"

	"github.com/edudashpro/attachd/internal/storage"
)

// ValidationError indicates the attachment violated the size or type policy.
// It is raised before any network call and is never retried.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// UploadError indicates the network phase failed terminally: either the
// failure class is not retryable, or all attempts were exhausted. Message is
// user-facing. Retryable is always false on errors surfaced to callers;
// retryability only steers the internal loop.
type UploadError struct {
	Message   string
	Retryable bool
}

// Error implements the error interface.
func (e *UploadError) Error() string {
	return e.Message
}

// User-facing messages for classified failures.
const (
	msgNetwork      = "Network error during upload. Please check your connection and try again."
	msgStorageLimit = "Storage limit reached. Please contact support."
	msgPermission   = "Permission denied. Please sign in again."
	msgServerError  = "Server error. Please try again."
)

// classify maps a storage failure to a user-facing message and a retryable
// flag. Structured status codes on storage.APIError are consulted first;
// substring heuristics on the error text are the fallback for untyped
// transport errors.
func classify(err error) (msg string, retryable bool) {
	var apiErr *storage.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return msgPermission, false
		case http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return msgServerError, true
		case http.StatusTooManyRequests, http.StatusInsufficientStorage:
			return msgStorageLimit, false
		}
		return classifyText(apiErr.Message)
	}

	return classifyText(err.Error())
}

// classifyText applies the substring taxonomy to an error message.
func classifyText(text string) (msg string, retryable bool) {
	lower := strings.ToLower(text)

	switch {
	case containsAny(lower, "network", "fetch", "timeout"):
		return msgNetwork, true
	case containsAny(lower, "quota", "limit"):
		return msgStorageLimit, false
	case containsAny(lower, "permission", "denied", "403"):
		return msgPermission, false
	case containsAny(lower, "500", "502", "503", "504"):
		return msgServerError, true
	default:
		return text, false
	}
}

// containsAny reports whether s contains any of the substrings.
func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
