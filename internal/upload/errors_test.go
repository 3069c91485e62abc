package upload

import (
	"errors"
	"fmt"
	"testing"

	"github.com/edudashpro/attachd/internal/storage"
)

func TestClassifyStatusCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		status        int
		wantMsg       string
		wantRetryable bool
	}{
		{"forbidden", 403, msgPermission, false},
		{"unauthorized", 401, msgPermission, false},
		{"internal", 500, msgServerError, true},
		{"bad gateway", 502, msgServerError, true},
		{"unavailable", 503, msgServerError, true},
		{"gateway timeout", 504, msgServerError, true},
		{"too many requests", 429, msgStorageLimit, false},
		{"insufficient storage", 507, msgStorageLimit, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg, retryable := classify(&storage.APIError{Status: tt.status, Message: "whatever"})
			if msg != tt.wantMsg {
				t.Errorf("msg = %q, want %q", msg, tt.wantMsg)
			}
			if retryable != tt.wantRetryable {
				t.Errorf("retryable = %v, want %v", retryable, tt.wantRetryable)
			}
		})
	}
}

func TestClassifySubstrings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		err           error
		wantMsg       string
		wantRetryable bool
	}{
		{"network", errors.New("network is unreachable"), msgNetwork, true},
		{"fetch", errors.New("Fetch failed"), msgNetwork, true},
		{"timeout", errors.New("dial tcp: i/o timeout"), msgNetwork, true},
		{"quota", errors.New("project quota exceeded"), msgStorageLimit, false},
		{"limit", errors.New("rate limit hit"), msgStorageLimit, false},
		{"permission", errors.New("permission error"), msgPermission, false},
		{"denied", errors.New("access denied"), msgPermission, false},
		{"403 in text", errors.New("unexpected status 403"), msgPermission, false},
		{"500 in text", errors.New("unexpected status 500"), msgServerError, true},
		{"503 in text", errors.New("got 503 from upstream"), msgServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg, retryable := classify(tt.err)
			if msg != tt.wantMsg {
				t.Errorf("msg = %q, want %q", msg, tt.wantMsg)
			}
			if retryable != tt.wantRetryable {
				t.Errorf("retryable = %v, want %v", retryable, tt.wantRetryable)
			}
		})
	}
}

func TestClassifyUnknownPassesRawMessage(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("bucket: something odd happened")
	msg, retryable := classify(err)
	if msg != err.Error() {
		t.Errorf("msg = %q, want raw %q", msg, err.Error())
	}
	if retryable {
		t.Error("retryable = true, want false for unknown errors")
	}
}

func TestClassifyAPIErrorUnlistedStatusFallsBackToText(t *testing.T) {
	t.Parallel()

	// A 400 with a quota message still classifies as storage limit.
	msg, retryable := classify(&storage.APIError{Status: 400, Message: "quota exceeded for bucket"})
	if msg != msgStorageLimit {
		t.Errorf("msg = %q, want %q", msg, msgStorageLimit)
	}
	if retryable {
		t.Error("retryable = true, want false")
	}
}
