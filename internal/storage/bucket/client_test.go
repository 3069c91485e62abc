package bucket

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/edudashpro/attachd/internal/storage"
)

func TestUpload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/object/attachments/threads/t1/123_abcdef.png" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer KEY" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "image/png" {
			t.Errorf("Content-Type = %q", got)
		}
		if got := r.Header.Get("X-Upsert"); got != "false" {
			t.Errorf("X-Upsert = %q, want false", got)
		}

		body, _ := io.ReadAll(r.Body)
		if string(body) != "pixels" {
			t.Errorf("body = %q, want pixels", body)
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "attachments", "KEY")
	err := c.Upload(context.Background(), "threads/t1/123_abcdef.png",
		bytes.NewReader([]byte("pixels")), 6, "image/png")
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
}

func TestUploadConflict(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	c := New(srv.URL, "attachments", "KEY")
	err := c.Upload(context.Background(), "k", bytes.NewReader(nil), 0, "image/png")
	if !errors.Is(err, storage.ErrKeyExists) {
		t.Fatalf("error = %v, want ErrKeyExists", err)
	}
}

func TestUploadAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"backend under maintenance"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "attachments", "KEY")
	err := c.Upload(context.Background(), "k", bytes.NewReader(nil), 0, "image/png")

	var apiErr *storage.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *storage.APIError", err)
	}
	if apiErr.Status != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want 503", apiErr.Status)
	}
	if apiErr.Message != "backend under maintenance" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestUploadAPIErrorUnparseableBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>boom</html>"))
	}))
	defer srv.Close()

	c := New(srv.URL, "attachments", "KEY")
	err := c.Upload(context.Background(), "k", bytes.NewReader(nil), 0, "image/png")

	var apiErr *storage.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *storage.APIError", err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", apiErr.Status)
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "attachments", "KEY")
	if err := c.Delete(context.Background(), "threads/t1/x.png"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %s, want DELETE", gotMethod)
	}
	if gotPath != "/object/attachments/threads/t1/x.png" {
		t.Errorf("path = %s", gotPath)
	}
}

func TestDeleteMissingObjectIsNotAnError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "attachments", "KEY")
	if err := c.Delete(context.Background(), "gone"); err != nil {
		t.Fatalf("Delete() error: %v, want nil for 404", err)
	}
}

func TestPublicURL(t *testing.T) {
	t.Parallel()

	c := New("https://project.example.com/storage/v1/", "attachments", "KEY")

	got := c.PublicURL("threads/t1/123_abcdef.png")
	want := "https://project.example.com/storage/v1/object/public/attachments/threads/t1/123_abcdef.png"
	if got != want {
		t.Errorf("PublicURL = %q, want %q", got, want)
	}
}

func TestPublicURLEscapesSegments(t *testing.T) {
	t.Parallel()

	c := New("https://h.example.com", "b", "KEY")
	got := c.PublicURL("a b/c.png")
	want := "https://h.example.com/object/public/b/a%20b/c.png"
	if got != want {
		t.Errorf("PublicURL = %q, want %q", got, want)
	}
}
