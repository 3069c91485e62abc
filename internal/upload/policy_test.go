package upload

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateAttachmentAccepts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		size        int64
		contentType string
	}{
		{"small jpeg", 1 << 20, "image/jpeg"},
		{"image at cap", 10 << 20, "image/png"},
		{"audio at cap", 25 << 20, "audio/mpeg"},
		{"video at cap", 50 << 20, "video/mp4"},
		{"off-list image subtype", 1 << 20, "image/x-sony-arw"},
		{"off-list audio subtype", 1 << 20, "audio/flac"},
		{"codec-qualified type", 1 << 20, "audio/webm;codecs=opus"},
		{"pdf", 1 << 20, "application/pdf"},
		{"mixed case", 1 << 20, "Image/JPEG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := ValidateAttachment(tt.size, tt.contentType); err != nil {
				t.Errorf("ValidateAttachment(%d, %q) = %v, want nil", tt.size, tt.contentType, err)
			}
		})
	}
}

func TestValidateAttachmentSizeCaps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		size        int64
		contentType string
		wantParts   []string
	}{
		{"oversized image", 12<<20 + 314573, "image/png", []string{"image too large", "12.3MB", "limit 10MB"}},
		{"oversized audio", 26 << 20, "audio/mpeg", []string{"audio too large", "26.0MB", "limit 25MB"}},
		{"oversized video", 51 << 20, "video/mp4", []string{"video too large", "51.0MB", "limit 50MB"}},
		{"oversized document", 26 << 20, "application/pdf", []string{"file too large", "26.0MB", "limit 25MB"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateAttachment(tt.size, tt.contentType)

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			for _, part := range tt.wantParts {
				if !strings.Contains(vErr.Message, part) {
					t.Errorf("message %q missing %q", vErr.Message, part)
				}
			}
		})
	}
}

func TestValidateAttachmentRejectsTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
	}{
		{"octet stream", "application/octet-stream"},
		{"executable", "application/x-msdownload"},
		{"zip", "application/zip"},
		{"html", "text/html"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateAttachment(1024, tt.contentType)

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("ValidateAttachment(1024, %q) = %v, want *ValidationError", tt.contentType, err)
			}
		})
	}
}
