package upload

import (
	"fmt"
	"strings"
)

// Size caps per content-type family.
const (
	maxImageBytes   = 10 << 20 // 10 MiB
	maxAudioBytes   = 25 << 20 // 25 MiB
	maxVideoBytes   = 50 << 20 // 50 MiB
	maxDefaultBytes = 25 << 20 // 25 MiB, anything else
)

// allowedTypes is the explicit MIME allow-list. Types under the image/,
// audio/, and video/ families are accepted even when off-list, to tolerate
// minor codec and subtype variation across devices; common document types
// must be listed explicitly.
var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,

	"audio/mpeg":  true,
	"audio/mp3":   true,
	"audio/mp4":   true,
	"audio/m4a":   true,
	"audio/x-m4a": true,
	"audio/aac":   true,
	"audio/wav":   true,
	"audio/webm":  true,
	"audio/ogg":   true,

	"video/mp4":       true,
	"video/quicktime": true,
	"video/webm":      true,
	"video/3gpp":      true,

	"application/pdf": true,
	"text/plain":      true,
}

// family returns the size-policy family for a content type.
func family(contentType string) (name string, maxBytes int64) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image", maxImageBytes
	case strings.HasPrefix(contentType, "audio/"):
		return "audio", maxAudioBytes
	case strings.HasPrefix(contentType, "video/"):
		return "video", maxVideoBytes
	default:
		return "file", maxDefaultBytes
	}
}

// baseType strips any MIME parameters, e.g.
// "audio/webm;codecs=opus" -> "audio/webm".
func baseType(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(strings.ToLower(base))
}

// ValidateAttachment checks size and type policy for an attachment. It is
// synchronous, performs no I/O, and its failures must never be retried.
func ValidateAttachment(size int64, contentType string) error {
	base := baseType(contentType)

	name, maxBytes := family(base)
	if size > maxBytes {
		return &ValidationError{Message: fmt.Sprintf(
			"%s too large: %.1fMB (limit %dMB)",
			name, float64(size)/(1<<20), maxBytes>>20,
		)}
	}

	if allowedTypes[base] {
		return nil
	}
	if base != "application/octet-stream" &&
		(strings.HasPrefix(base, "image/") ||
			strings.HasPrefix(base, "audio/") ||
			strings.HasPrefix(base, "video/")) {
		return nil
	}

	return &ValidationError{Message: fmt.Sprintf("file type not supported: %s", contentType)}
}
