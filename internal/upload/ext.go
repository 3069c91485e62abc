package upload

import (
	"crypto/rand"
	"fmt"
	"path"
	"strings"
	"time"
)

// extByMIME maps base MIME types to file extensions.
var extByMIME = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
	"image/heic": "heic",
	"image/heif": "heif",

	"audio/mpeg":  "mp3",
	"audio/mp3":   "mp3",
	"audio/mp4":   "m4a",
	"audio/m4a":   "m4a",
	"audio/x-m4a": "m4a",
	"audio/aac":   "aac",
	"audio/wav":   "wav",
	"audio/webm":  "webm",
	"audio/ogg":   "ogg",

	"video/mp4":       "mp4",
	"video/quicktime": "mov",
	"video/webm":      "webm",
	"video/3gpp":      "3gp",

	"application/pdf": "pdf",
	"text/plain":      "txt",
}

// resolveExtension derives the object extension. Resolution order: explicit
// filename hint, the file's own name, the MIME mapping table after parameter
// stripping, then the subtype with "x-" and non-alphanumerics stripped.
// "bin" is the final fallback.
func resolveExtension(filenameHint, fileName, contentType string) string {
	if ext := nameExtension(filenameHint); ext != "" {
		return ext
	}
	if ext := nameExtension(fileName); ext != "" {
		return ext
	}

	base := baseType(contentType)
	if ext, ok := extByMIME[base]; ok {
		return ext
	}

	_, subtype, ok := strings.Cut(base, "/")
	if ok {
		subtype = strings.TrimPrefix(subtype, "x-")
		subtype = stripNonAlnum(subtype)
		if subtype != "" {
			return subtype
		}
	}

	return "bin"
}

// nameExtension extracts a lowercase extension from a file name, without the dot.
func nameExtension(name string) string {
	ext := path.Ext(name)
	if len(ext) < 2 {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// stripNonAlnum removes every character outside [a-z0-9].
func stripNonAlnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// keyAlphabet is the character set for the random object-key suffix.
const keyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// newObjectKey builds a collision-resistant object key of the form
// {prefix/}{unixMillis}_{6charRandom}.{ext}. The key is derived once per
// logical upload; retries of the same call reuse it.
func newObjectKey(prefix, ext string) string {
	key := fmt.Sprintf("%d_%s.%s", time.Now().UnixMilli(), randomSuffix(6), ext)
	if prefix == "" {
		return key
	}
	return strings.TrimRight(prefix, "/") + "/" + key
}

// randomSuffix returns n random characters from keyAlphabet.
func randomSuffix(n int) string {
	buf := make([]byte, n)
	// rand.Read never fails on supported platforms.
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = keyAlphabet[int(b)%len(keyAlphabet)]
	}
	return string(buf)
}
