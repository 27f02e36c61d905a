// Package mediakind classifies declared content types and infers them back
// from a file locator's suffix when no better information is available.
package mediakind

import (
	"net/url"
	"path"
	"strings"
)

// Unknown is returned when a content type cannot be determined.
const Unknown = "application/octet-stream"

// imageKinds contains all recognized image content types.
var imageKinds = map[string]struct{}{
	"image/jpeg":    {},
	"image/png":     {},
	"image/gif":     {},
	"image/webp":    {},
	"image/svg+xml": {},
	"image/bmp":     {},
	"image/tiff":    {},
	"image/x-icon":  {},
	"image/heic":    {},
	"image/heif":    {},
	"image/avif":    {},
}

// kindExtensions maps content types to preferred file extensions.
var kindExtensions = map[string]string{
	"image/jpeg":       ".jpg",
	"image/png":        ".png",
	"image/gif":        ".gif",
	"image/webp":       ".webp",
	"image/svg+xml":    ".svg",
	"image/bmp":        ".bmp",
	"image/tiff":       ".tiff",
	"image/x-icon":     ".ico",
	"image/heic":       ".heic",
	"image/heif":       ".heif",
	"image/avif":       ".avif",
	"application/pdf":  ".pdf",
	"application/json": ".json",
	"application/zip":  ".zip",
	"text/plain":       ".txt",
	"text/csv":         ".csv",
	"video/mp4":        ".mp4",
	"video/webm":       ".webm",
	"audio/mpeg":       ".mp3",
	"audio/wav":        ".wav",
}

// extensionKinds is the reverse mapping, extension to content type.
// Built once at init; jpeg gets an extra alias.
var extensionKinds = func() map[string]string {
	m := make(map[string]string, len(kindExtensions)+1)
	for kind, ext := range kindExtensions {
		m[ext] = kind
	}
	m[".jpeg"] = "image/jpeg"
	return m
}()

// IsImage reports whether the declared content type is a recognized image type.
// Parameters such as charset are stripped before lookup.
func IsImage(kind string) bool {
	_, ok := imageKinds[normalize(kind)]
	return ok
}

// ExtFromKind returns the preferred file extension for a content type.
// Returns empty string if the type is unknown.
func ExtFromKind(kind string) string {
	return kindExtensions[normalize(kind)]
}

// FromLocator infers a content type from the path suffix of a locator.
// Query and fragment components are ignored. Returns Unknown when the
// suffix is missing or unrecognized.
func FromLocator(locator string) string {
	p := locator
	if u, err := url.Parse(locator); err == nil && u.Path != "" {
		p = u.Path
	}

	ext := strings.ToLower(path.Ext(p))
	if kind, ok := extensionKinds[ext]; ok {
		return kind
	}
	return Unknown
}

// normalize extracts the base content type, removing parameters like charset.
func normalize(kind string) string {
	if i := strings.Index(kind, ";"); i >= 0 {
		kind = kind[:i]
	}
	return strings.ToLower(strings.TrimSpace(kind))
}
