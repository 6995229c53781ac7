// Package contenttype classifies the media types that cross the extraction
// service boundary: PDF documents going out and JSON envelopes coming back.
package contenttype

import (
	"bytes"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// Category represents a broad content-type classification.
type Category string

const (
	JSON   Category = "json"
	PDF    Category = "pdf"
	Text   Category = "text"
	Binary Category = "binary"
)

// PDFMediaType is the media type sent for every uploaded document.
const PDFMediaType = "application/pdf"

// pdfMagic opens every PDF file.
var pdfMagic = []byte("%PDF-")

// Classify returns the broad content category for a content-type header value.
// Uses mime.ParseMediaType to strip parameters (charset, boundary, etc.)
// before matching. Falls back to strings.ToLower for malformed values.
// Returns Binary for empty content-type strings.
func Classify(contentType string) Category {
	if contentType == "" {
		return Binary
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}

	switch {
	case strings.Contains(mediaType, "json"):
		return JSON
	case mediaType == PDFMediaType || mediaType == "application/x-pdf":
		return PDF
	case strings.HasPrefix(mediaType, "text/"):
		return Text
	default:
		return Binary
	}
}

// IsJSON returns true if the content type indicates JSON (case-insensitive).
func IsJSON(contentType string) bool {
	return Classify(contentType) == JSON
}

// HasPDFMagic reports whether data starts with the PDF header, ignoring
// leading whitespace some producers emit.
func HasPDFMagic(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n\x00"), pdfMagic)
}

// Detect returns the media type for a named file: sniffed PDF header first,
// then the extension, then http.DetectContentType.
func Detect(name string, data []byte) string {
	if HasPDFMagic(data) {
		return PDFMediaType
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	if len(data) == 0 {
		return "application/octet-stream"
	}
	return http.DetectContentType(data)
}
