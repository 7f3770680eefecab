// Package media provides media type detection for the files of a book.
package media

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format represents a file format that can be placed in a book.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// JPEG indicates a JPEG image.
	JPEG
	// PNG indicates a PNG image.
	PNG
	// GIF indicates a GIF image.
	GIF
	// WebP indicates a WebP image.
	WebP
	// BMP indicates a Windows bitmap.
	BMP
	// TIFF indicates a TIFF image.
	TIFF
	// SVG indicates an SVG image.
	SVG
	// CSS indicates a stylesheet.
	CSS
	// XHTML indicates an XHTML or HTML content document.
	XHTML
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case JPEG:
		return "JPEG"
	case PNG:
		return "PNG"
	case GIF:
		return "GIF"
	case WebP:
		return "WebP"
	case BMP:
		return "BMP"
	case TIFF:
		return "TIFF"
	case SVG:
		return "SVG"
	case CSS:
		return "CSS"
	case XHTML:
		return "XHTML"
	default:
		return "Unknown"
	}
}

// Extension returns the file extension used for the format, without a dot.
func (f Format) Extension() string {
	switch f {
	case JPEG:
		return "jpg"
	case PNG:
		return "png"
	case GIF:
		return "gif"
	case WebP:
		return "webp"
	case BMP:
		return "bmp"
	case TIFF:
		return "tif"
	case SVG:
		return "svg"
	case CSS:
		return "css"
	case XHTML:
		return "xhtml"
	default:
		return "bin"
	}
}

// MediaType returns the MIME media type of the format.
func (f Format) MediaType() string {
	switch f {
	case JPEG:
		return "image/jpeg"
	case PNG:
		return "image/png"
	case GIF:
		return "image/gif"
	case WebP:
		return "image/webp"
	case BMP:
		return "image/bmp"
	case TIFF:
		return "image/tiff"
	case SVG:
		return "image/svg+xml"
	case CSS:
		return "text/css"
	case XHTML:
		return "application/xhtml+xml"
	default:
		return "application/octet-stream"
	}
}

// IsImage reports whether the format is an image.
func (f Format) IsImage() bool {
	switch f {
	case JPEG, PNG, GIF, WebP, BMP, TIFF, SVG:
		return true
	}
	return false
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".jpe":
		return JPEG
	case ".png":
		return PNG
	case ".gif":
		return GIF
	case ".webp":
		return WebP
	case ".bmp":
		return BMP
	case ".tif", ".tiff":
		return TIFF
	case ".svg":
		return SVG
	case ".css":
		return CSS
	case ".xhtml", ".html", ".htm":
		return XHTML
	default:
		return Unknown
	}
}

// DetectFromMagic checks file magic bytes to determine format.
// Returns Unknown if the format cannot be determined from content alone,
// which is always the case for CSS.
func DetectFromMagic(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return JPEG
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return PNG
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return GIF
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return WebP
	case bytes.HasPrefix(data, []byte("BM")) && len(data) >= 14:
		return BMP
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return TIFF
	}

	return detectMarkup(data)
}

// detectMarkup recognizes SVG and HTML documents by their first tags.
func detectMarkup(data []byte) Format {
	data = bytes.TrimLeft(data, " \t\r\n\uFEFF")
	if len(data) == 0 {
		return Unknown
	}

	// Check for common signatures (case-insensitive)
	head := strings.ToLower(string(data[:min(1024, len(data))]))
	switch {
	case strings.HasPrefix(head, "<svg"):
		return SVG
	case strings.HasPrefix(head, "<!doctype html"), strings.HasPrefix(head, "<html"):
		return XHTML
	case strings.HasPrefix(head, "<?xml"):
		// An XML declaration followed by the root element decides.
		if strings.Contains(head, "<svg") {
			return SVG
		}
		if strings.Contains(head, "<html") {
			return XHTML
		}
	}
	return Unknown
}

// Sniff detects the format of data, falling back to the extension of
// filename when the content is not conclusive. filename may be empty.
func Sniff(filename string, data []byte) Format {
	if f := DetectFromMagic(data); f != Unknown {
		return f
	}
	return Detect(filename)
}
