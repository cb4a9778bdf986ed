package domain

import (
	"path/filepath"
	"strings"
)

// Format is a serialisation of an OSCAL document.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
	FormatYAML Format = "yaml"
)

// MaxImportSize is the hard cap on imported document size, in bytes.
const MaxImportSize int64 = 50 * 1024 * 1024

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, true
	case "xml":
		return FormatXML, true
	case "yaml", "yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

// Extension returns the conventional file extension, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatXML:
		return ".xml"
	case FormatYAML:
		return ".yaml"
	default:
		return ".json"
	}
}

// FormatFromName infers a format from a file name's extension.
// ".oscal" files are treated as XML.
func FormatFromName(name string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, true
	case ".xml", ".oscal":
		return FormatXML, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

// FormatFromContentType infers a format from a MIME type.
func FormatFromContentType(ct string) (Format, bool) {
	ct = strings.ToLower(ct)
	switch {
	case strings.Contains(ct, "json"):
		return FormatJSON, true
	case strings.Contains(ct, "xml"):
		return FormatXML, true
	case strings.Contains(ct, "yaml"):
		return FormatYAML, true
	default:
		return "", false
	}
}

// ImportFile is an uploaded document awaiting import.
type ImportFile struct {
	// Name is the original file name, used for format detection.
	Name string

	// ContentType is an optional MIME type hint.
	ContentType string

	// Size is the reported size in bytes. When zero, len(Data) is used.
	Size int64

	// Data is the file content.
	Data []byte
}

// ReportedSize returns the larger of Size and len(Data).
func (f ImportFile) ReportedSize() int64 {
	if n := int64(len(f.Data)); n > f.Size {
		return n
	}
	return f.Size
}
