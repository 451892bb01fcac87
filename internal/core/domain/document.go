package domain

import (
	"path/filepath"
	"strings"
)

// Format is the declared document format, inferred from the filename suffix.
type Format string

const (
	FormatPDF         Format = "pdf"
	FormatDOCX        Format = "docx"
	FormatText        Format = "txt"
	FormatUnsupported Format = "unsupported"
)

// SupportedFormats lists every format an extractor exists for.
var SupportedFormats = []Format{FormatPDF, FormatDOCX, FormatText}

// FormatFromFilename maps a filename suffix to its format. Matching is case-insensitive.
func FormatFromFilename(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDOCX
	case ".txt":
		return FormatText
	default:
		return FormatUnsupported
	}
}

func (f Format) Supported() bool {
	switch f {
	case FormatPDF, FormatDOCX, FormatText:
		return true
	default:
		return false
	}
}

// Document is an uploaded payload. It is not retained after extraction.
type Document struct {
	Filename string
	Format   Format
	Payload  []byte
}

func NewDocument(filename string, payload []byte) Document {
	return Document{
		Filename: filename,
		Format:   FormatFromFilename(filename),
		Payload:  payload,
	}
}
