// Package extractor turns uploaded resume payloads into plain text.
package extractor

import (
	"context"
	"fmt"

	"github.com/kirillkom/resume-screener/internal/core/domain"
)

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract dispatches on the declared format. Unsupported formats always fail; they are never
// reported as empty text.
func (e *Extractor) Extract(ctx context.Context, doc domain.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch doc.Format {
	case domain.FormatPDF:
		return extractPDF(doc.Payload)
	case domain.FormatDOCX:
		return extractDOCX(doc.Payload)
	case domain.FormatText:
		return extractPlainText(doc.Payload), nil
	case domain.FormatUnsupported:
		return "", unsupported(doc)
	default:
		return "", unsupported(doc)
	}
}

func unsupported(doc domain.Document) error {
	return domain.WrapError(
		domain.ErrUnsupportedFormat,
		"extract text",
		fmt.Errorf("file %q: supported formats are .pdf, .docx and .txt", doc.Filename),
	)
}

func extractionFailed(format domain.Format, err error) error {
	return domain.WrapError(domain.ErrExtractionFailure, "extract "+string(format), err)
}
