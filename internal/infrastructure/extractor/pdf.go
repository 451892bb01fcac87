package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/resume-screener/internal/core/domain"
)

// extractPDF concatenates the plain text of every page in page order with no separator.
func extractPDF(raw []byte) (text string, err error) {
	// The pdf package panics on some malformed object graphs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = extractionFailed(domain.FormatPDF, fmt.Errorf("malformed pdf: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", extractionFailed(domain.FormatPDF, fmt.Errorf("open pdf: %w", err))
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", extractionFailed(domain.FormatPDF, fmt.Errorf("page %d: %w", i, err))
		}
		b.WriteString(pageText)
	}
	return b.String(), nil
}
