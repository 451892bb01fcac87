package extractor

import "strings"

// extractPlainText decodes UTF-8, dropping byte sequences that do not decode.
func extractPlainText(raw []byte) string {
	return strings.ToValidUTF8(string(raw), "")
}
