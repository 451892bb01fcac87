package extractor

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"github.com/kirillkom/resume-screener/internal/core/domain"
)

// extractDOCX joins the text of every body paragraph, in document order, with "\n".
func extractDOCX(raw []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", extractionFailed(domain.FormatDOCX, fmt.Errorf("open docx: %w", err))
	}
	defer doc.Close()

	paragraphs, err := bodyParagraphs(doc.Editable().GetContent())
	if err != nil {
		return "", extractionFailed(domain.FormatDOCX, err)
	}
	return strings.Join(paragraphs, "\n"), nil
}

// bodyParagraphs returns the text of each w:p that is a direct child of w:body. Runs nested in
// hyperlinks count; paragraphs inside tables and text boxes do not.
func bodyParagraphs(documentXML string) ([]string, error) {
	dec := xml.NewDecoder(strings.NewReader(documentXML))

	var (
		stack      []string
		paragraphs []string
		current    strings.Builder
		paraDepth  = -1
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			stack = append(stack, name)
			depth := len(stack) - 1

			if paraDepth < 0 {
				if name == "p" && depth > 0 && stack[depth-1] == "body" {
					paraDepth = depth
					current.Reset()
				}
				continue
			}
			if !isRunChild(stack, paraDepth) {
				continue
			}
			switch name {
			case "t":
				inText = true
			case "tab", "ptab":
				current.WriteByte('\t')
			case "noBreakHyphen":
				current.WriteByte('-')
			case "br":
				if !isLayoutBreak(t) {
					current.WriteByte('\n')
				}
			case "cr":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			depth := len(stack) - 1
			if depth < 0 {
				return nil, fmt.Errorf("parse document.xml: unbalanced element %s", t.Name.Local)
			}
			if depth == paraDepth {
				paragraphs = append(paragraphs, current.String())
				paraDepth = -1
			}
			if t.Name.Local == "t" {
				inText = false
			}
			stack = stack[:depth]
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	if len(stack) != 0 {
		return nil, fmt.Errorf("parse document.xml: unexpected end of document")
	}
	return paragraphs, nil
}

// isLayoutBreak reports page and column breaks, which carry no text.
func isLayoutBreak(el xml.StartElement) bool {
	for _, attr := range el.Attr {
		if attr.Name.Local == "type" {
			return attr.Value == "page" || attr.Value == "column"
		}
	}
	return false
}

// isRunChild reports whether the innermost element is a direct child of a run that belongs to
// the paragraph at paraDepth, either directly or through a hyperlink.
func isRunChild(stack []string, paraDepth int) bool {
	rel := stack[paraDepth+1:]
	switch len(rel) {
	case 2:
		return rel[0] == "r"
	case 3:
		return rel[0] == "hyperlink" && rel[1] == "r"
	default:
		return false
	}
}
