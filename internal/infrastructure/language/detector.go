// Package language annotates screenings with the detected resume language.
package language

import (
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// DefaultLanguages is used when no language list is configured.
var DefaultLanguages = []string{"en", "de", "fr", "es", "it", "pt", "nl", "ru"}

// minimumTextRunes keeps very short texts undecided.
const minimumTextRunes = 20

type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector restricted to the given ISO 639-1 codes. At least two are required.
func New(codes []string) (*Detector, error) {
	if len(codes) == 0 {
		codes = DefaultLanguages
	}
	languages := make([]lingua.Language, 0, len(codes))
	seen := map[lingua.Language]struct{}{}
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		lang := lingua.GetLanguageFromIsoCode639_1(lingua.GetIsoCode639_1FromValue(strings.ToUpper(code)))
		if lang == lingua.Unknown {
			return nil, fmt.Errorf("unknown language code %q", code)
		}
		if _, dup := seen[lang]; dup {
			continue
		}
		seen[lang] = struct{}{}
		languages = append(languages, lang)
	}
	if len(languages) < 2 {
		return nil, fmt.Errorf("language detection needs at least 2 languages, got %d", len(languages))
	}

	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(languages...).
		WithMinimumRelativeDistance(0.1).
		Build()
	return &Detector{detector: detector}, nil
}

// Detect returns the lower-case ISO 639-1 code, or "" when the text is too short or ambiguous.
func (d *Detector) Detect(text string) string {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < minimumTextRunes {
		return ""
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
