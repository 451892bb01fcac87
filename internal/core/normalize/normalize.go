// Package normalize implements the resume clean-up rule sequence. The vectorizer artifact was
// fitted against text produced by exactly these rules in exactly this order, so any change
// here invalidates the artifacts.
package normalize

import (
	"regexp"
	"strings"
)

// spaceClass is the Unicode whitespace set matched by \s in the rules the artifacts were
// fitted with. RE2's \s only covers ASCII and omits \v and \x1c-\x1f.
const spaceClass = `\t\n\v\f\r\x1c-\x1f \x{85}\x{a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}`

const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Step is one rewrite rule of the sequence.
type Step struct {
	Name  string
	apply func(string) string
}

func (s Step) Apply(text string) string {
	return s.apply(text)
}

func replacePattern(pattern, repl string) func(string) string {
	re := regexp.MustCompile(pattern)
	return func(text string) string {
		return re.ReplaceAllLiteralString(text, repl)
	}
}

var (
	RemoveURLs = Step{
		Name:  "remove_urls",
		apply: replacePattern(`http[^`+spaceClass+`]+[`+spaceClass+`]`, " "),
	}
	RemoveRTAndCC = Step{
		Name:  "remove_rt_cc",
		apply: replacePattern(`RT|cc`, " "),
	}
	RemoveHashtags = Step{
		Name:  "remove_hashtags",
		apply: replacePattern(`#[^`+spaceClass+`]+[`+spaceClass+`]`, " "),
	}
	RemoveMentions = Step{
		Name:  "remove_mentions",
		apply: replacePattern(`@[^`+spaceClass+`]+`, "  "),
	}
	RemovePunctuation = Step{
		Name: "remove_punctuation",
		apply: func(text string) string {
			return strings.Map(func(r rune) rune {
				if strings.ContainsRune(punctuation, r) {
					return ' '
				}
				return r
			}, text)
		},
	}
	// RemoveNonASCII replaces each code point >= 0x80 with one space. Invalid UTF-8 bytes
	// decode as U+FFFD and are replaced one space per byte.
	RemoveNonASCII = Step{
		Name: "remove_non_ascii",
		apply: func(text string) string {
			return strings.Map(func(r rune) rune {
				if r >= 0x80 {
					return ' '
				}
				return r
			}, text)
		},
	}
	CollapseWhitespace = Step{
		Name:  "collapse_whitespace",
		apply: replacePattern(`[`+spaceClass+`]+`, " "),
	}
	Trim = Step{
		Name: "trim",
		apply: func(text string) string {
			return strings.TrimFunc(text, isSpace)
		},
	}
)

// isSpace mirrors spaceClass for trimming.
func isSpace(r rune) bool {
	switch {
	case r >= '\t' && r <= '\r', r >= 0x1c && r <= 0x1f, r == ' ', r == 0x85, r == 0xa0,
		r == 0x1680, r >= 0x2000 && r <= 0x200a, r == 0x2028, r == 0x2029, r == 0x202f,
		r == 0x205f, r == 0x3000:
		return true
	default:
		return false
	}
}

// Normalizer applies an ordered list of steps.
type Normalizer struct {
	steps []Step
}

// New returns the fixed resume normalization sequence.
func New() *Normalizer {
	return &Normalizer{steps: []Step{
		RemoveURLs,
		RemoveRTAndCC,
		RemoveHashtags,
		RemoveMentions,
		RemovePunctuation,
		RemoveNonASCII,
		CollapseWhitespace,
		Trim,
	}}
}

func (n *Normalizer) Normalize(text string) string {
	for _, step := range n.steps {
		text = step.Apply(text)
	}
	return text
}

// Steps returns the step names in application order.
func (n *Normalizer) Steps() []string {
	names := make([]string, 0, len(n.steps))
	for _, step := range n.steps {
		names = append(names, step.Name)
	}
	return names
}

var defaultNormalizer = New()

func Normalize(text string) string {
	return defaultNormalizer.Normalize(text)
}
