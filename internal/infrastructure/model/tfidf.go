package model

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"regexp"
	"strings"

	"github.com/kirillkom/resume-screener/internal/core/domain"
)

var defaultTokenPattern = regexp.MustCompile(`\b\w\w+\b`)

// TFIDFVectorizer is a pre-fitted bag-of-terms model with inverse document frequency weights.
type TFIDFVectorizer struct {
	vocabulary  map[string]int
	idf         []float64
	lowercase   bool
	minN, maxN  int
	stopWords   map[string]struct{}
	sublinearTF bool
	norm        string
}

type tfidfFile struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	Lowercase   *bool          `json:"lowercase"`
	NgramRange  []int          `json:"ngram_range"`
	StopWords   []string       `json:"stop_words"`
	SublinearTF bool           `json:"sublinear_tf"`
	Norm        *string        `json:"norm"`
}

// DecodeTFIDF reads a vectorizer artifact.
func DecodeTFIDF(r io.Reader) (*TFIDFVectorizer, error) {
	var file tfidfFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode tfidf json: %w", err)
	}

	lowercase := true
	if file.Lowercase != nil {
		lowercase = *file.Lowercase
	}
	norm := "l2"
	if file.Norm != nil {
		norm = *file.Norm
	}
	minN, maxN := 1, 1
	if len(file.NgramRange) > 0 {
		if len(file.NgramRange) != 2 {
			return nil, fmt.Errorf("ngram_range must have 2 elements, got %d", len(file.NgramRange))
		}
		minN, maxN = file.NgramRange[0], file.NgramRange[1]
	}
	return NewTFIDFVectorizer(TFIDFOptions{
		Vocabulary:  file.Vocabulary,
		IDF:         file.IDF,
		Lowercase:   lowercase,
		MinN:        minN,
		MaxN:        maxN,
		StopWords:   file.StopWords,
		SublinearTF: file.SublinearTF,
		Norm:        norm,
	})
}

type TFIDFOptions struct {
	Vocabulary  map[string]int
	IDF         []float64
	Lowercase   bool
	MinN        int
	MaxN        int
	StopWords   []string
	SublinearTF bool
	Norm        string
}

func NewTFIDFVectorizer(opts TFIDFOptions) (*TFIDFVectorizer, error) {
	if len(opts.Vocabulary) == 0 {
		return nil, fmt.Errorf("vocabulary is empty")
	}
	size := len(opts.Vocabulary)
	seen := make([]bool, size)
	for term, idx := range opts.Vocabulary {
		if idx < 0 || idx >= size {
			return nil, fmt.Errorf("term %q has index %d outside [0,%d)", term, idx, size)
		}
		if seen[idx] {
			return nil, fmt.Errorf("index %d assigned to more than one term", idx)
		}
		seen[idx] = true
	}
	if len(opts.IDF) != 0 && len(opts.IDF) != size {
		return nil, fmt.Errorf("idf length %d does not match vocabulary size %d", len(opts.IDF), size)
	}
	if opts.MinN <= 0 {
		opts.MinN = 1
	}
	if opts.MaxN == 0 {
		opts.MaxN = opts.MinN
	}
	if opts.MaxN < opts.MinN {
		return nil, fmt.Errorf("invalid ngram range [%d,%d]", opts.MinN, opts.MaxN)
	}
	switch opts.Norm {
	case "l1", "l2", "":
	default:
		return nil, fmt.Errorf("unsupported norm %q", opts.Norm)
	}

	stop := make(map[string]struct{}, len(opts.StopWords))
	for _, w := range opts.StopWords {
		stop[w] = struct{}{}
	}

	vocab := make(map[string]int, size)
	for term, idx := range opts.Vocabulary {
		vocab[term] = idx
	}
	var idf []float64
	if len(opts.IDF) > 0 {
		idf = append([]float64(nil), opts.IDF...)
	}

	return &TFIDFVectorizer{
		vocabulary:  vocab,
		idf:         idf,
		lowercase:   opts.Lowercase,
		minN:        opts.MinN,
		maxN:        opts.MaxN,
		stopWords:   stop,
		sublinearTF: opts.SublinearTF,
		norm:        opts.Norm,
	}, nil
}

// Dimension is the vocabulary size.
func (v *TFIDFVectorizer) Dimension() int {
	return len(v.vocabulary)
}

// Vectorize counts in-vocabulary terms of text and weights them. Unknown terms are ignored.
func (v *TFIDFVectorizer) Vectorize(text string) domain.SparseVector {
	counts := make(map[int]float64, 64)
	for _, term := range v.terms(text) {
		if idx, ok := v.vocabulary[term]; ok {
			counts[idx]++
		}
	}

	for idx, tf := range counts {
		if v.sublinearTF {
			tf = 1 + math.Log(tf)
		}
		if v.idf != nil {
			tf *= v.idf[idx]
		}
		counts[idx] = tf
	}

	switch v.norm {
	case "l2":
		var sum float64
		for _, w := range counts {
			sum += w * w
		}
		scale(counts, math.Sqrt(sum))
	case "l1":
		var sum float64
		for _, w := range counts {
			sum += math.Abs(w)
		}
		scale(counts, sum)
	}

	return domain.NewSparseVector(len(v.vocabulary), counts)
}

func scale(weights map[int]float64, by float64) {
	if by == 0 {
		return
	}
	for idx, w := range weights {
		weights[idx] = w / by
	}
}

// terms tokenizes text, drops stop words and expands the configured n-gram range.
func (v *TFIDFVectorizer) terms(text string) []string {
	if v.lowercase {
		text = strings.ToLower(text)
	}
	raw := defaultTokenPattern.FindAllString(text, -1)
	tokens := raw[:0]
	for _, tok := range raw {
		if _, stop := v.stopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}

	if v.minN == 1 && v.maxN == 1 {
		return tokens
	}

	out := make([]string, 0, len(tokens)*(v.maxN-v.minN+1))
	for n := v.minN; n <= v.maxN && n <= len(tokens); n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}
