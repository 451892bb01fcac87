package model

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kirillkom/resume-screener/internal/core/domain"
)

const KindLinear = "linear"

// LinearClassifier is a one-vs-rest linear decision model. A single coefficient row is the
// binary case: a positive score selects classes[1].
type LinearClassifier struct {
	classes   []int
	coef      [][]float64
	intercept []float64
	width     int
}

type linearFile struct {
	Kind      string      `json:"kind"`
	Classes   []int       `json:"classes"`
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

// DecodeLinearClassifier reads a classifier artifact.
func DecodeLinearClassifier(r io.Reader) (*LinearClassifier, error) {
	var file linearFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode classifier json: %w", err)
	}
	if file.Kind != "" && file.Kind != KindLinear {
		return nil, fmt.Errorf("unsupported classifier kind %q", file.Kind)
	}
	return NewLinearClassifier(file.Classes, file.Coef, file.Intercept)
}

func NewLinearClassifier(classes []int, coef [][]float64, intercept []float64) (*LinearClassifier, error) {
	if len(classes) < 2 {
		return nil, fmt.Errorf("classifier needs at least 2 classes, got %d", len(classes))
	}
	if len(coef) == 0 {
		return nil, fmt.Errorf("classifier has no coefficients")
	}
	binary := len(coef) == 1
	if !binary && len(coef) != len(classes) {
		return nil, fmt.Errorf("coef rows %d do not match classes %d", len(coef), len(classes))
	}
	if binary && len(classes) != 2 {
		return nil, fmt.Errorf("single coef row requires exactly 2 classes, got %d", len(classes))
	}
	if len(intercept) != len(coef) {
		return nil, fmt.Errorf("intercept length %d does not match coef rows %d", len(intercept), len(coef))
	}
	width := len(coef[0])
	if width == 0 {
		return nil, fmt.Errorf("classifier has zero features")
	}
	rows := make([][]float64, len(coef))
	for i, row := range coef {
		if len(row) != width {
			return nil, fmt.Errorf("coef row %d has %d features, want %d", i, len(row), width)
		}
		rows[i] = append([]float64(nil), row...)
	}

	return &LinearClassifier{
		classes:   append([]int(nil), classes...),
		coef:      rows,
		intercept: append([]float64(nil), intercept...),
		width:     width,
	}, nil
}

// Width is the feature dimension the model accepts.
func (c *LinearClassifier) Width() int {
	return c.width
}

// Classes returns the category ids the model can emit.
func (c *LinearClassifier) Classes() []int {
	return append([]int(nil), c.classes...)
}

// Classify returns the category id with the highest decision score. Ties go to the lowest row.
func (c *LinearClassifier) Classify(dense []float64) (int, error) {
	if len(dense) != c.width {
		return 0, domain.WrapError(
			domain.ErrArtifactInconsistent,
			"classify",
			fmt.Errorf("vector has %d features, classifier expects %d", len(dense), c.width),
		)
	}

	scores := c.DecisionFunction(dense)
	if len(scores) == 1 {
		if scores[0] > 0 {
			return c.classes[1], nil
		}
		return c.classes[0], nil
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return c.classes[best], nil
}

// DecisionFunction returns coef·x + intercept per row.
func (c *LinearClassifier) DecisionFunction(dense []float64) []float64 {
	scores := make([]float64, len(c.coef))
	for i, row := range c.coef {
		score := c.intercept[i]
		for j, w := range row {
			if x := dense[j]; x != 0 {
				score += w * x
			}
		}
		scores[i] = score
	}
	return scores
}
