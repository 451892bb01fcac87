package model

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kirillkom/resume-screener/internal/core/domain"
)

// Projection is a pre-fitted linear map to 3 dimensions: (x - mean) · componentsᵀ.
type Projection struct {
	components [3][]float64
	mean       []float64
	width      int
}

type projectionFile struct {
	Components [][]float64 `json:"components"`
	Mean       []float64   `json:"mean"`
}

func DecodeProjection(r io.Reader) (*Projection, error) {
	var file projectionFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode reducer json: %w", err)
	}
	return NewProjection(file.Components, file.Mean)
}

// NewProjection validates shapes. A nil mean means no centering.
func NewProjection(components [][]float64, mean []float64) (*Projection, error) {
	if len(components) != 3 {
		return nil, fmt.Errorf("reducer needs 3 components, got %d", len(components))
	}
	width := len(components[0])
	if width == 0 {
		return nil, fmt.Errorf("reducer components are empty")
	}
	var p Projection
	for i, row := range components {
		if len(row) != width {
			return nil, fmt.Errorf("component %d has %d features, want %d", i, len(row), width)
		}
		p.components[i] = append([]float64(nil), row...)
	}
	if mean != nil && len(mean) != width {
		return nil, fmt.Errorf("mean has %d features, want %d", len(mean), width)
	}
	p.mean = append([]float64(nil), mean...)
	p.width = width
	return &p, nil
}

func (p *Projection) Width() int {
	return p.width
}

func (p *Projection) Reduce(dense []float64) (domain.Point3D, error) {
	if len(dense) != p.width {
		return domain.Point3D{}, domain.WrapError(
			domain.ErrArtifactInconsistent,
			"reduce",
			fmt.Errorf("vector has %d features, reducer expects %d", len(dense), p.width),
		)
	}

	var out [3]float64
	for i := range p.components {
		var sum float64
		for j, c := range p.components[i] {
			x := dense[j]
			if len(p.mean) > 0 {
				x -= p.mean[j]
			}
			sum += c * x
		}
		out[i] = sum
	}
	return domain.Point3D{X: out[0], Y: out[1], Z: out[2]}, nil
}
