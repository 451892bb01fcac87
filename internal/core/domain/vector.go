package domain

import "sort"

// SparseVector holds the non-zero entries of a fixed-dimension feature vector. Indices are
// ascending and unique.
type SparseVector struct {
	Dim     int
	Indices []int
	Values  []float64
}

// NewSparseVector builds a vector from index→weight pairs. Zero weights are dropped.
func NewSparseVector(dim int, weights map[int]float64) SparseVector {
	indices := make([]int, 0, len(weights))
	for idx, w := range weights {
		if w == 0 {
			continue
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	values := make([]float64, 0, len(indices))
	for _, idx := range indices {
		values = append(values, weights[idx])
	}
	return SparseVector{Dim: dim, Indices: indices, Values: values}
}

// Dense expands the vector to its full dimension.
func (v SparseVector) Dense() []float64 {
	out := make([]float64, v.Dim)
	for i, idx := range v.Indices {
		if idx >= 0 && idx < v.Dim {
			out[idx] = v.Values[i]
		}
	}
	return out
}

func (v SparseVector) NNZ() int {
	return len(v.Indices)
}
