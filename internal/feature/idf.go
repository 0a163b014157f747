package feature

import (
	"math"

	"sentiment/internal/domain"
)

// IDFModel holds inverse document frequency weights fitted on count vectors.
type IDFModel struct {
	idf     []float64
	numDocs int
}

// FitIDF computes idf(t) = ln((N+1)/(df(t)+1)) over vectors of dimension size.
// Terms seen in fewer than minDocFreq documents get weight zero.
func FitIDF(vectors []domain.SparseVector, size, minDocFreq int) *IDFModel {
	df := make([]int, size)
	for _, v := range vectors {
		for k, i := range v.Indices {
			if i < size && v.Values[k] > 0 {
				df[i]++
			}
		}
	}
	n := float64(len(vectors))
	idf := make([]float64, size)
	for i, d := range df {
		if d < minDocFreq {
			continue
		}
		idf[i] = math.Log((n + 1) / (float64(d) + 1))
	}
	return &IDFModel{idf: idf, numDocs: len(vectors)}
}

// Weights returns a copy of the idf vector.
func (m *IDFModel) Weights() []float64 {
	out := make([]float64, len(m.idf))
	copy(out, m.idf)
	return out
}

// Transform scales the counts in v by their idf weight.
func (m *IDFModel) Transform(v domain.SparseVector) domain.SparseVector {
	out := domain.SparseVector{Size: v.Size}
	for k, i := range v.Indices {
		if i >= len(m.idf) {
			continue
		}
		w := v.Values[k] * m.idf[i]
		if w == 0 {
			continue
		}
		out.Indices = append(out.Indices, i)
		out.Values = append(out.Values, w)
	}
	return out
}
