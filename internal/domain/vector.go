package domain

import "sort"

// SparseVector is a fixed-size vector storing only its non-zero entries.
// Indices are strictly increasing.
type SparseVector struct {
	Size    int
	Indices []int
	Values  []float64
}

// NewSparseVector builds a vector from an index->value map, dropping zeros.
func NewSparseVector(size int, entries map[int]float64) SparseVector {
	idx := make([]int, 0, len(entries))
	for i, v := range entries {
		if v != 0 {
			idx = append(idx, i)
		}
	}
	sort.Ints(idx)
	vals := make([]float64, len(idx))
	for k, i := range idx {
		vals[k] = entries[i]
	}
	return SparseVector{Size: size, Indices: idx, Values: vals}
}

// Get returns the value at index i, zero when the entry is not stored.
func (v SparseVector) Get(i int) float64 {
	k := sort.SearchInts(v.Indices, i)
	if k < len(v.Indices) && v.Indices[k] == i {
		return v.Values[k]
	}
	return 0
}

// NNZ returns the number of stored entries.
func (v SparseVector) NNZ() int { return len(v.Indices) }
