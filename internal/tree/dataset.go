// Package tree fits binary decision trees and random forests on sparse
// feature vectors. Splits use Gini impurity over binned feature values.
package tree

import (
	"errors"
	"fmt"

	"sentiment/internal/domain"
)

// ErrEmptyDataset is returned when a model is fitted on zero rows.
var ErrEmptyDataset = errors.New("tree: cannot fit on an empty dataset")

// Dataset is a feature matrix with binary labels.
type Dataset struct {
	Features    []domain.SparseVector
	Labels      []float64
	NumFeatures int
}

// FromRecords builds a Dataset from the Features and Label of records.
func FromRecords(records []domain.Record) Dataset {
	ds := Dataset{
		Features: make([]domain.SparseVector, len(records)),
		Labels:   make([]float64, len(records)),
	}
	for i, r := range records {
		ds.Features[i] = r.Features
		ds.Labels[i] = r.Label
		if r.Features.Size > ds.NumFeatures {
			ds.NumFeatures = r.Features.Size
		}
	}
	return ds
}

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d.Features) }

func (d Dataset) validate() error {
	if len(d.Features) == 0 {
		return ErrEmptyDataset
	}
	if len(d.Labels) != len(d.Features) {
		return fmt.Errorf("tree: %d feature rows but %d labels", len(d.Features), len(d.Labels))
	}
	for i, l := range d.Labels {
		if l != domain.Negative && l != domain.Positive {
			return fmt.Errorf("tree: row %d has non-binary label %v", i, l)
		}
	}
	return nil
}

func (d Dataset) classes() []int {
	out := make([]int, len(d.Labels))
	for i, l := range d.Labels {
		if l == domain.Positive {
			out[i] = 1
		}
	}
	return out
}
