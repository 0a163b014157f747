// Package split partitions labeled records into train/dev/test subsets.
package split

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"sentiment/internal/domain"
)

// ErrInvalidWeights is returned when split proportions cannot be normalised.
var ErrInvalidWeights = errors.New("split: weights must be non-negative with a positive sum")

// Random assigns every item to one of len(weights) buckets. Weights are
// normalised to sum to one and each item draws a single uniform number from a
// source seeded with seed, so the same seed and input order always produce the
// same partition. Bucket sizes only approximate the proportions.
func Random[T any](items []T, weights []float64, seed int64) ([][]T, error) {
	if len(weights) == 0 {
		return nil, ErrInvalidWeights
	}
	sum := 0.0
	for _, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, ErrInvalidWeights
		}
		sum += w
	}
	if sum <= 0 {
		return nil, ErrInvalidWeights
	}
	bounds := make([]float64, len(weights))
	acc := 0.0
	for i, w := range weights {
		acc += w / sum
		bounds[i] = acc
	}
	bounds[len(bounds)-1] = 1

	rng := rand.New(rand.NewSource(seed))
	out := make([][]T, len(weights))
	for _, item := range items {
		u := rng.Float64()
		b := 0
		for b < len(bounds)-1 && u >= bounds[b] {
			b++
		}
		out[b] = append(out[b], item)
	}
	return out, nil
}

// Stats is the size and class distribution of one split.
type Stats struct {
	Name     domain.SplitName
	Total    int
	Negative int
	Positive int
}

// Count computes Stats for records.
func Count(name domain.SplitName, records []domain.Record) Stats {
	s := Stats{Name: name, Total: len(records)}
	for _, r := range records {
		if r.Label == domain.Positive {
			s.Positive++
		} else {
			s.Negative++
		}
	}
	return s
}

// PositivePercent returns the share of positive records in percent, rounded to
// two decimals. ok is false for an empty split.
func (s Stats) PositivePercent() (pct float64, ok bool) {
	if s.Total == 0 {
		return 0, false
	}
	p := float64(s.Positive) / float64(s.Total) * 100
	return math.Round(p*100) / 100, true
}

// Distribution formats PositivePercent for the report, "N/A" when undefined.
func (s Stats) Distribution() string {
	p, ok := s.PositivePercent()
	if !ok {
		return "N/A"
	}
	return domain.FormatDecimal(p) + " %"
}

// String is a compact summary for logs.
func (s Stats) String() string {
	return fmt.Sprintf("%s: total=%d neg=%d pos=%d", s.Name, s.Total, s.Negative, s.Positive)
}
