package tree

import (
	"sort"

	"sentiment/internal/domain"
)

// binner holds per-feature split thresholds. A value x falls into bin b, the
// smallest index with x <= thresholds[b], or len(thresholds) when none.
type binner struct {
	thresholds [][]float64
	zeroBin    []int
}

type entry struct {
	feature int
	bin     int
}

func newBinner(ds Dataset, maxBins int) *binner {
	n := ds.Len()
	values := make([][]float64, ds.NumFeatures)
	for _, v := range ds.Features {
		for k, i := range v.Indices {
			if i < ds.NumFeatures {
				values[i] = append(values[i], v.Values[k])
			}
		}
	}
	b := &binner{
		thresholds: make([][]float64, ds.NumFeatures),
		zeroBin:    make([]int, ds.NumFeatures),
	}
	for f, vals := range values {
		b.thresholds[f] = findThresholds(vals, n-len(vals), maxBins)
		b.zeroBin[f] = b.bin(f, 0)
	}
	return b
}

// findThresholds picks at most maxBins-1 split points for one feature. With few
// distinct values every midpoint is a candidate; otherwise the midpoints are
// spaced by approximately equal counts.
func findThresholds(nonzero []float64, zeros, maxBins int) []float64 {
	counts := make(map[float64]int, len(nonzero)+1)
	for _, v := range nonzero {
		counts[v]++
	}
	if zeros > 0 {
		counts[0] += zeros
	}
	if len(counts) < 2 {
		return nil
	}
	keys := make([]float64, 0, len(counts))
	total := 0
	for v, c := range counts {
		keys = append(keys, v)
		total += c
	}
	sort.Float64s(keys)

	if len(keys) <= maxBins {
		out := make([]float64, len(keys)-1)
		for i := range out {
			out[i] = (keys[i] + keys[i+1]) / 2
		}
		return out
	}
	stride := float64(total) / float64(maxBins)
	target := stride
	cum := 0
	out := make([]float64, 0, maxBins-1)
	for i := 0; i < len(keys)-1 && len(out) < maxBins-1; i++ {
		cum += counts[keys[i]]
		if float64(cum) < target {
			continue
		}
		out = append(out, (keys[i]+keys[i+1])/2)
		for target <= float64(cum) {
			target += stride
		}
	}
	return out
}

func (b *binner) bin(feature int, x float64) int {
	return sort.SearchFloat64s(b.thresholds[feature], x)
}

// binRows converts every row into its stored (feature, bin) entries, in
// increasing feature order.
func (b *binner) binRows(features []domain.SparseVector) [][]entry {
	rows := make([][]entry, len(features))
	for r, v := range features {
		row := make([]entry, 0, len(v.Indices))
		for k, f := range v.Indices {
			if f >= len(b.thresholds) {
				continue
			}
			row = append(row, entry{feature: f, bin: b.bin(f, v.Values[k])})
		}
		rows[r] = row
	}
	return rows
}
