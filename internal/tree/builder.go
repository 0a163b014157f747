package tree

import (
	"math/rand"
	"sort"

	"sentiment/internal/domain"
)

type node struct {
	leaf      bool
	feature   int
	threshold float64
	gain      float64
	stats     [2]float64
	left      *node
	right     *node
}

func (n *node) find(v domain.SparseVector) *node {
	for !n.leaf {
		if v.Get(n.feature) <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n
}

func (n *node) probability() float64 {
	total := n.stats[0] + n.stats[1]
	if total == 0 {
		return 0.5
	}
	return n.stats[1] / total
}

func (n *node) depth() int {
	if n.leaf {
		return 0
	}
	return 1 + max(n.left.depth(), n.right.depth())
}

func (n *node) size() int {
	if n.leaf {
		return 1
	}
	return 1 + n.left.size() + n.right.size()
}

type candidate struct {
	feature int
	bin     int
	gain    float64
}

// builder grows one tree. It is not safe for concurrent use; forests create
// one builder per tree sharing the read-only bins and rows.
type builder struct {
	bins         *binner
	rows         [][]entry
	classes      []int
	weights      []float64
	numFeatures  int
	maxDepth     int
	minInstances float64
	minInfoGain  float64
	subset       int
	rng          *rand.Rand
}

func (b *builder) build(idx []int) *node {
	return b.grow(idx, 0)
}

func (b *builder) grow(idx []int, depth int) *node {
	stats := b.classStats(idx)
	n := &node{leaf: true, stats: stats}
	if depth >= b.maxDepth || stats[0] == 0 || stats[1] == 0 || stats[0]+stats[1] < 2*b.minInstances {
		return n
	}
	best, ok := b.bestSplit(idx, stats)
	if !ok {
		return n
	}
	left, right := b.partition(idx, best.feature, best.bin)
	n.leaf = false
	n.feature = best.feature
	n.threshold = b.bins.thresholds[best.feature][best.bin]
	n.gain = best.gain
	n.left = b.grow(left, depth+1)
	n.right = b.grow(right, depth+1)
	return n
}

func (b *builder) classStats(idx []int) [2]float64 {
	var s [2]float64
	for _, r := range idx {
		s[b.classes[r]] += b.weights[r]
	}
	return s
}

func (b *builder) bestSplit(idx []int, stats [2]float64) (candidate, bool) {
	allowed := b.sampleFeatures()
	hist := make(map[int][][2]float64)
	for _, r := range idx {
		w := b.weights[r]
		y := b.classes[r]
		for _, e := range b.rows[r] {
			if allowed != nil {
				if _, ok := allowed[e.feature]; !ok {
					continue
				}
			}
			h := hist[e.feature]
			if h == nil {
				h = make([][2]float64, len(b.bins.thresholds[e.feature])+1)
				hist[e.feature] = h
			}
			h[e.bin][y] += w
		}
	}
	features := make([]int, 0, len(hist))
	for f := range hist {
		features = append(features, f)
	}
	sort.Ints(features)

	total := stats[0] + stats[1]
	parent := gini(stats)
	var best candidate
	found := false
	for _, f := range features {
		thr := b.bins.thresholds[f]
		if len(thr) == 0 {
			continue
		}
		h := hist[f]
		// rows without a stored entry for f hold zero
		var stored [2]float64
		for _, c := range h {
			stored[0] += c[0]
			stored[1] += c[1]
		}
		zb := b.bins.zeroBin[f]
		h[zb][0] += stats[0] - stored[0]
		h[zb][1] += stats[1] - stored[1]

		var left [2]float64
		for bin := 0; bin < len(thr); bin++ {
			left[0] += h[bin][0]
			left[1] += h[bin][1]
			right := [2]float64{stats[0] - left[0], stats[1] - left[1]}
			wl := left[0] + left[1]
			wr := right[0] + right[1]
			if wl < b.minInstances || wr < b.minInstances {
				continue
			}
			gain := parent - wl/total*gini(left) - wr/total*gini(right)
			if gain <= b.minInfoGain || gain <= 1e-12 {
				continue
			}
			if !found || gain > best.gain {
				best = candidate{feature: f, bin: bin, gain: gain}
				found = true
			}
		}
	}
	return best, found
}

// sampleFeatures returns the features a node may split on, nil for all.
func (b *builder) sampleFeatures() map[int]struct{} {
	if b.subset <= 0 || b.subset >= b.numFeatures {
		return nil
	}
	chosen := make(map[int]struct{}, b.subset)
	for len(chosen) < b.subset {
		chosen[b.rng.Intn(b.numFeatures)] = struct{}{}
	}
	return chosen
}

func (b *builder) partition(idx []int, feature, bin int) (left, right []int) {
	for _, r := range idx {
		if b.binOf(r, feature) <= bin {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	return left, right
}

func (b *builder) binOf(r, feature int) int {
	row := b.rows[r]
	k := sort.Search(len(row), func(i int) bool { return row[i].feature >= feature })
	if k < len(row) && row[k].feature == feature {
		return row[k].bin
	}
	return b.bins.zeroBin[feature]
}

func gini(s [2]float64) float64 {
	total := s[0] + s[1]
	if total == 0 {
		return 0
	}
	p0 := s[0] / total
	p1 := s[1] / total
	return 1 - p0*p0 - p1*p1
}
