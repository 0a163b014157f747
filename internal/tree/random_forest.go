package tree

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"sentiment/internal/domain"
)

// RandomForestParams configures FitRandomForest.
type RandomForestParams struct {
	NumTrees            int
	MaxDepth            int
	MaxBins             int
	MinInstancesPerNode int
	MinInfoGain         float64
	// FeatureSubset is one of auto, all, sqrt, log2, onethird.
	FeatureSubset   string
	SubsamplingRate float64
	Seed            int64
	// Workers bounds the number of trees grown at once. Zero means GOMAXPROCS.
	Workers int
}

// DefaultRandomForestParams mirrors the usual engine defaults.
func DefaultRandomForestParams() RandomForestParams {
	return RandomForestParams{
		NumTrees:            20,
		MaxDepth:            5,
		MaxBins:             32,
		MinInstancesPerNode: 1,
		FeatureSubset:       "auto",
		SubsamplingRate:     1.0,
	}
}

func (p RandomForestParams) validate() error {
	if p.NumTrees < 1 {
		return errors.New("tree: num trees must be >= 1")
	}
	if p.SubsamplingRate <= 0 || p.SubsamplingRate > 1 {
		return errors.New("tree: subsampling rate must be in (0, 1]")
	}
	return p.treeParams().validate()
}

func (p RandomForestParams) treeParams() DecisionTreeParams {
	return DecisionTreeParams{
		MaxDepth:            p.MaxDepth,
		MaxBins:             p.MaxBins,
		MinInstancesPerNode: p.MinInstancesPerNode,
		MinInfoGain:         p.MinInfoGain,
		Seed:                p.Seed,
	}
}

// RandomForestModel averages the leaf probabilities of independent trees.
type RandomForestModel struct {
	trees  []*node
	params RandomForestParams
}

// FitRandomForest grows p.NumTrees trees concurrently. Each tree sees a
// Poisson-weighted bootstrap sample of the rows (when more than one tree is
// grown) and considers a random feature subset at every node.
func FitRandomForest(ctx context.Context, ds Dataset, p RandomForestParams) (*RandomForestModel, error) {
	if err := ds.validate(); err != nil {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	subset, err := featureSubsetSize(p.FeatureSubset, ds.NumFeatures, p.NumTrees)
	if err != nil {
		return nil, err
	}
	bins := newBinner(ds, p.MaxBins)
	rows := bins.binRows(ds.Features)
	classes := ds.classes()
	bootstrap := p.NumTrees > 1

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	trees := make([]*node, p.NumTrees)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for t := 0; t < p.NumTrees; t++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(p.Seed + int64(t)))
			weights := sampleWeights(rng, len(rows), p.SubsamplingRate, bootstrap)
			idx := make([]int, 0, len(rows))
			for r, w := range weights {
				if w > 0 {
					idx = append(idx, r)
				}
			}
			b := &builder{
				bins:         bins,
				rows:         rows,
				classes:      classes,
				weights:      weights,
				numFeatures:  ds.NumFeatures,
				maxDepth:     p.MaxDepth,
				minInstances: float64(p.MinInstancesPerNode),
				minInfoGain:  p.MinInfoGain,
				subset:       subset,
				rng:          rng,
			}
			trees[t] = b.build(idx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &RandomForestModel{trees: trees, params: p}, nil
}

// Name identifies the model and its hyperparameters.
func (m *RandomForestModel) Name() string {
	return fmt.Sprintf("RandomForest(numTrees=%d,maxDepth=%d)", m.params.NumTrees, m.params.MaxDepth)
}

// Probability averages the positive-class probability over all trees.
func (m *RandomForestModel) Probability(v domain.SparseVector) float64 {
	sum := 0.0
	for _, t := range m.trees {
		sum += t.find(v).probability()
	}
	return sum / float64(len(m.trees))
}

// NumTrees returns the number of fitted trees.
func (m *RandomForestModel) NumTrees() int { return len(m.trees) }

func sampleWeights(rng *rand.Rand, n int, rate float64, withReplacement bool) []float64 {
	w := make([]float64, n)
	for i := range w {
		switch {
		case withReplacement:
			w[i] = float64(poisson(rng, rate))
		case rate < 1:
			if rng.Float64() < rate {
				w[i] = 1
			}
		default:
			w[i] = 1
		}
	}
	return w
}

func poisson(rng *rand.Rand, lambda float64) int {
	limit := math.Exp(-lambda)
	k := 0
	p := rng.Float64()
	for p > limit {
		k++
		p *= rng.Float64()
	}
	return k
}

func featureSubsetSize(strategy string, numFeatures, numTrees int) (int, error) {
	n := float64(numFeatures)
	switch strings.ToLower(strategy) {
	case "", "auto":
		if numTrees == 1 {
			return numFeatures, nil
		}
		return int(math.Ceil(math.Sqrt(n))), nil
	case "all":
		return numFeatures, nil
	case "sqrt":
		return int(math.Ceil(math.Sqrt(n))), nil
	case "log2":
		if numFeatures <= 1 {
			return numFeatures, nil
		}
		return max(1, int(math.Ceil(math.Log2(n)))), nil
	case "onethird":
		return int(math.Ceil(n / 3)), nil
	default:
		return 0, fmt.Errorf("tree: unknown feature subset strategy %q", strategy)
	}
}
