package tree

import (
	"errors"
	"fmt"
	"math/rand"

	"sentiment/internal/domain"
)

// DecisionTreeParams configures FitDecisionTree.
type DecisionTreeParams struct {
	MaxDepth            int
	MaxBins             int
	MinInstancesPerNode int
	MinInfoGain         float64
	Seed                int64
}

// DefaultDecisionTreeParams mirrors the usual engine defaults.
func DefaultDecisionTreeParams() DecisionTreeParams {
	return DecisionTreeParams{MaxDepth: 5, MaxBins: 32, MinInstancesPerNode: 1}
}

func (p DecisionTreeParams) validate() error {
	if p.MaxDepth < 0 {
		return errors.New("tree: max depth must be >= 0")
	}
	if p.MaxBins < 2 {
		return errors.New("tree: max bins must be >= 2")
	}
	if p.MinInstancesPerNode < 1 {
		return errors.New("tree: min instances per node must be >= 1")
	}
	return nil
}

// DecisionTreeModel is a fitted binary classification tree.
type DecisionTreeModel struct {
	root   *node
	params DecisionTreeParams
}

// FitDecisionTree grows a single tree on every row of ds.
func FitDecisionTree(ds Dataset, p DecisionTreeParams) (*DecisionTreeModel, error) {
	if err := ds.validate(); err != nil {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	bins := newBinner(ds, p.MaxBins)
	weights := make([]float64, ds.Len())
	idx := make([]int, ds.Len())
	for i := range weights {
		weights[i] = 1
		idx[i] = i
	}
	b := &builder{
		bins:         bins,
		rows:         bins.binRows(ds.Features),
		classes:      ds.classes(),
		weights:      weights,
		numFeatures:  ds.NumFeatures,
		maxDepth:     p.MaxDepth,
		minInstances: float64(p.MinInstancesPerNode),
		minInfoGain:  p.MinInfoGain,
		rng:          rand.New(rand.NewSource(p.Seed)),
	}
	return &DecisionTreeModel{root: b.build(idx), params: p}, nil
}

// Name identifies the model and its hyperparameters.
func (m *DecisionTreeModel) Name() string {
	return fmt.Sprintf("DecisionTree(maxDepth=%d)", m.params.MaxDepth)
}

// Probability returns the share of positive training rows in the leaf v reaches.
func (m *DecisionTreeModel) Probability(v domain.SparseVector) float64 {
	return m.root.find(v).probability()
}

// Depth returns the depth of the fitted tree. A single leaf has depth 0.
func (m *DecisionTreeModel) Depth() int { return m.root.depth() }

// NumNodes returns the number of nodes, leaves included.
func (m *DecisionTreeModel) NumNodes() int { return m.root.size() }
