package tree

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"sentiment/internal/domain"
)

func vec(size int, entries map[int]float64) domain.SparseVector {
	return domain.NewSparseVector(size, entries)
}

// separable: feature 0 is set only on positive rows, feature 1 only on negative rows.
func separable(n int) Dataset {
	ds := Dataset{NumFeatures: 4}
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			ds.Features = append(ds.Features, vec(4, map[int]float64{0: 1 + float64(i%3), 3: 0.5}))
			ds.Labels = append(ds.Labels, domain.Positive)
		} else {
			ds.Features = append(ds.Features, vec(4, map[int]float64{1: 2, 3: 0.5}))
			ds.Labels = append(ds.Labels, domain.Negative)
		}
	}
	return ds
}

// noisy draws a 20-feature dataset where only feature 0 carries signal.
func noisy(n int, seed int64) Dataset {
	rng := rand.New(rand.NewSource(seed))
	ds := Dataset{NumFeatures: 20}
	for i := 0; i < n; i++ {
		entries := map[int]float64{}
		label := domain.Negative
		if rng.Float64() < 0.5 {
			label = domain.Positive
			entries[0] = 1 + rng.Float64()
		}
		for k := 0; k < 4; k++ {
			entries[1+rng.Intn(19)] = rng.Float64()
		}
		ds.Features = append(ds.Features, vec(20, entries))
		ds.Labels = append(ds.Labels, label)
	}
	return ds
}

func TestFitDecisionTreeSeparable(t *testing.T) {
	ds := separable(40)
	m, err := FitDecisionTree(ds, DefaultDecisionTreeParams())
	require.NoError(t, err)

	for i, v := range ds.Features {
		assert.Equal(t, ds.Labels[i], m.Probability(v))
	}
	assert.Equal(t, 1, m.Depth())
	assert.Equal(t, 3, m.NumNodes())
	assert.Equal(t, "DecisionTree(maxDepth=5)", m.Name())
}

func TestFitDecisionTreeNeedsTwoLevels(t *testing.T) {
	// positive iff exactly one of features 0 and 1 is set
	ds := Dataset{NumFeatures: 2}
	patterns := []struct {
		e     map[int]float64
		label float64
	}{
		{map[int]float64{}, domain.Negative},
		{map[int]float64{0: 1}, domain.Positive},
		{map[int]float64{1: 1}, domain.Positive},
		{map[int]float64{0: 1, 1: 1}, domain.Negative},
	}
	for i := 0; i < 5; i++ {
		for _, p := range patterns {
			ds.Features = append(ds.Features, vec(2, p.e))
			ds.Labels = append(ds.Labels, p.label)
		}
	}
	// an unbalanced extra row gives the root split a positive gain
	ds.Features = append(ds.Features, vec(2, map[int]float64{0: 1}))
	ds.Labels = append(ds.Labels, domain.Positive)

	shallow, err := FitDecisionTree(ds, DecisionTreeParams{MaxDepth: 1, MaxBins: 32, MinInstancesPerNode: 1})
	require.NoError(t, err)
	deep, err := FitDecisionTree(ds, DecisionTreeParams{MaxDepth: 2, MaxBins: 32, MinInstancesPerNode: 1})
	require.NoError(t, err)

	assert.LessOrEqual(t, shallow.Depth(), 1)
	assert.Equal(t, 2, deep.Depth())
	for _, p := range patterns {
		assert.Equal(t, p.label, deep.Probability(vec(2, p.e)))
	}
}

func TestFitDecisionTreeRespectsMaxDepth(t *testing.T) {
	ds := noisy(300, 3)
	for _, depth := range []int{0, 1, 2, 3, 5} {
		m, err := FitDecisionTree(ds, DecisionTreeParams{MaxDepth: depth, MaxBins: 32, MinInstancesPerNode: 1})
		require.NoError(t, err)
		assert.LessOrEqual(t, m.Depth(), depth)
	}
}

func TestFitDecisionTreeZeroDepthPredictsPrior(t *testing.T) {
	ds := separable(10)
	m, err := FitDecisionTree(ds, DecisionTreeParams{MaxDepth: 0, MaxBins: 32, MinInstancesPerNode: 1})
	require.NoError(t, err)
	assert.Equal(t, 0.5, m.Probability(ds.Features[0]))
	assert.Equal(t, 1, m.NumNodes())
}

func TestFitDecisionTreeSingleClass(t *testing.T) {
	ds := Dataset{
		NumFeatures: 1,
		Features:    []domain.SparseVector{vec(1, map[int]float64{0: 1}), vec(1, nil)},
		Labels:      []float64{domain.Positive, domain.Positive},
	}
	m, err := FitDecisionTree(ds, DefaultDecisionTreeParams())
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.Probability(vec(1, nil)))
	assert.Equal(t, 0, m.Depth())
}

func TestFitDecisionTreeNoFeatures(t *testing.T) {
	ds := Dataset{
		Features: []domain.SparseVector{{}, {}, {}},
		Labels:   []float64{domain.Positive, domain.Negative, domain.Negative},
	}
	m, err := FitDecisionTree(ds, DefaultDecisionTreeParams())
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, m.Probability(domain.SparseVector{}), 1e-12)
}

func TestFitDecisionTreeErrors(t *testing.T) {
	_, err := FitDecisionTree(Dataset{}, DefaultDecisionTreeParams())
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = FitDecisionTree(Dataset{Features: []domain.SparseVector{{}}, Labels: nil}, DefaultDecisionTreeParams())
	assert.Error(t, err)

	_, err = FitDecisionTree(Dataset{Features: []domain.SparseVector{{}}, Labels: []float64{2}}, DefaultDecisionTreeParams())
	assert.Error(t, err)

	_, err = FitDecisionTree(separable(4), DecisionTreeParams{MaxDepth: 3, MaxBins: 1, MinInstancesPerNode: 1})
	assert.Error(t, err)
}

func TestFitRandomForestSeparable(t *testing.T) {
	defer goleak.VerifyNone(t)

	ds := separable(60)
	p := DefaultRandomForestParams()
	p.FeatureSubset = "all"
	p.Seed = 42
	m, err := FitRandomForest(context.Background(), ds, p)
	require.NoError(t, err)
	assert.Equal(t, 20, m.NumTrees())

	for i, v := range ds.Features {
		if ds.Labels[i] == domain.Positive {
			assert.Greater(t, m.Probability(v), 0.5)
		} else {
			assert.Less(t, m.Probability(v), 0.5)
		}
	}
}

func TestFitRandomForestDeterministic(t *testing.T) {
	defer goleak.VerifyNone(t)

	ds := noisy(200, 9)
	p := DefaultRandomForestParams()
	p.Seed = 42
	p.Workers = 4
	a, err := FitRandomForest(context.Background(), ds, p)
	require.NoError(t, err)
	p.Workers = 1
	b, err := FitRandomForest(context.Background(), ds, p)
	require.NoError(t, err)

	for _, v := range ds.Features {
		assert.Equal(t, a.Probability(v), b.Probability(v))
	}
}

func TestFitRandomForestProbabilityRange(t *testing.T) {
	ds := noisy(150, 5)
	p := DefaultRandomForestParams()
	p.NumTrees = 7
	m, err := FitRandomForest(context.Background(), ds, p)
	require.NoError(t, err)
	for _, v := range ds.Features {
		pr := m.Probability(v)
		assert.GreaterOrEqual(t, pr, 0.0)
		assert.LessOrEqual(t, pr, 1.0)
	}
}

func TestFitRandomForestCanceled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FitRandomForest(ctx, noisy(50, 1), DefaultRandomForestParams())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFitRandomForestErrors(t *testing.T) {
	ctx := context.Background()
	_, err := FitRandomForest(ctx, Dataset{}, DefaultRandomForestParams())
	assert.ErrorIs(t, err, ErrEmptyDataset)

	p := DefaultRandomForestParams()
	p.NumTrees = 0
	_, err = FitRandomForest(ctx, separable(4), p)
	assert.Error(t, err)

	p = DefaultRandomForestParams()
	p.SubsamplingRate = 1.5
	_, err = FitRandomForest(ctx, separable(4), p)
	assert.Error(t, err)

	p = DefaultRandomForestParams()
	p.FeatureSubset = "most"
	_, err = FitRandomForest(ctx, separable(4), p)
	assert.Error(t, err)
}

func TestFeatureSubsetSize(t *testing.T) {
	cases := []struct {
		strategy string
		n, trees int
		want     int
	}{
		{"auto", 100, 1, 100},
		{"auto", 100, 20, 10},
		{"sqrt", 10, 5, 4},
		{"all", 10, 5, 10},
		{"log2", 10, 5, 4},
		{"log2", 1, 5, 1},
		{"onethird", 10, 5, 4},
		{"AUTO", 0, 5, 0},
	}
	for _, c := range cases {
		got, err := featureSubsetSize(c.strategy, c.n, c.trees)
		require.NoError(t, err)
		assert.Equalf(t, c.want, got, "%s n=%d trees=%d", c.strategy, c.n, c.trees)
	}
}

func TestFindThresholds(t *testing.T) {
	assert.Nil(t, findThresholds(nil, 10, 32))
	assert.Nil(t, findThresholds([]float64{2, 2}, 0, 32))
	assert.Equal(t, []float64{0.5, 1.5}, findThresholds([]float64{1, 2}, 3, 32))

	many := make([]float64, 1000)
	for i := range many {
		many[i] = float64(i + 1)
	}
	thr := findThresholds(many, 0, 8)
	assert.LessOrEqual(t, len(thr), 7)
	assert.NotEmpty(t, thr)
	assert.IsIncreasing(t, thr)
}

func TestBinnerAgreesWithThresholds(t *testing.T) {
	ds := noisy(100, 2)
	bins := newBinner(ds, 8)
	rows := bins.binRows(ds.Features)
	for r, v := range ds.Features {
		for _, e := range rows[r] {
			x := v.Get(e.feature)
			thr := bins.thresholds[e.feature]
			if e.bin < len(thr) {
				assert.LessOrEqual(t, x, thr[e.bin])
			}
			if e.bin > 0 {
				assert.Greater(t, x, thr[e.bin-1])
			}
		}
	}
}

func TestFromRecords(t *testing.T) {
	records := []domain.Record{
		{Review: domain.Review{Label: domain.Positive}, Features: vec(5, map[int]float64{1: 1})},
		{Review: domain.Review{Label: domain.Negative}, Features: vec(5, nil)},
	}
	ds := FromRecords(records)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, 5, ds.NumFeatures)
	assert.Equal(t, []float64{1, 0}, ds.Labels)
}
