package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentiment/internal/domain"
	"sentiment/internal/resultstore"
)

var _ resultstore.Storage = (*Storage)(nil)

func open(t *testing.T, path string) *Storage {
	t.Helper()
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Init(context.Background()))
	return s
}

func TestSaveListRuns(t *testing.T) {
	ctx := context.Background()
	s := open(t, ":memory:")
	defer s.Close()

	results := []domain.EvaluationResult{
		{ConfigID: "dt-depth-5", Model: "Decision Tree, Default Parameters", Split: domain.Dev, Metric: "AUC", Score: 0.81},
		{ConfigID: "dt-depth-5", Model: "Decision Tree, Default Parameters", Split: domain.Train, Metric: "AUC", Score: 0.5, Degenerate: true},
	}
	require.NoError(t, s.Save(ctx, "run-1", results))
	require.NoError(t, s.Save(ctx, "run-2", results[:1]))

	got, err := s.List(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, results, got)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1", "run-2"}, runs)

	_, err = s.List(ctx, "nope")
	assert.ErrorIs(t, err, resultstore.ErrUnknownRun)
}

func TestPersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "results.db")

	s := open(t, path)
	require.NoError(t, s.Save(ctx, "run-1", []domain.EvaluationResult{{ConfigID: "rf-trees-20", Split: domain.Dev, Score: 0.7}}))
	require.NoError(t, s.Close())

	s = open(t, path)
	defer s.Close()
	got, err := s.List(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "rf-trees-20", got[0].ConfigID)
	assert.Equal(t, domain.Dev, got[0].Split)
}

func TestSaveRejectsEmptyRunID(t *testing.T) {
	s := open(t, ":memory:")
	defer s.Close()
	assert.Error(t, s.Save(context.Background(), "", nil))
}
