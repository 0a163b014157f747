package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"sentiment/internal/domain"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadLabelsAndOrder(t *testing.T) {
	defer goleak.VerifyNone(t)
	// "pos" in the root must not leak into the labels.
	root := filepath.Join(t.TempDir(), "positively")
	writeFile(t, filepath.Join(root, "pos", "b.txt"), "great film")
	writeFile(t, filepath.Join(root, "pos", "a.txt"), "loved it")
	writeFile(t, filepath.Join(root, "neg", "c.txt"), "awful")
	writeFile(t, filepath.Join(root, "README"), "not a review")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "neg", "nested"), 0o755))

	reviews, err := Load(context.Background(), NewLocalSource(), root, 2)
	require.NoError(t, err)
	require.Len(t, reviews, 3)

	assert.Equal(t, filepath.Join(root, "neg", "c.txt"), reviews[0].Path)
	assert.Equal(t, domain.Negative, reviews[0].Label)
	assert.Equal(t, "awful", reviews[0].Text)
	assert.Equal(t, filepath.Join(root, "pos", "a.txt"), reviews[1].Path)
	assert.Equal(t, domain.Positive, reviews[1].Label)
	assert.Equal(t, "loved it", reviews[1].Text)
	assert.Equal(t, domain.Positive, reviews[2].Label)
}

func TestLoadEmpty(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pos"), 0o755))

	_, err := Load(context.Background(), NewLocalSource(), root, 0)
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestLoadMissingRoot(t *testing.T) {
	_, err := Load(context.Background(), NewLocalSource(), filepath.Join(t.TempDir(), "missing"), 0)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, NewLocalSource(), t.TempDir(), 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, domain.Positive, Label("pos"))
	assert.Equal(t, domain.Positive, Label("reviews_pos"))
	assert.Equal(t, domain.Negative, Label("neg"))
	assert.Equal(t, domain.Negative, Label("unsup"))
}

func TestLocalSourceJoinAndMissingFile(t *testing.T) {
	src := NewLocalSource()
	assert.Equal(t, filepath.Join("a", "b", "c.txt"), src.Join("a", "b", "c.txt"))
	_, err := src.ReadFile(context.Background(), filepath.Join(t.TempDir(), "none.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoError(t, src.Close())
}
