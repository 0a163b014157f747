package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiresOneArgument(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())

	cmd = newRootCmd(&out)
	cmd.SetArgs([]string{"a", "b"})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}

func TestRunWithSQLiteStore(t *testing.T) {
	base := t.TempDir()
	for _, class := range []string{"pos", "neg"} {
		dir := filepath.Join(base, "reviews", class)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		for d := 0; d < 6; d++ {
			words := []string{"the", "movie", "was", class + "word", class + "feeling", fmt.Sprintf("u%s%d", class, d)}
			require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("%d.txt", d)), []byte(strings.Join(words, " ")), 0o644))
		}
	}
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cfgBody := fmt.Sprintf(`corpus:
  base_path: %s
vocabulary:
  stop_words: 3
random_forest:
  num_trees: 3
  tuned_num_trees: [5]
final:
  num_trees: 5
report:
  store: sqlite
  sqlite_path: %s
`, base, filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgBody), 0o644))

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{"--config", cfgPath, "reviews"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Vocabulary size after filtering: ")
	assert.Equal(t, 1, strings.Count(out.String(), ", Test Set, AUC: "))
}

func TestMissingCorpusFails(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("corpus:\n  base_path: "+t.TempDir()+"\n"), 0o644))

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{"--config", cfgPath, "missing"})
	assert.Error(t, cmd.Execute())
}

func TestMissingConfigFileFails(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "typo.yaml"), "reviews"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, out.String())
}
