package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentiment/internal/domain"
	"sentiment/internal/resultstore/memory"
)

func seeded(t *testing.T) *memory.Storage {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStorage()
	require.NoError(t, s.Save(ctx, "old", []domain.EvaluationResult{
		{ConfigID: "dt-depth-5", Model: "Decision Tree, Default Parameters", Split: domain.Dev, Metric: "AUC", Score: 0.6},
	}))
	require.NoError(t, s.Save(ctx, "new", []domain.EvaluationResult{
		{ConfigID: "dt-depth-5", Model: "Decision Tree, Default Parameters", Split: domain.Dev, Metric: "AUC", Score: 0.75},
		{ConfigID: "dt-depth-5", Model: "Decision Tree, Default Parameters", Split: domain.Train, Metric: "AUC", Score: 1},
		{ConfigID: "rf-trees-20", Model: "Random Forest, Default Parameters (numTrees = 20)", Split: domain.Dev, Metric: "AUC", Score: 0.8},
	}))
	return s
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func TestOpensRequestedRun(t *testing.T) {
	m := New(seeded(t), "new", "Vocabulary size after filtering: 40")
	assert.Len(t, m.results, 3)
	assert.Equal(t, "Loading...", m.View())

	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	view := m.View()
	assert.Contains(t, view, "Vocabulary size after filtering: 40")
	assert.Contains(t, view, "Decision Tree, Default Parameters, Development Set, AUC: 0.75")
	assert.Contains(t, view, "train - dev: 0.25")
}

func TestFilterAndCursor(t *testing.T) {
	m := New(seeded(t), "new", "")
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m.input.SetValue("forest")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Len(t, m.results, 1)
	assert.Equal(t, "rf-trees-20", m.results[0].ConfigID)

	m.input.SetValue("")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Len(t, m.results, 3)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 2, m.cursor)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, m.cursor)
}

func TestTabSwitchesRuns(t *testing.T) {
	m := New(seeded(t), "new", "")
	assert.Equal(t, 1, m.run)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, m.run)
	require.Len(t, m.results, 1)
	assert.Equal(t, 0.6, m.results[0].Score)
	assert.Contains(t, m.status, "old")
}

func TestQuit(t *testing.T) {
	m := New(seeded(t), "new", "")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
