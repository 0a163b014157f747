package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sentiment/internal/domain"
	"sentiment/internal/report"
)

// ResultsPort is the TUI-facing subset of a result store.
type ResultsPort interface {
	Runs(ctx context.Context) ([]string, error)
	List(ctx context.Context, runID string) ([]domain.EvaluationResult, error)
}

// Model is the Bubble Tea model of the results browser.
type Model struct {
	store    ResultsPort
	input    textinput.Model
	viewport viewport.Model
	runs     []string
	run      int
	all      []domain.EvaluationResult
	results  []domain.EvaluationResult
	summary  string
	status   string
	filter   string
	cursor   int
	ready    bool
}

// New creates a browser opened on runID. summary is shown under the header.
func New(store ResultsPort, runID, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "filter> "
	ti.Placeholder = "model, split or config id; Enter to apply"
	ti.Focus()
	ti.CharLimit = 0
	m := Model{store: store, input: ti, viewport: viewport.New(0, 0), summary: summary}

	runs, err := store.Runs(context.Background())
	if err != nil {
		m.status = "Error: " + err.Error()
		return m
	}
	m.runs = runs
	for i, r := range runs {
		if r == runID {
			m.run = i
		}
	}
	m.load()
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, fh := filterBoxStyle.GetFrameSize()
		reserved := 2 + 1 + fh + 1 // header + summary, status, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.render())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			m.filter = strings.ToLower(strings.TrimSpace(m.input.Value()))
			m.applyFilter()
			m.viewport.SetContent(m.render())
			return m, nil
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.render())
			}
			return m, nil
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.render())
			}
			return m, nil
		case "tab", "shift+tab":
			if len(m.runs) > 1 {
				step := 1
				if msg.String() == "shift+tab" {
					step = len(m.runs) - 1
				}
				m.run = (m.run + step) % len(m.runs)
				m.load()
				m.viewport.SetContent(m.render())
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) load() {
	if len(m.runs) == 0 {
		m.status = "No stored runs."
		return
	}
	id := m.runs[m.run]
	rs, err := m.store.List(context.Background(), id)
	if err != nil {
		m.status = "Error: " + err.Error()
		m.all = nil
	} else {
		m.status = fmt.Sprintf("Run %s (%d/%d)", id, m.run+1, len(m.runs))
		m.all = rs
	}
	m.applyFilter()
}

func (m *Model) applyFilter() {
	m.cursor = 0
	if m.filter == "" {
		m.results = m.all
		return
	}
	m.results = nil
	for _, r := range m.all {
		hay := strings.ToLower(strings.Join([]string{r.Model, r.ConfigID, string(r.Split), r.Split.Title()}, " "))
		if strings.Contains(hay, m.filter) {
			m.results = append(m.results, r)
		}
	}
}

// View renders the TUI layout and the selected result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Sentiment Classification Results")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := filterBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) render() string {
	if len(m.results) == 0 {
		return "No results."
	}
	var b strings.Builder
	for i, r := range m.results {
		line := report.FormatResult(r)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(m.detail(m.results[m.cursor]))
	return b.String()
}

func (m Model) detail(r domain.EvaluationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "config:  %s\n", r.ConfigID)
	fmt.Fprintf(&b, "split:   %s\n", r.Split.Title())
	fmt.Fprintf(&b, "%-8s %s\n", r.Metric+":", report.FormatScore(r.Score))
	if r.Degenerate {
		b.WriteString(warnStyle.Render("metric undefined on this split (single class or empty)"))
		b.WriteByte('\n')
	}
	if gap, ok := overfitGap(m.all, r.ConfigID); ok {
		fmt.Fprintf(&b, "train - dev: %s\n", report.FormatScore(gap))
	}
	return b.String()
}

func overfitGap(results []domain.EvaluationResult, configID string) (float64, bool) {
	var tr, dv *domain.EvaluationResult
	for i := range results {
		r := &results[i]
		if r.ConfigID != configID {
			continue
		}
		switch r.Split {
		case domain.Train:
			tr = r
		case domain.Dev:
			dv = r
		}
	}
	if tr == nil || dv == nil {
		return 0, false
	}
	return tr.Score - dv.Score, true
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	filterBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
