// Package report prints the run report, one fact per line.
package report

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"sentiment/internal/domain"
	"sentiment/internal/split"
)

// Writer formats report lines onto an io.Writer. It is safe for concurrent use.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Writer that prints to w.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

func (w *Writer) println(format string, args ...any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := fmt.Fprintf(w.w, format+"\n", args...)
	return err
}

// Prefix is the short split name that starts the size and distribution lines.
func Prefix(s domain.SplitName) string {
	switch s {
	case domain.Train:
		return "Train"
	case domain.Dev:
		return "Dev"
	case domain.Test:
		return "Test"
	default:
		return strings.ToUpper(string(s[:1])) + string(s[1:])
	}
}

// Sizes prints "<Split>: n" for every split.
func (w *Writer) Sizes(stats []split.Stats) error {
	for _, s := range stats {
		if err := w.println("%s: %d", Prefix(s.Name), s.Total); err != nil {
			return err
		}
	}
	return nil
}

// Distributions prints the negative and positive counts and the positive
// share of every split.
func (w *Writer) Distributions(stats []split.Stats) error {
	for _, s := range stats {
		p := Prefix(s.Name)
		if err := w.println("%s Negative: %d", p, s.Negative); err != nil {
			return err
		}
		if err := w.println("%s Positive: %d", p, s.Positive); err != nil {
			return err
		}
		if err := w.println("%s Distribution: %s", p, s.Distribution()); err != nil {
			return err
		}
	}
	return nil
}

// VocabularySize prints the size of the filtered vocabulary.
func (w *Writer) VocabularySize(n int) error {
	return w.println("Vocabulary size after filtering: %d", n)
}

// Result prints one evaluation line.
func (w *Writer) Result(r domain.EvaluationResult) error {
	return w.println("%s", FormatResult(r))
}

// FormatResult renders r as "<label>, <split title>, <metric>: <score>".
func FormatResult(r domain.EvaluationResult) string {
	return fmt.Sprintf("%s, %s, %s: %s", r.Model, r.Split.Title(), r.Metric, FormatScore(r.Score))
}

// FormatScore prints a score the way the report does, so 1 prints as "1.0".
func FormatScore(v float64) string { return domain.FormatDecimal(v) }
