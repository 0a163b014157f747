package resultstore

import (
	"context"
	"errors"

	"sentiment/internal/domain"
)

// ErrUnknownRun is returned by List for a run id with no stored results.
var ErrUnknownRun = errors.New("resultstore: unknown run")

// Storage keeps evaluation results grouped by run id.
type Storage interface {
	Init(ctx context.Context) error
	Save(ctx context.Context, runID string, results []domain.EvaluationResult) error
	// List returns the results of one run in the order they were saved.
	List(ctx context.Context, runID string) ([]domain.EvaluationResult, error)
	// Runs returns every run id, oldest first.
	Runs(ctx context.Context) ([]string, error)
	Close() error
}
