package memory

import (
	"context"
	"errors"
	"sync"

	"sentiment/internal/domain"
	"sentiment/internal/resultstore"
)

// Storage keeps results in process memory. Everything is lost on exit.
type Storage struct {
	mu      sync.RWMutex
	order   []string
	results map[string][]domain.EvaluationResult
}

// NewStorage returns an empty store.
func NewStorage() *Storage { return &Storage{results: map[string][]domain.EvaluationResult{}} }

// Init drops every stored run.
func (s *Storage) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.results = map[string][]domain.EvaluationResult{}
	return nil
}

// Save appends results to runID.
func (s *Storage) Save(ctx context.Context, runID string, results []domain.EvaluationResult) error {
	if runID == "" {
		return errors.New("memory: empty run id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[runID]; !ok {
		s.order = append(s.order, runID)
	}
	s.results[runID] = append(s.results[runID], results...)
	return nil
}

// List returns a copy of the results of runID.
func (s *Storage) List(ctx context.Context, runID string) ([]domain.EvaluationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rs, ok := s.results[runID]
	if !ok {
		return nil, resultstore.ErrUnknownRun
	}
	return append([]domain.EvaluationResult(nil), rs...), nil
}

// Runs returns run ids in the order they were first saved.
func (s *Storage) Runs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...), nil
}

// Close is a no-op.
func (s *Storage) Close() error { return nil }
