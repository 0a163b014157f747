package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver

	"sentiment/internal/domain"
	"sentiment/internal/resultstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS evaluation_results (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT    NOT NULL,
	config_id   TEXT    NOT NULL,
	model       TEXT    NOT NULL,
	split       TEXT    NOT NULL,
	metric      TEXT    NOT NULL,
	score       REAL    NOT NULL,
	degenerate  INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_evaluation_results_run ON evaluation_results (run_id);
`

type row struct {
	ConfigID   string  `db:"config_id"`
	Model      string  `db:"model"`
	Split      string  `db:"split"`
	Metric     string  `db:"metric"`
	Score      float64 `db:"score"`
	Degenerate bool    `db:"degenerate"`
}

// Storage appends evaluation results to a SQLite database file.
type Storage struct {
	db  *sqlx.DB
	now func() time.Time
}

// Open connects to the database at path. Use ":memory:" for a throwaway store.
func Open(path string) (*Storage, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)
	return &Storage{db: db, now: time.Now}, nil
}

// Init pings the database and creates the schema if missing.
func (s *Storage) Init(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save inserts results for runID in one transaction.
func (s *Storage) Save(ctx context.Context, runID string, results []domain.EvaluationResult) error {
	if runID == "" {
		return errors.New("sqlite: empty run id")
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	created := s.now().UTC().Format(time.RFC3339Nano)
	query := `
		INSERT INTO evaluation_results (run_id, config_id, model, split, metric, score, degenerate, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, r := range results {
		if _, err := tx.ExecContext(ctx, query,
			runID, r.ConfigID, r.Model, string(r.Split), r.Metric, r.Score, r.Degenerate, created,
		); err != nil {
			return fmt.Errorf("failed to insert result %s/%s: %w", r.ConfigID, r.Split, err)
		}
	}
	return tx.Commit()
}

// List returns the results of runID in insertion order.
func (s *Storage) List(ctx context.Context, runID string) ([]domain.EvaluationResult, error) {
	var rows []row
	query := `
		SELECT config_id, model, split, metric, score, degenerate
		FROM evaluation_results
		WHERE run_id = ?
		ORDER BY id
	`
	if err := s.db.SelectContext(ctx, &rows, query, runID); err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	if len(rows) == 0 {
		return nil, resultstore.ErrUnknownRun
	}
	out := make([]domain.EvaluationResult, len(rows))
	for i, r := range rows {
		out[i] = domain.EvaluationResult{
			ConfigID:   r.ConfigID,
			Model:      r.Model,
			Split:      domain.SplitName(r.Split),
			Metric:     r.Metric,
			Score:      r.Score,
			Degenerate: r.Degenerate,
		}
	}
	return out, nil
}

// Runs returns run ids ordered by their first insert.
func (s *Storage) Runs(ctx context.Context) ([]string, error) {
	var runs []string
	query := `
		SELECT run_id
		FROM evaluation_results
		GROUP BY run_id
		ORDER BY MIN(id)
	`
	if err := s.db.SelectContext(ctx, &runs, query); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Close closes the database.
func (s *Storage) Close() error { return s.db.Close() }
