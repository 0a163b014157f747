// Package experiment runs the hyperparameter sweep and the final refit.
package experiment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sentiment/internal/config"
	"sentiment/internal/domain"
	"sentiment/internal/eval"
	"sentiment/internal/tree"
)

// Model families.
const (
	DecisionTree = "decision_tree"
	RandomForest = "random_forest"
)

// Config is one model configuration of the sweep. Every Config produces an
// independent model.
type Config struct {
	ID     string
	Family string
	Label  string
	Tree   tree.DecisionTreeParams
	Forest tree.RandomForestParams
	// Splits lists the splits the fitted model is scored on, in report order.
	Splits []domain.SplitName
}

// Fit trains the configured model on records.
func (c Config) Fit(ctx context.Context, records []domain.Record) (domain.Classifier, error) {
	ds := tree.FromRecords(records)
	switch c.Family {
	case DecisionTree:
		m, err := tree.FitDecisionTree(ds, c.Tree)
		if err != nil {
			return nil, err
		}
		return m, nil
	case RandomForest:
		m, err := tree.FitRandomForest(ctx, ds, c.Forest)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("experiment: unknown family %q", c.Family)
	}
}

func treeParams(cfg config.DecisionTreeConfig, depth int) tree.DecisionTreeParams {
	return tree.DecisionTreeParams{
		MaxDepth:            depth,
		MaxBins:             cfg.MaxBins,
		MinInstancesPerNode: cfg.MinInstancesPerNode,
		MinInfoGain:         cfg.MinInfoGain,
		Seed:                cfg.Seed,
	}
}

func forestParams(cfg config.RandomForestConfig, numTrees, depth int) tree.RandomForestParams {
	return tree.RandomForestParams{
		NumTrees:            numTrees,
		MaxDepth:            depth,
		MaxBins:             cfg.MaxBins,
		MinInstancesPerNode: 1,
		FeatureSubset:       cfg.FeatureSubset,
		SubsamplingRate:     cfg.SubsamplingRate,
		Seed:                cfg.Seed,
		Workers:             cfg.Workers,
	}
}

// Sweep builds the configuration list from cfg: the default decision tree
// scored on dev and train, each tuned depth on dev, the default forest on dev
// and train, and each tuned tree count on dev.
func Sweep(cfg *config.AppConfig) []Config {
	dt := cfg.DecisionTree
	rf := cfg.RandomForest
	out := []Config{{
		ID:     fmt.Sprintf("dt-depth-%d", dt.MaxDepth),
		Family: DecisionTree,
		Label:  "Decision Tree, Default Parameters",
		Tree:   treeParams(dt, dt.MaxDepth),
		Splits: []domain.SplitName{domain.Dev, domain.Train},
	}}
	for _, d := range dt.TunedMaxDepths {
		out = append(out, Config{
			ID:     fmt.Sprintf("dt-depth-%d", d),
			Family: DecisionTree,
			Label:  fmt.Sprintf("Decision Tree, Max Depth = %d", d),
			Tree:   treeParams(dt, d),
			Splits: []domain.SplitName{domain.Dev},
		})
	}
	out = append(out, Config{
		ID:     fmt.Sprintf("rf-trees-%d", rf.NumTrees),
		Family: RandomForest,
		Label:  fmt.Sprintf("Random Forest, Default Parameters (numTrees = %d)", rf.NumTrees),
		Forest: forestParams(rf, rf.NumTrees, rf.MaxDepth),
		Splits: []domain.SplitName{domain.Dev, domain.Train},
	})
	for _, n := range rf.TunedNumTrees {
		out = append(out, Config{
			ID:     fmt.Sprintf("rf-trees-%d", n),
			Family: RandomForest,
			Label:  fmt.Sprintf("Random Forest, Parameters (numTrees = %d)", n),
			Forest: forestParams(rf, n, rf.MaxDepth),
			Splits: []domain.SplitName{domain.Dev},
		})
	}
	return out
}

// Final builds the configuration refit on train+dev and scored on test.
func Final(cfg *config.AppConfig) Config {
	f := cfg.Final
	if f.Family == DecisionTree {
		return Config{
			ID:     fmt.Sprintf("final-dt-depth-%d", f.MaxDepth),
			Family: DecisionTree,
			Label:  fmt.Sprintf("Decision Tree, Max Depth = %d", f.MaxDepth),
			Tree:   treeParams(cfg.DecisionTree, f.MaxDepth),
			Splits: []domain.SplitName{domain.Test},
		}
	}
	return Config{
		ID:     fmt.Sprintf("final-rf-trees-%d", f.NumTrees),
		Family: RandomForest,
		Label:  fmt.Sprintf("Random Forest, Parameters (numTrees = %d)", f.NumTrees),
		Forest: forestParams(cfg.RandomForest, f.NumTrees, f.MaxDepth),
		Splits: []domain.SplitName{domain.Test},
	}
}

// Reporter receives every result as soon as it is computed.
type Reporter interface {
	Result(r domain.EvaluationResult) error
}

// Outcome is the fitted model of one Config and its scores.
type Outcome struct {
	Config  Config
	Model   domain.Classifier
	Results []domain.EvaluationResult
}

// Score returns the score on split, if it was evaluated.
func (o Outcome) Score(split domain.SplitName) (domain.EvaluationResult, bool) {
	for _, r := range o.Results {
		if r.Split == split {
			return r, true
		}
	}
	return domain.EvaluationResult{}, false
}

// OverfitGap returns training score minus development score when both exist.
func (o Outcome) OverfitGap() (float64, bool) {
	tr, ok := o.Score(domain.Train)
	if !ok {
		return 0, false
	}
	dv, ok := o.Score(domain.Dev)
	if !ok {
		return 0, false
	}
	return tr.Score - dv.Score, true
}

// Runner fits and scores configurations.
type Runner struct {
	evaluator *eval.Evaluator
	reporter  Reporter
	logger    *zap.Logger
}

// NewRunner creates a Runner. reporter may be nil.
func NewRunner(evaluator *eval.Evaluator, reporter Reporter, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{evaluator: evaluator, reporter: reporter, logger: logger}
}

// Run fits every config on trainOn and scores it on the splits it names.
// Configs run strictly in order; the first error aborts.
func (r *Runner) Run(ctx context.Context, configs []Config, trainOn []domain.Record, splits map[domain.SplitName][]domain.Record) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(configs))
	for _, c := range configs {
		o, err := r.runOne(ctx, c, trainOn, splits)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

func (r *Runner) runOne(ctx context.Context, c Config, trainOn []domain.Record, splits map[domain.SplitName][]domain.Record) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	start := time.Now()
	model, err := c.Fit(ctx, trainOn)
	if err != nil {
		return Outcome{}, fmt.Errorf("fit %s: %w", c.ID, err)
	}
	r.logger.Debug("model fitted",
		zap.String("config", c.ID),
		zap.String("model", model.Name()),
		zap.Int("rows", len(trainOn)),
		zap.Duration("elapsed", time.Since(start)))

	o := Outcome{Config: c, Model: model}
	for _, s := range c.Splits {
		records, ok := splits[s]
		if !ok {
			return Outcome{}, fmt.Errorf("experiment: config %s names unknown split %q", c.ID, s)
		}
		score, err := r.evaluator.Evaluate(model, records)
		if err != nil {
			return Outcome{}, fmt.Errorf("evaluate %s on %s: %w", c.ID, s, err)
		}
		res := domain.EvaluationResult{
			ConfigID:   c.ID,
			Model:      c.Label,
			Split:      s,
			Metric:     r.evaluator.ShortName(),
			Score:      score.Value,
			Degenerate: score.Degenerate,
		}
		o.Results = append(o.Results, res)
		if r.reporter != nil {
			if err := r.reporter.Result(res); err != nil {
				return Outcome{}, err
			}
		}
	}
	if gap, ok := o.OverfitGap(); ok {
		r.logger.Info("overfitting gap", zap.String("config", c.ID), zap.Float64("train_minus_dev", gap))
	}
	return o, nil
}

// SelectBest returns the config of the outcome with the highest
// non-degenerate development score. Ties keep the earliest config.
func SelectBest(outcomes []Outcome) (Config, bool) {
	var best Config
	bestScore := -1.0
	found := false
	for _, o := range outcomes {
		r, ok := o.Score(domain.Dev)
		if !ok || r.Degenerate {
			continue
		}
		if r.Score > bestScore {
			best, bestScore, found = o.Config, r.Score, true
		}
	}
	return best, found
}

// AsFinal rescopes c to be scored on the test split only.
func AsFinal(c Config) Config {
	c.ID = "final-" + c.ID
	c.Splits = []domain.SplitName{domain.Test}
	return c
}
