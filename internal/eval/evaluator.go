package eval

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"sentiment/internal/domain"
)

// Metric names accepted by NewEvaluator.
const (
	MetricAreaUnderROC = "areaUnderROC"
	MetricAreaUnderPR  = "areaUnderPR"
)

// DegenerateScore is reported when a metric is undefined for a split.
const DegenerateScore = 0.5

// Score is the value of a metric on one split.
type Score struct {
	Value      float64
	Degenerate bool
}

// Evaluator computes a ranking metric from model probabilities. It holds no
// per-call state and can be shared by every model and split.
type Evaluator struct {
	metric string
	fn     func(scores, labels []float64) (float64, error)
	logger *zap.Logger
}

// NewEvaluator returns an evaluator for metric.
func NewEvaluator(metric string, logger *zap.Logger) (*Evaluator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Evaluator{metric: metric, logger: logger}
	switch metric {
	case MetricAreaUnderROC:
		e.fn = AreaUnderROC
	case MetricAreaUnderPR:
		e.fn = AreaUnderPR
	default:
		return nil, fmt.Errorf("eval: unknown metric %q", metric)
	}
	return e, nil
}

// Metric returns the metric name.
func (e *Evaluator) Metric() string { return e.metric }

// ShortName is the label printed next to scores in the report.
func (e *Evaluator) ShortName() string {
	if e.metric == MetricAreaUnderPR {
		return "AUPR"
	}
	return "AUC"
}

// Evaluate scores model on records. A split lacking one of the classes is not
// an error: it yields DegenerateScore flagged as degenerate.
func (e *Evaluator) Evaluate(model domain.Classifier, records []domain.Record) (Score, error) {
	scores := make([]float64, len(records))
	labels := make([]float64, len(records))
	for i, r := range records {
		scores[i] = model.Probability(r.Features)
		labels[i] = r.Label
	}
	v, err := e.fn(scores, labels)
	if errors.Is(err, ErrDegenerate) {
		e.logger.Warn("metric undefined for split, reporting chance level",
			zap.String("model", model.Name()),
			zap.String("metric", e.metric),
			zap.Int("rows", len(records)))
		return Score{Value: DegenerateScore, Degenerate: true}, nil
	}
	if err != nil {
		return Score{}, err
	}
	return Score{Value: v}, nil
}
