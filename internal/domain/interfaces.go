package domain

// Label values assigned to reviews at load time.
const (
	Negative = 0.0
	Positive = 1.0
)

// Review is a single review file loaded from the corpus.
type Review struct {
	Path  string
	Label float64
	Text  string
}

// Record is a review moving through the feature pipeline. Each stage fills in
// one more field and leaves the earlier ones untouched.
type Record struct {
	Review
	Words    []string
	Filtered []string
	Counts   SparseVector
	Features SparseVector
}

// SplitName identifies one of the corpus partitions.
type SplitName string

const (
	Train    SplitName = "train"
	Dev      SplitName = "dev"
	Test     SplitName = "test"
	TrainDev SplitName = "traindev"
)

// Title is the human readable split name used in the report.
func (s SplitName) Title() string {
	switch s {
	case Train:
		return "Training Set"
	case Dev:
		return "Development Set"
	case Test:
		return "Test Set"
	case TrainDev:
		return "Training+Development Set"
	default:
		return string(s)
	}
}

// EvaluationResult is one (model, split, score) fact produced by the evaluator.
type EvaluationResult struct {
	ConfigID   string
	Model      string
	Split      SplitName
	Metric     string
	Score      float64
	Degenerate bool
}

// Classifier is a fitted binary model. Implementations are immutable.
type Classifier interface {
	Name() string
	// Probability returns the estimated probability of the positive class.
	Probability(features SparseVector) float64
}
