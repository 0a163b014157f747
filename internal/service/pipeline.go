package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sentiment/internal/config"
	"sentiment/internal/corpus"
	"sentiment/internal/domain"
	"sentiment/internal/eval"
	"sentiment/internal/experiment"
	"sentiment/internal/feature"
	"sentiment/internal/report"
	"sentiment/internal/resultstore"
	"sentiment/internal/split"
	"sentiment/internal/text"
)

// Summary is everything one run produced.
type Summary struct {
	RunID          string
	Root           string
	Stats          []split.Stats
	VocabularySize int
	Outcomes       []experiment.Outcome
	Final          experiment.Outcome
	Results        []domain.EvaluationResult
}

// Service runs the whole classification job against one corpus source.
type Service struct {
	cfg    *config.AppConfig
	source corpus.Source
	store  resultstore.Storage
	out    *report.Writer
	logger *zap.Logger
}

// New wires a Service. store may be nil, in which case results are only printed.
func New(cfg *config.AppConfig, source corpus.Source, store resultstore.Storage, out io.Writer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cfg: cfg, source: source, store: store, out: report.NewWriter(out), logger: logger}
}

// Run loads <base_path>/<subdir>, prints the split statistics, fits the
// feature pipeline on the training split, runs the sweep and scores the final
// model on the test split. Every stage completes before the next starts and
// the first error aborts the run.
func (s *Service) Run(ctx context.Context, subdir string) (*Summary, error) {
	sum := &Summary{
		RunID: uuid.NewString(),
		Root:  s.source.Join(s.cfg.Corpus.BasePath, subdir),
	}
	log := s.logger.With(zap.String("run_id", sum.RunID))

	start := time.Now()
	reviews, err := corpus.Load(ctx, s.source, sum.Root, corpus.DefaultReaders)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	log.Debug("corpus loaded", zap.String("root", sum.Root), zap.Int("reviews", len(reviews)), zap.Duration("elapsed", time.Since(start)))

	tok := text.NewTokenizer(s.cfg.Tokenizer.Stem)
	records := make([]domain.Record, len(reviews))
	for i, r := range reviews {
		records[i] = domain.Record{Review: r, Words: tok.Tokenize(r.Text)}
	}

	parts, err := split.Random(records, s.cfg.Split.Weights, s.cfg.Split.Seed)
	if err != nil {
		return nil, fmt.Errorf("split corpus: %w", err)
	}
	train, dev, test := parts[0], parts[1], parts[2]
	sum.Stats = []split.Stats{
		split.Count(domain.Train, train),
		split.Count(domain.Dev, dev),
		split.Count(domain.Test, test),
	}
	if err := s.out.Sizes(sum.Stats); err != nil {
		return nil, err
	}
	if err := s.out.Distributions(sum.Stats); err != nil {
		return nil, err
	}

	start = time.Now()
	pipe, err := feature.Fit(train, feature.PipelineParams{
		StopWords:  s.cfg.Vocabulary.StopWords,
		MinDF:      s.cfg.Vocabulary.MinDF,
		VocabSize:  s.cfg.Vocabulary.VocabSize,
		MinDocFreq: s.cfg.Vocabulary.MinDocFreq,
	})
	if err != nil {
		return nil, fmt.Errorf("fit features: %w", err)
	}
	train, dev, test = pipe.Transform(train), pipe.Transform(dev), pipe.Transform(test)
	sum.VocabularySize = pipe.Dimension()
	log.Debug("features fitted", zap.Int("stop_words", pipe.StopWords.Len()), zap.Int("vocabulary", sum.VocabularySize), zap.Duration("elapsed", time.Since(start)))
	if err := s.out.VocabularySize(sum.VocabularySize); err != nil {
		return nil, err
	}

	evaluator, err := eval.NewEvaluator(s.cfg.Evaluation.Metric, log)
	if err != nil {
		return nil, err
	}
	runner := experiment.NewRunner(evaluator, s.out, log)
	splits := map[domain.SplitName][]domain.Record{
		domain.Train: train,
		domain.Dev:   dev,
		domain.Test:  test,
	}

	start = time.Now()
	sum.Outcomes, err = runner.Run(ctx, experiment.Sweep(s.cfg), train, splits)
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}
	log.Debug("sweep finished", zap.Int("configs", len(sum.Outcomes)), zap.Duration("elapsed", time.Since(start)))

	final := experiment.Final(s.cfg)
	if s.cfg.Final.AutoSelect {
		if best, ok := experiment.SelectBest(sum.Outcomes); ok {
			final = experiment.AsFinal(best)
		} else {
			log.Warn("no configuration has a usable development score, keeping configured final model")
		}
	}
	trainDev := make([]domain.Record, 0, len(train)+len(dev))
	trainDev = append(append(trainDev, train...), dev...)

	start = time.Now()
	finals, err := runner.Run(ctx, []experiment.Config{final}, trainDev, splits)
	if err != nil {
		return nil, fmt.Errorf("final model: %w", err)
	}
	sum.Final = finals[0]
	log.Debug("final model scored", zap.String("config", final.ID), zap.Duration("elapsed", time.Since(start)))

	for _, o := range sum.Outcomes {
		sum.Results = append(sum.Results, o.Results...)
	}
	sum.Results = append(sum.Results, sum.Final.Results...)
	if s.store != nil {
		if err := s.store.Save(ctx, sum.RunID, sum.Results); err != nil {
			return nil, fmt.Errorf("save results: %w", err)
		}
	}
	return sum, nil
}
