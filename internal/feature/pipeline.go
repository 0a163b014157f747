// Package feature turns tokenized reviews into TF-IDF vectors. Every model in
// this package is fitted on the training split only and then applied unchanged
// to any other split.
package feature

import (
	"fmt"

	"sentiment/internal/domain"
	"sentiment/internal/text"
)

// PipelineParams configures Fit.
type PipelineParams struct {
	StopWords  int
	MinDF      float64
	VocabSize  int
	MinDocFreq int
}

// Pipeline is a fitted stop-word remover, count vectorizer and IDF model.
type Pipeline struct {
	StopWords  *text.StopWords
	Vectorizer *CountVectorizerModel
	IDF        *IDFModel
}

// Fit derives the stop words from the most frequent training tokens, then
// fits the vocabulary and idf weights on the filtered training tokens.
func Fit(train []domain.Record, p PipelineParams) (*Pipeline, error) {
	words := make([][]string, len(train))
	for i, r := range train {
		words[i] = r.Words
	}
	stop := text.StopWordsFromTop(text.TopTokens(words, p.StopWords))

	filtered := make([][]string, len(train))
	for i, w := range words {
		filtered[i] = stop.Remove(w)
	}
	cv, err := FitCountVectorizer(filtered, CountVectorizerParams{MinDF: p.MinDF, VocabSize: p.VocabSize})
	if err != nil {
		return nil, fmt.Errorf("fit vocabulary: %w", err)
	}
	counts := make([]domain.SparseVector, len(filtered))
	for i, f := range filtered {
		counts[i] = cv.Transform(f)
	}
	idf := FitIDF(counts, cv.Size(), p.MinDocFreq)
	return &Pipeline{StopWords: stop, Vectorizer: cv, IDF: idf}, nil
}

// Dimension is the length of every produced feature vector.
func (p *Pipeline) Dimension() int { return p.Vectorizer.Size() }

// Transform fills Filtered, Counts and Features on copies of records.
func (p *Pipeline) Transform(records []domain.Record) []domain.Record {
	out := make([]domain.Record, len(records))
	for i, r := range records {
		r.Filtered = p.StopWords.Remove(r.Words)
		r.Counts = p.Vectorizer.Transform(r.Filtered)
		r.Features = p.IDF.Transform(r.Counts)
		out[i] = r
	}
	return out
}
