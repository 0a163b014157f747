package feature

import (
	"errors"
	"math"
	"sort"

	"sentiment/internal/domain"
)

// ErrEmptyVocabulary is returned when no token survives the document
// frequency filter.
var ErrEmptyVocabulary = errors.New("feature: vocabulary is empty; lower min_df or check the stop-word count")

// CountVectorizerParams configures vocabulary fitting.
type CountVectorizerParams struct {
	// MinDF is the minimum number of documents a token must appear in. Values
	// below 1 are a fraction of the number of documents.
	MinDF float64
	// VocabSize caps the vocabulary, keeping the most frequent tokens.
	VocabSize int
}

// CountVectorizerModel maps tokens to bag-of-words count vectors over a fixed
// vocabulary.
type CountVectorizerModel struct {
	vocabulary []string
	index      map[string]int
	docFreq    []int
}

// FitCountVectorizer builds a vocabulary from docs. The vocabulary is ordered by
// total term count, most frequent first, ties broken by token.
func FitCountVectorizer(docs [][]string, p CountVectorizerParams) (*CountVectorizerModel, error) {
	minDocs := p.MinDF
	if minDocs < 1 {
		minDocs = math.Ceil(p.MinDF * float64(len(docs)))
	}
	// Build term counts and document frequencies
	df := make(map[string]int)
	tf := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, tok := range doc {
			tf[tok]++
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	terms := make([]string, 0, len(df))
	for term, n := range df {
		if float64(n) >= minDocs {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return nil, ErrEmptyVocabulary
	}
	sort.Slice(terms, func(i, j int) bool {
		if tf[terms[i]] != tf[terms[j]] {
			return tf[terms[i]] > tf[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if p.VocabSize > 0 && len(terms) > p.VocabSize {
		terms = terms[:p.VocabSize]
	}
	m := &CountVectorizerModel{
		vocabulary: terms,
		index:      make(map[string]int, len(terms)),
		docFreq:    make([]int, len(terms)),
	}
	for i, term := range terms {
		m.index[term] = i
		m.docFreq[i] = df[term]
	}
	return m, nil
}

// Size returns the vocabulary size, which is also the vector dimension.
func (m *CountVectorizerModel) Size() int { return len(m.vocabulary) }

// Vocabulary returns the tokens in index order.
func (m *CountVectorizerModel) Vocabulary() []string {
	out := make([]string, len(m.vocabulary))
	copy(out, m.vocabulary)
	return out
}

// Index returns the vector index of token.
func (m *CountVectorizerModel) Index(token string) (int, bool) {
	i, ok := m.index[token]
	return i, ok
}

// DocFreq returns the training document frequency of the token at index i.
func (m *CountVectorizerModel) DocFreq(i int) int { return m.docFreq[i] }

// Transform counts the in-vocabulary tokens. Unknown tokens are ignored.
func (m *CountVectorizerModel) Transform(tokens []string) domain.SparseVector {
	counts := make(map[int]float64)
	for _, tok := range tokens {
		if idx, ok := m.index[tok]; ok {
			counts[idx]++
		}
	}
	return domain.NewSparseVector(len(m.vocabulary), counts)
}
