package text

// StopWords is a fixed set of tokens removed before vectorization.
type StopWords struct {
	words []string
	set   map[string]struct{}
}

// NewStopWords builds a stop-word set. Duplicates are ignored.
func NewStopWords(words []string) *StopWords {
	s := &StopWords{set: make(map[string]struct{}, len(words))}
	for _, w := range words {
		if _, ok := s.set[w]; ok {
			continue
		}
		s.set[w] = struct{}{}
		s.words = append(s.words, w)
	}
	return s
}

// StopWordsFromTop uses the tokens of a TopTokens result as stop words.
func StopWordsFromTop(top []TokenCount) *StopWords {
	words := make([]string, len(top))
	for i, tc := range top {
		words[i] = tc.Token
	}
	return NewStopWords(words)
}

// IsStop reports whether token is a stop word.
func (s *StopWords) IsStop(token string) bool {
	_, ok := s.set[token]
	return ok
}

// Remove returns tokens without stop words, keeping their order. The input is
// not modified.
func (s *StopWords) Remove(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if s.IsStop(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Words returns the stop words in insertion order.
func (s *StopWords) Words() []string {
	out := make([]string, len(s.words))
	copy(out, s.words)
	return out
}

// Len returns the number of stop words.
func (s *StopWords) Len() int { return len(s.words) }
