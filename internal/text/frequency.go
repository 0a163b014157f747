package text

import "sort"

// TokenCount is a token and the number of times it occurs.
type TokenCount struct {
	Token string
	Count int
}

// CountTokens returns the term frequency of every token across docs.
func CountTokens(docs [][]string) map[string]int {
	freq := make(map[string]int)
	for _, doc := range docs {
		for _, tok := range doc {
			freq[tok]++
		}
	}
	return freq
}

// TopTokens returns the n most frequent tokens across docs, most frequent
// first. Equal counts are ordered lexicographically so the result does not
// depend on map iteration order.
func TopTokens(docs [][]string, n int) []TokenCount {
	freq := CountTokens(docs)
	counts := make([]TokenCount, 0, len(freq))
	for tok, c := range freq {
		counts = append(counts, TokenCount{Token: tok, Count: c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Token < counts[j].Token
	})
	if n < 0 {
		n = 0
	}
	if n > len(counts) {
		n = len(counts)
	}
	return counts[:n]
}
