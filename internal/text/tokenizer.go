package text

import (
	"strings"

	"github.com/reiver/go-porterstemmer"
	"golang.org/x/text/unicode/norm"
)

// Tokenizer lower-cases review text and splits it on every whitespace
// character.
type Tokenizer struct {
	stem bool
}

// NewTokenizer creates a tokenizer. When stem is set every token is reduced
// with the Porter stemmer.
func NewTokenizer(stem bool) *Tokenizer {
	return &Tokenizer{stem: stem}
}

// Tokenize returns the ordered tokens of text. Adjacent separators yield
// empty tokens; trailing empty tokens are dropped. Text without any
// separator is a single token, so "" yields [""].
func (t *Tokenizer) Tokenize(text string) []string {
	tokens := splitWhitespace(norm.NFC.String(strings.ToLower(text)))
	if !t.stem {
		return tokens
	}
	for i, tok := range tokens {
		if tok != "" {
			tokens[i] = porterstemmer.StemString(tok)
		}
	}
	return tokens
}

func isSeparator(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func splitWhitespace(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if isSeparator(s[i]) {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	if out == nil {
		return []string{s}
	}
	out = append(out, s[start:])
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}
