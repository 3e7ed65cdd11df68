// Package phonetic implements the [transcript.PhoneticMatcher] interface using
// Double Metaphone phonetic encoding combined with Jaro-Winkler string
// similarity.
//
// A vocabulary word is a phonetic candidate when its Double Metaphone codes
// overlap the input word's codes; among candidates the one with the highest
// Jaro-Winkler score wins, provided it reaches the phonetic threshold
// (default 0.70). When no phonetic candidate qualifies, any vocabulary word
// with a Jaro-Winkler score at or above the stricter fuzzy threshold
// (default 0.85) is accepted instead.
package phonetic

import (
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/MrWong99/coinhop/internal/transcript"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.85
)

// Option is a functional option for configuring a [Matcher].
type Option func(*Matcher)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score required for a
// phonetically-matched word to be accepted. Default: 0.70.
func WithPhoneticThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.phoneticThreshold = threshold
	}
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score required when no
// phonetic match is found. Default: 0.85.
func WithFuzzyThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.fuzzyThreshold = threshold
	}
}

// Matcher is read-only after construction and safe for concurrent use.
type Matcher struct {
	phoneticThreshold float64
	fuzzyThreshold    float64
}

var _ transcript.PhoneticMatcher = (*Matcher)(nil)

// New returns a new [Matcher] configured with the supplied options.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Match finds the vocabulary word most similar to word. Ties keep the word
// that appears first in vocabulary.
func (m *Matcher) Match(word string, vocabulary []string) (corrected string, confidence float64, matched bool) {
	input := strings.ToLower(strings.TrimSpace(word))
	if len(vocabulary) == 0 || input == "" {
		return word, 0, false
	}
	inputCodes := codes(input)

	var (
		best         string
		bestScore    float64
		bestPhonetic bool
	)
	for _, v := range vocabulary {
		cand := strings.ToLower(strings.TrimSpace(v))
		if cand == "" {
			continue
		}
		score := matchr.JaroWinkler(input, cand, false)

		if overlap(inputCodes, codes(cand)) {
			if score >= m.phoneticThreshold && (!bestPhonetic || score > bestScore) {
				best, bestScore, bestPhonetic = v, score, true
			}
		} else if !bestPhonetic && score >= m.fuzzyThreshold && score > bestScore {
			best, bestScore = v, score
		}
	}

	if best != "" {
		return best, bestScore, true
	}
	return word, 0, false
}

// codes returns the non-empty Double Metaphone codes of w.
func codes(w string) []string {
	p, s := matchr.DoubleMetaphone(w)
	out := make([]string, 0, 2)
	if p != "" {
		out = append(out, p)
	}
	if s != "" && s != p {
		out = append(out, s)
	}
	return out
}

func overlap(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
