package transcript

import (
	"context"
	"log/slog"
	"strings"
)

const defaultMinWordLength = 3

// PipelineOption is a functional option for configuring a [CorrectionPipeline].
type PipelineOption func(*CorrectionPipeline)

// WithPhoneticMatcher attaches a [PhoneticMatcher]. When nil (the default),
// the pipeline only normalises whitespace.
func WithPhoneticMatcher(m PhoneticMatcher) PipelineOption {
	return func(p *CorrectionPipeline) {
		p.phonetic = m
	}
}

// WithMinWordLength sets the shortest word, in runes, that is considered for
// substitution. Shorter words ("op", "a") are too ambiguous to snap safely.
// Default: 3.
func WithMinWordLength(n int) PipelineOption {
	return func(p *CorrectionPipeline) {
		p.minWordLength = n
	}
}

// CorrectionPipeline is the default [Pipeline].
//
// CorrectionPipeline is safe for concurrent use.
type CorrectionPipeline struct {
	phonetic      PhoneticMatcher
	minWordLength int
}

// Ensure CorrectionPipeline satisfies the Pipeline interface at compile time.
var _ Pipeline = (*CorrectionPipeline)(nil)

// NewPipeline constructs a [CorrectionPipeline] with the supplied options.
func NewPipeline(opts ...PipelineOption) *CorrectionPipeline {
	p := &CorrectionPipeline{
		minWordLength: defaultMinWordLength,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Correct splits text on whitespace and offers every word that is long
// enough and not already a vocabulary word to the [PhoneticMatcher].
// Matched words are replaced by the vocabulary word.
//
// Comparison against the vocabulary is case-insensitive. Context
// cancellation is checked once per word.
func (p *CorrectionPipeline) Correct(ctx context.Context, text string, vocabulary []string) (*CorrectedTranscript, error) {
	result := &CorrectedTranscript{
		Original:    text,
		Corrections: []Correction{},
	}

	tokens := strings.Fields(text)
	if p.phonetic == nil || len(vocabulary) == 0 {
		result.Corrected = strings.Join(tokens, " ")
		return result, nil
	}

	known := make(map[string]struct{}, len(vocabulary))
	for _, v := range vocabulary {
		known[strings.ToLower(v)] = struct{}{}
	}

	for i, tok := range tokens {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lower := strings.ToLower(tok)
		if _, ok := known[lower]; ok || len([]rune(lower)) < p.minWordLength {
			continue
		}
		corrected, conf, ok := p.phonetic.Match(lower, vocabulary)
		if !ok {
			continue
		}
		tokens[i] = corrected
		result.Corrections = append(result.Corrections, Correction{
			Original:   tok,
			Corrected:  corrected,
			Confidence: conf,
			Method:     MethodPhonetic,
		})
		slog.Debug("transcript: snapped word", "from", tok, "to", corrected, "confidence", conf)
	}

	result.Corrected = strings.Join(tokens, " ")
	return result, nil
}
