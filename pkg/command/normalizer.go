package command

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/MrWong99/coinhop/pkg/lexicon"
)

// Observer is called once per normalization with the full result and the
// time the pipeline took. It runs synchronously on the calling goroutine and
// must not block.
type Observer func(res Result, elapsed time.Duration)

// Normalizer runs the detect, correct, tokenize, extract and synthesize
// stages over one utterance. Construct it with [New].
//
// A Normalizer holds no per-call state. All methods are safe for concurrent
// use as long as its [Detector], [Corrector] and [Observer] are.
type Normalizer struct {
	lex       *lexicon.Lexicon
	detector  Detector
	corrector Corrector
	observer  Observer
}

// Option configures a [Normalizer].
type Option func(*Normalizer)

// WithDetector replaces the default [VocabularyDetector].
func WithDetector(d Detector) Option {
	return func(n *Normalizer) { n.detector = d }
}

// WithCorrector replaces the default [SpellCorrector].
func WithCorrector(c Corrector) Option {
	return func(n *Normalizer) { n.corrector = c }
}

// WithObserver registers a callback that receives every [Result].
func WithObserver(o Observer) Option {
	return func(n *Normalizer) { n.observer = o }
}

// New creates a [Normalizer] for lex. Without [WithCorrector] it builds a
// [SpellCorrector] with default settings, which is the only step that can
// fail.
func New(lex *lexicon.Lexicon, opts ...Option) (*Normalizer, error) {
	if lex == nil {
		return nil, errors.New("command: lexicon must not be nil")
	}
	n := &Normalizer{lex: lex}
	for _, o := range opts {
		o(n)
	}
	if n.detector == nil {
		n.detector = NewVocabularyDetector(lex)
	}
	if n.corrector == nil {
		sc, err := NewSpellCorrector(lex)
		if err != nil {
			return nil, err
		}
		n.corrector = sc
	}
	return n, nil
}

// Lexicon returns the lexicon the normalizer reads.
func (n *Normalizer) Lexicon() *lexicon.Lexicon {
	return n.lex
}

// Normalize maps utterance to a canonical command, or to [Unrecognized] when
// no rule matches. It never fails.
func (n *Normalizer) Normalize(utterance string) string {
	return n.Analyze(utterance).Command
}

// Analyze runs the same pipeline as [Normalizer.Normalize] and returns every
// intermediate stage.
func (n *Normalizer) Analyze(utterance string) Result {
	start := time.Now()

	res := Result{Input: utterance}
	// Invalid UTF-8 bytes carry no word and are dropped.
	text := strings.ToValidUTF8(utterance, "")
	res.Language = n.detect(text)
	res.Corrected = strings.ToLower(strings.TrimSpace(n.correct(text, res.Language)))
	res.Tokens = Tokenize(res.Corrected)
	res.Intent = Extract(n.lex, res.Tokens)
	res.Command = Synthesize(res.Intent)

	elapsed := time.Since(start)
	slog.Debug("command: normalized",
		"input", utterance,
		"language", res.Language,
		"corrected", res.Corrected,
		"command", res.Command,
		"elapsed", elapsed,
	)
	if n.observer != nil {
		n.observer(res, elapsed)
	}
	return res
}

func (n *Normalizer) detect(text string) (lang Language) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("command: detector panicked, assuming english", "panic", r)
			lang = English
		}
	}()
	return n.detector.Detect(text)
}

// correct degrades to the uncorrected text if the corrector panics.
func (n *Normalizer) correct(text string, lang Language) (out string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("command: corrector panicked, using input unchanged", "language", lang, "panic", r)
			out = text
		}
	}()
	return n.corrector.Correct(text, lang)
}
