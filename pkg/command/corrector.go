package command

import (
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/MrWong99/coinhop/pkg/lexicon"
)

// DefaultCacheSize is the number of per-word corrections [SpellCorrector]
// memoises when no size is configured.
const DefaultCacheSize = 1024

// Corrector rewrites the words of an utterance onto known spellings.
//
// Correct must never fail: a word that cannot be corrected is returned as
// is. Implementations must be safe for concurrent use.
type Corrector interface {
	Correct(text string, lang Language) string
}

// WordCorrector corrects a single whitespace-free word. The result equals the
// input when the word is already known or no candidate exists.
type WordCorrector interface {
	CorrectWord(word string) string
}

// SpellCorrector is the default [Corrector]. It splits text on whitespace,
// routes each word to the Danish or English [WordCorrector] by language, and
// rejoins the results with single spaces.
//
// Per-word results are memoised in an LRU cache keyed by language and word;
// speech transcripts and player input repeat the same handful of words, and
// English suggestion lookups are the expensive part of a normalization.
type SpellCorrector struct {
	danish  WordCorrector
	english WordCorrector
	cache   *lru.Cache[cacheKey, string]
}

type cacheKey struct {
	lang Language
	word string
}

var _ Corrector = (*SpellCorrector)(nil)

// SpellOption configures a [SpellCorrector].
type SpellOption func(*spellConfig)

type spellConfig struct {
	cacheSize        int
	englishMaxErrors int
	danishMaxDist    int
	danish           WordCorrector
	english          WordCorrector
}

// WithCacheSize sets the number of memoised word corrections. Zero or a
// negative value disables the cache.
func WithCacheSize(n int) SpellOption {
	return func(c *spellConfig) { c.cacheSize = n }
}

// WithEnglishMaxErrors sets the maximum edit count for English suggestions.
func WithEnglishMaxErrors(n int) SpellOption {
	return func(c *spellConfig) { c.englishMaxErrors = n }
}

// WithDanishMaxDistance sets the maximum Damerau-Levenshtein distance for
// Danish corrections.
func WithDanishMaxDistance(n int) SpellOption {
	return func(c *spellConfig) { c.danishMaxDist = n }
}

// WithDanishWordCorrector replaces the Danish word corrector.
func WithDanishWordCorrector(wc WordCorrector) SpellOption {
	return func(c *spellConfig) { c.danish = wc }
}

// WithEnglishWordCorrector replaces the English word corrector.
func WithEnglishWordCorrector(wc WordCorrector) SpellOption {
	return func(c *spellConfig) { c.english = wc }
}

// NewSpellCorrector builds the default bilingual corrector for lex.
// It returns an error only when the English dictionary cannot be built.
func NewSpellCorrector(lex *lexicon.Lexicon, opts ...SpellOption) (*SpellCorrector, error) {
	cfg := spellConfig{
		cacheSize:        DefaultCacheSize,
		englishMaxErrors: DefaultEnglishMaxErrors,
		danishMaxDist:    DefaultDanishMaxDistance,
	}
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.danish == nil {
		cfg.danish = NewDanishCorrector(lex, cfg.danishMaxDist)
	}
	if cfg.english == nil {
		ec, err := NewEnglishCorrector(lex, cfg.englishMaxErrors)
		if err != nil {
			return nil, err
		}
		cfg.english = ec
	}

	sc := &SpellCorrector{danish: cfg.danish, english: cfg.english}
	if cfg.cacheSize > 0 {
		c, err := lru.New[cacheKey, string](cfg.cacheSize)
		if err != nil {
			return nil, err
		}
		sc.cache = c
	}
	return sc, nil
}

// Correct implements [Corrector].
func (s *SpellCorrector) Correct(text string, lang Language) string {
	words := strings.Fields(text)
	wc := s.english
	if lang == Danish {
		wc = s.danish
	}
	for i, w := range words {
		words[i] = s.correctWord(wc, lang, w)
	}
	return strings.Join(words, " ")
}

func (s *SpellCorrector) correctWord(wc WordCorrector, lang Language, word string) string {
	if s.cache == nil {
		return wc.CorrectWord(word)
	}
	key := cacheKey{lang: lang, word: word}
	if v, ok := s.cache.Get(key); ok {
		return v
	}
	v := wc.CorrectWord(word)
	if v != word {
		slog.Debug("command: corrected word", "language", lang, "from", word, "to", v)
	}
	s.cache.Add(key, v)
	return v
}
