// Package lexicon holds the static bilingual (English and Danish) word tables
// used to turn free-form utterances into game commands.
//
// A [Lexicon] is built once at startup, either from the built-in tables
// ([Default]) or from a YAML override file ([Load]), and is never mutated
// afterwards. Every accessor is read-only, so a single *Lexicon may be shared
// by any number of goroutines without locking.
//
// Words are stored lower-cased and in Unicode NFC form so that "Gå" typed on a
// keyboard and "gå" produced by a speech recogniser with a combining ring
// resolve to the same entry.
package lexicon

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalid is wrapped by every error returned from [New] when the supplied
// tables violate a lexicon invariant.
var ErrInvalid = errors.New("lexicon: invalid tables")

// Tables is the plain-data form of a [Lexicon]. It is what [DefaultTables]
// returns and what a lexicon YAML file decodes into.
type Tables struct {
	// ActionKeywords lists every word recognised as an action, canonical or not.
	ActionKeywords []string `yaml:"action_keywords"`

	// ActionSynonyms maps an alternate action word to its canonical action.
	// Every value must itself appear in ActionKeywords.
	ActionSynonyms map[string]string `yaml:"action_synonyms"`

	// DirectionKeywords lists every word recognised as a direction.
	DirectionKeywords []string `yaml:"direction_keywords"`

	// DirectionTranslation maps a Danish direction word to its English
	// equivalent. Every value must itself appear in DirectionKeywords.
	DirectionTranslation map[string]string `yaml:"direction_translation"`

	// Colors maps a color name (either language) to its display value.
	Colors map[string]RGB `yaml:"colors"`

	// DanishVocabulary is the curated word set used for language detection
	// and as the Danish spelling dictionary.
	DanishVocabulary []string `yaml:"danish_vocabulary"`
}

// Lexicon is the immutable, validated form of [Tables].
type Lexicon struct {
	actions      map[string]struct{}
	synonyms     map[string]string
	directions   map[string]struct{}
	translations map[string]string
	colors       map[string]RGB
	danish       map[string]struct{}

	colorNames []string
	vocabulary []string
}

// New validates t and builds a [Lexicon] from it. The input is copied; later
// changes to t do not affect the returned value.
func New(t Tables) (*Lexicon, error) {
	var errs []error

	l := &Lexicon{
		actions:      make(map[string]struct{}, len(t.ActionKeywords)),
		synonyms:     make(map[string]string, len(t.ActionSynonyms)),
		directions:   make(map[string]struct{}, len(t.DirectionKeywords)),
		translations: make(map[string]string, len(t.DirectionTranslation)),
		colors:       make(map[string]RGB, len(t.Colors)),
		danish:       make(map[string]struct{}, len(t.DanishVocabulary)),
	}

	addSet := func(section string, set map[string]struct{}, words []string) {
		for i, w := range words {
			n := Normalize(w)
			if n == "" {
				errs = append(errs, fmt.Errorf("%w: %s[%d] is empty", ErrInvalid, section, i))
				continue
			}
			set[n] = struct{}{}
		}
	}
	addSet("action_keywords", l.actions, t.ActionKeywords)
	addSet("direction_keywords", l.directions, t.DirectionKeywords)
	addSet("danish_vocabulary", l.danish, t.DanishVocabulary)

	for from, to := range t.ActionSynonyms {
		f, c := Normalize(from), Normalize(to)
		if f == "" {
			errs = append(errs, fmt.Errorf("%w: action_synonyms has an empty key", ErrInvalid))
			continue
		}
		if _, ok := l.actions[c]; !ok {
			errs = append(errs, fmt.Errorf("%w: action_synonyms[%q] = %q is not an action keyword", ErrInvalid, from, to))
			continue
		}
		l.synonyms[f] = c
	}
	for from, to := range t.DirectionTranslation {
		f, c := Normalize(from), Normalize(to)
		if f == "" {
			errs = append(errs, fmt.Errorf("%w: direction_translation has an empty key", ErrInvalid))
			continue
		}
		if _, ok := l.directions[c]; !ok {
			errs = append(errs, fmt.Errorf("%w: direction_translation[%q] = %q is not a direction keyword", ErrInvalid, from, to))
			continue
		}
		l.translations[f] = c
	}
	for name, rgb := range t.Colors {
		n := Normalize(name)
		if n == "" {
			errs = append(errs, fmt.Errorf("%w: colors has an empty name", ErrInvalid))
			continue
		}
		l.colors[n] = rgb
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	l.colorNames = sortedKeys(l.colors)

	vocab := make(map[string]struct{})
	for _, m := range []map[string]struct{}{l.actions, l.directions, l.danish} {
		for w := range m {
			vocab[w] = struct{}{}
		}
	}
	for w := range l.synonyms {
		vocab[w] = struct{}{}
	}
	for w := range l.colors {
		vocab[w] = struct{}{}
	}
	l.vocabulary = sortedKeys(vocab)

	return l, nil
}

// Normalize drops invalid UTF-8 bytes, lower-cases word, trims surrounding
// whitespace, and converts it to Unicode NFC. All lexicon lookups apply it to
// their argument.
func Normalize(word string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(strings.ToValidUTF8(word, ""))))
}

// IsAction reports whether word is an action keyword or an action synonym.
func (l *Lexicon) IsAction(word string) bool {
	w := Normalize(word)
	if _, ok := l.actions[w]; ok {
		return true
	}
	_, ok := l.synonyms[w]
	return ok
}

// IsSynonym reports whether word is a key of the synonym table.
func (l *Lexicon) IsSynonym(word string) bool {
	_, ok := l.synonyms[Normalize(word)]
	return ok
}

// CanonicalAction resolves word through the synonym table. Words without a
// synonym entry are returned normalised but otherwise unchanged.
func (l *Lexicon) CanonicalAction(word string) string {
	w := Normalize(word)
	if c, ok := l.synonyms[w]; ok {
		return c
	}
	return w
}

// CanonicalActions returns the distinct targets of the synonym table in
// sorted order.
func (l *Lexicon) CanonicalActions() []string {
	set := make(map[string]struct{}, len(l.synonyms))
	for _, c := range l.synonyms {
		set[c] = struct{}{}
	}
	return sortedKeys(set)
}

// DirectionKeywords returns every direction keyword in sorted order.
func (l *Lexicon) DirectionKeywords() []string {
	return sortedKeys(l.directions)
}

// IsDirection reports whether word is a direction keyword.
func (l *Lexicon) IsDirection(word string) bool {
	_, ok := l.directions[Normalize(word)]
	return ok
}

// TranslateDirection maps a Danish direction word to English. Words without a
// translation are returned normalised but otherwise unchanged.
func (l *Lexicon) TranslateDirection(word string) string {
	w := Normalize(word)
	if t, ok := l.translations[w]; ok {
		return t
	}
	return w
}

// IsTranslatable reports whether word has a Danish-to-English direction
// translation.
func (l *Lexicon) IsTranslatable(word string) bool {
	_, ok := l.translations[Normalize(word)]
	return ok
}

// IsColor reports whether name is a known color name.
func (l *Lexicon) IsColor(name string) bool {
	_, ok := l.colors[Normalize(name)]
	return ok
}

// Color returns the display value for a color name.
func (l *Lexicon) Color(name string) (RGB, bool) {
	c, ok := l.colors[Normalize(name)]
	return c, ok
}

// ColorNames returns every color name in sorted order. The returned slice is a
// copy.
func (l *Lexicon) ColorNames() []string {
	return slices.Clone(l.colorNames)
}

// IsDanish reports whether word belongs to the curated Danish vocabulary.
func (l *Lexicon) IsDanish(word string) bool {
	_, ok := l.danish[Normalize(word)]
	return ok
}

// DanishVocabulary returns the curated Danish word set in sorted order.
func (l *Lexicon) DanishVocabulary() []string {
	return sortedKeys(l.danish)
}

// DanishDirections returns the Danish direction words (translation keys) in
// sorted order.
func (l *Lexicon) DanishDirections() []string {
	return sortedKeys(l.translations)
}

// Vocabulary returns every word the lexicon knows in any table, sorted.
func (l *Lexicon) Vocabulary() []string {
	return slices.Clone(l.vocabulary)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
