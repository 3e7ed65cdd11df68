package command

import (
	"slices"
	"unicode/utf8"

	"github.com/antzucaro/matchr"

	"github.com/MrWong99/coinhop/pkg/lexicon"
)

// DefaultDanishMaxDistance is the largest edit distance at which a Danish word
// is snapped onto the dictionary.
const DefaultDanishMaxDistance = 2

// DanishCorrector snaps words onto a closed Danish dictionary: the lexicon's
// Danish vocabulary plus its Danish direction words.
//
// A word already in the dictionary is returned unchanged, as is any word a
// canonical command can contain (canonical actions, directions, color names,
// "color" and "random"), so normalizing a command twice is stable. Otherwise
// the dictionary word with the smallest Damerau-Levenshtein distance wins,
// provided that distance does not exceed the configured maximum. Every
// dictionary word carries the same frequency, so ties go to the
// alphabetically first word. A word with no candidate in range is returned
// unchanged.
type DanishCorrector struct {
	words   []string
	known   map[string]struct{}
	maxDist int
}

var _ WordCorrector = (*DanishCorrector)(nil)

// NewDanishCorrector builds a [DanishCorrector] over lex. A maxDist below 1
// selects [DefaultDanishMaxDistance].
func NewDanishCorrector(lex *lexicon.Lexicon, maxDist int) *DanishCorrector {
	if maxDist < 1 {
		maxDist = DefaultDanishMaxDistance
	}
	known := make(map[string]struct{})
	for _, w := range lex.DanishVocabulary() {
		known[w] = struct{}{}
	}
	for _, w := range lex.DanishDirections() {
		known[w] = struct{}{}
	}
	words := sortedKeys(known)

	for _, list := range [][]string{lex.CanonicalActions(), lex.DirectionKeywords(), lex.ColorNames()} {
		for _, w := range list {
			known[w] = struct{}{}
		}
	}
	known[colorWord] = struct{}{}
	known[RandomColor] = struct{}{}

	return &DanishCorrector{
		words:   words,
		known:   known,
		maxDist: maxDist,
	}
}

// CorrectWord implements [WordCorrector].
func (d *DanishCorrector) CorrectWord(word string) string {
	w := lexicon.Normalize(word)
	if _, ok := d.known[w]; ok || w == "" {
		return w
	}

	best, bestDist := "", d.maxDist+1
	for _, cand := range d.words {
		// Rune counts bound the distance from below.
		if diff := utf8.RuneCountInString(cand) - utf8.RuneCountInString(w); diff > d.maxDist || -diff > d.maxDist {
			continue
		}
		if dist := matchr.DamerauLevenshtein(w, cand); dist < bestDist {
			best, bestDist = cand, dist
		}
	}
	if best == "" {
		return word
	}
	return best
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
