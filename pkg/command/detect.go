package command

import (
	"strings"

	"github.com/MrWong99/coinhop/pkg/lexicon"
)

// Detector classifies an utterance as Danish or English.
//
// Implementations must be safe for concurrent use.
type Detector interface {
	Detect(text string) Language
}

// VocabularyDetector classifies text as Danish when at least one
// whitespace-separated word belongs to the lexicon's curated Danish
// vocabulary. A single Danish word amid English text is enough; the Danish
// corrector is the minority path and only ever snaps words onto the small
// Danish dictionary.
type VocabularyDetector struct {
	lex *lexicon.Lexicon
}

var _ Detector = (*VocabularyDetector)(nil)

// NewVocabularyDetector returns a [VocabularyDetector] backed by lex.
func NewVocabularyDetector(lex *lexicon.Lexicon) *VocabularyDetector {
	return &VocabularyDetector{lex: lex}
}

// Detect implements [Detector].
func (d *VocabularyDetector) Detect(text string) Language {
	return DetectLanguage(d.lex, text)
}

// DetectLanguage is the function form of [VocabularyDetector.Detect].
func DetectLanguage(lex *lexicon.Lexicon, text string) Language {
	for _, w := range strings.Fields(text) {
		if lex.IsDanish(w) {
			return Danish
		}
	}
	return English
}
