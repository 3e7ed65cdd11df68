package command

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"strings"

	"github.com/f1monkey/spellchecker"

	"github.com/MrWong99/coinhop/pkg/lexicon"
)

// DefaultEnglishMaxErrors is the largest number of edits the English
// spelling corrector will undo in one word.
const DefaultEnglishMaxErrors = 2

// englishAlphabet is the character set the English dictionary is built on.
// Words containing anything else are never corrected.
const englishAlphabet = "abcdefghijklmnopqrstuvwxyz'"

// lexiconBoost is how many times each English lexicon word is added to the
// dictionary, so command words outrank look-alike common words.
const lexiconBoost = 10

//go:embed english_words.txt
var englishWords []byte

// EnglishCorrector is a statistical spelling corrector over a general English
// word list plus every English word of the lexicon.
type EnglishCorrector struct {
	sc *spellchecker.Spellchecker
}

var _ WordCorrector = (*EnglishCorrector)(nil)

// NewEnglishCorrector builds the English dictionary. A maxErrors below 1
// selects [DefaultEnglishMaxErrors].
func NewEnglishCorrector(lex *lexicon.Lexicon, maxErrors int) (*EnglishCorrector, error) {
	if maxErrors < 1 {
		maxErrors = DefaultEnglishMaxErrors
	}
	sc, err := spellchecker.New(englishAlphabet, spellchecker.WithMaxErrors(maxErrors))
	if err != nil {
		return nil, fmt.Errorf("command: build english spellchecker: %w", err)
	}

	s := bufio.NewScanner(bytes.NewReader(englishWords))
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sc.Add(line)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("command: read english word list: %w", err)
	}

	for _, w := range lex.Vocabulary() {
		if lex.IsDanish(w) || !inAlphabet(w) {
			continue
		}
		for range lexiconBoost {
			sc.Add(w)
		}
	}
	return &EnglishCorrector{sc: sc}, nil
}

// CorrectWord implements [WordCorrector].
func (e *EnglishCorrector) CorrectWord(word string) string {
	w := strings.ToLower(word)
	if w == "" || !inAlphabet(w) || e.sc.IsCorrect(w) {
		return word
	}
	suggestions, err := e.sc.Suggest(w, 1)
	if err != nil || len(suggestions) == 0 {
		return word
	}
	return suggestions[0]
}

func inAlphabet(w string) bool {
	for _, r := range w {
		if !strings.ContainsRune(englishAlphabet, r) {
			return false
		}
	}
	return true
}
