package command

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball/english"
	"golang.org/x/text/unicode/norm"
)

// Token is one unit of tokenized text.
type Token struct {
	// Text is the token exactly as it appears in the NFC-normalised input.
	Text string `json:"text"`

	// Lemma is the English stem of a word token, or Text for punctuation
	// and symbols. Extraction matches on Text; Lemma is informational.
	Lemma string `json:"lemma"`
}

// Tokenize splits text into tokens. The input is first converted to Unicode
// NFC so that decomposed letters ("a" followed by a combining ring) form a
// single word rune.
//
// A word is a maximal run of letters, digits and combining marks, which may
// contain apostrophes between two such runes ("don't"). Every other
// non-space rune becomes a token of its own. Whitespace separates tokens and
// is dropped.
func Tokenize(text string) []Token {
	text = norm.NFC.String(strings.ToValidUTF8(text, ""))

	var tokens []Token
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		w := text[start:end]
		tokens = append(tokens, Token{Text: w, Lemma: english.Stem(w, false)})
		start = -1
	}

	for i, r := range text {
		switch {
		case isWordRune(r):
			if start < 0 {
				start = i
			}
		case r == '\'' && start >= 0 && nextIsWordRune(text, i+1):
			// Inner apostrophe; the word continues.
		case unicode.IsSpace(r):
			flush(i)
		default:
			flush(i)
			s := string(r)
			tokens = append(tokens, Token{Text: s, Lemma: s})
		}
	}
	flush(len(text))
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func nextIsWordRune(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return isWordRune(r)
}
