package command

import "github.com/MrWong99/coinhop/pkg/lexicon"

// Extract scans tokens left to right and records, per category, the last
// token that matched it. A token is tested for action, then direction, then
// color, and counts toward the first category it matches only.
//
// Action tokens are resolved through the synonym table as they are seen.
// After the scan a remaining synonym is resolved once more, which turns a
// chained synonym such as "løb" (to "run", then "move") into its final
// canonical form. Danish directions are translated to English; colors are
// kept as written.
func Extract(lex *lexicon.Lexicon, tokens []Token) Intent {
	var in Intent
	for _, t := range tokens {
		w := t.Text
		switch {
		case lex.IsAction(w):
			in.Action = lex.CanonicalAction(w)
		case lex.IsDirection(w):
			in.Direction = w
		case lex.IsColor(w):
			in.Color = w
		}
	}

	if in.Action != "" && lex.IsSynonym(in.Action) {
		in.Action = lex.CanonicalAction(in.Action)
	}
	if in.Direction != "" && lex.IsTranslatable(in.Direction) {
		in.Direction = lex.TranslateDirection(in.Direction)
	}
	return in
}
