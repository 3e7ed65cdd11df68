// Package command turns a free-form English or Danish utterance into one of a
// small, fixed set of canonical game commands.
//
// The pipeline runs once per utterance and has five stages:
//
//  1. Language detection ([Detector]): any Danish vocabulary word marks the
//     utterance as Danish; otherwise it is English.
//  2. Typo correction ([Corrector]): a dictionary-constrained corrector for
//     Danish, a statistical spelling corrector for English.
//  3. Tokenization ([Tokenize]): word segmentation of the lower-cased,
//     trimmed, corrected text.
//  4. Intent extraction ([Extract]): at most one action, direction, and color
//     are pulled from the tokens, last match winning per category.
//  5. Command synthesis ([Synthesize]): a fixed decision table maps the
//     intent to a canonical command or [Unrecognized].
//
// [Normalizer] composes the stages. It holds no per-call state and the
// [lexicon.Lexicon] it reads is immutable, so one Normalizer may serve any
// number of goroutines.
package command

// Unrecognized is returned by [Normalizer.Normalize] when no rule of the
// decision table matched. It is a value, not an error: callers compare
// against it and show their own message.
const Unrecognized = "error: unrecognized command"

// Canonical commands produced by [Synthesize]. An action paired with a
// direction may also produce the literal "<action> <direction>".
const (
	MoveLeft          = "move left"
	MoveRight         = "move right"
	Jump              = "jump"
	ChangeColorPrefix = "change " + colorWord + " "
	ChangeColorRandom = ChangeColorPrefix + RandomColor
)

// RandomColor is the color argument of a color change with no named color.
const RandomColor = "random"

// Canonical action and direction words the decision table branches on.
const (
	actionChange = "change"
	actionJump   = "jump"
	dirLeft      = "left"
	dirRight     = "right"
	colorWord    = "color"
)

// Language is the detected language of an utterance.
type Language string

const (
	Danish  Language = "danish"
	English Language = "english"
)

// Intent is the (action, direction, color) triple pulled out of one
// utterance. An empty field means that category was not found.
type Intent struct {
	Action    string `json:"action,omitempty"`
	Direction string `json:"direction,omitempty"`
	Color     string `json:"color,omitempty"`
}

// Empty reports whether no category was found.
func (i Intent) Empty() bool {
	return i.Action == "" && i.Direction == "" && i.Color == ""
}

// Result records every intermediate stage of one normalization. It is what
// [Normalizer.Analyze] returns and what observers receive.
type Result struct {
	// Input is the utterance as received.
	Input string `json:"input"`

	// Language is the detected language.
	Language Language `json:"language"`

	// Corrected is the typo-corrected text, lower-cased and trimmed.
	Corrected string `json:"corrected"`

	// Tokens is the tokenization of Corrected.
	Tokens []Token `json:"tokens"`

	// Intent is the extracted triple after synonym and translation passes.
	Intent Intent `json:"intent"`

	// Command is the canonical command or [Unrecognized].
	Command string `json:"command"`
}

// Recognized reports whether the normalization produced a command.
func (r Result) Recognized() bool {
	return r.Command != Unrecognized
}
