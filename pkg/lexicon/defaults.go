package lexicon

import "maps"

// DefaultTables returns a fresh copy of the built-in bilingual tables.
func DefaultTables() Tables {
	return Tables{
		ActionKeywords: []string{
			"move", "go", "step", "run", "walk", "jump", "hop", "leap", "change",
			"gå", "løb", "skift", "flyt", "springe",
		},
		ActionSynonyms: map[string]string{
			"go":      "move",
			"step":    "move",
			"run":     "move",
			"walk":    "move",
			"hop":     "jump",
			"leap":    "jump",
			"skifte":  "change",
			"gå":      "move",
			"flyt":    "move",
			"løb":     "run",
			"springe": "jump",
		},
		DirectionKeywords: []string{
			"right", "left", "up", "down",
			"højre", "venstre", "op", "ned",
		},
		DirectionTranslation: map[string]string{
			"højre":   "right",
			"venstre": "left",
			"op":      "up",
			"ned":     "down",
		},
		Colors: maps.Clone(defaultColors),
		DanishVocabulary: []string{
			"gå", "løb", "hop", "skifte", "flyt", "springe", "højre", "venstre", "op", "ned",
			"rød", "grøn", "blå", "gul", "lilla", "orange", "pink", "sort", "hvid", "grå", "farve",
		},
	}
}

var defaultColors = map[string]RGB{
	"rød":    {255, 0, 0},
	"grøn":   {0, 255, 0},
	"blå":    {0, 0, 255},
	"gul":    {255, 255, 0},
	"lilla":  {128, 0, 128},
	"orange": {255, 165, 0},
	"pink":   {255, 182, 193},
	"sort":   {0, 0, 0},
	"hvid":   {255, 255, 255},
	"grå":    {200, 200, 200},
	"red":    {255, 0, 0},
	"green":  {0, 255, 0},
	"blue":   {0, 0, 255},
	"yellow": {255, 255, 0},
	"purple": {128, 0, 128},
	"black":  {0, 0, 0},
	"white":  {255, 255, 255},
	"gray":   {200, 200, 200},
}

// Default returns a [Lexicon] built from [DefaultTables]. It panics if the
// built-in tables are invalid, which would be a programming error.
func Default() *Lexicon {
	l, err := New(DefaultTables())
	if err != nil {
		panic("lexicon: built-in tables are invalid: " + err.Error())
	}
	return l
}
