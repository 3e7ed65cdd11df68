package lexicon

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a lexicon YAML file at path. Sections missing from the file keep
// their built-in values, so an override file may replace only, say, the color
// table.
func Load(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon: open %q: %w", path, err)
	}
	defer f.Close()

	l, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("lexicon: parse %q: %w", path, err)
	}
	return l, nil
}

// LoadFromReader decodes lexicon YAML from r on top of [DefaultTables] and
// validates the result.
func LoadFromReader(r io.Reader) (*Lexicon, error) {
	var override Tables
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&override); err != nil && err != io.EOF {
		return nil, fmt.Errorf("lexicon: decode yaml: %w", err)
	}

	t := DefaultTables()
	if override.ActionKeywords != nil {
		t.ActionKeywords = override.ActionKeywords
	}
	if override.ActionSynonyms != nil {
		t.ActionSynonyms = override.ActionSynonyms
	}
	if override.DirectionKeywords != nil {
		t.DirectionKeywords = override.DirectionKeywords
	}
	if override.DirectionTranslation != nil {
		t.DirectionTranslation = override.DirectionTranslation
	}
	if override.Colors != nil {
		t.Colors = override.Colors
	}
	if override.DanishVocabulary != nil {
		t.DanishVocabulary = override.DanishVocabulary
	}
	return New(t)
}
