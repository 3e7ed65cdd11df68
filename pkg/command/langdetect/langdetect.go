// Package langdetect provides a statistical [command.Detector] backed by
// lingua-go, restricted to English and Danish.
package langdetect

import (
	"strings"

	"github.com/pemistahl/lingua-go"

	"github.com/MrWong99/coinhop/pkg/command"
)

// MinTextLength is the shortest trimmed input, in bytes, that is classified
// statistically. Shorter input, which is most typed commands, goes to the
// fallback detector.
const MinTextLength = 7

// Detector classifies text with lingua-go's n-gram models.
type Detector struct {
	detector lingua.LanguageDetector
	fallback command.Detector
}

var _ command.Detector = (*Detector)(nil)

// New builds a [Detector]. fallback handles short input and input lingua
// cannot classify; when nil, such input is reported as English.
//
// Building loads the English and Danish language models, which takes a
// noticeable amount of time and memory. Build one detector at startup and
// share it.
func New(fallback command.Detector) *Detector {
	d := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.English, lingua.Danish).
		WithPreloadedLanguageModels().
		Build()
	return &Detector{detector: d, fallback: fallback}
}

// Detect implements [command.Detector].
func (d *Detector) Detect(text string) command.Language {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < MinTextLength {
		return d.fallbackDetect(text)
	}
	lang, ok := d.detector.DetectLanguageOf(trimmed)
	if !ok {
		return d.fallbackDetect(text)
	}
	if lang == lingua.Danish {
		return command.Danish
	}
	return command.English
}

func (d *Detector) fallbackDetect(text string) command.Language {
	if d.fallback == nil {
		return command.English
	}
	return d.fallback.Detect(text)
}
