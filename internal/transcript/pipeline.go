// Package transcript snaps speech-to-text output onto the command vocabulary
// before it reaches the normalizer.
//
// Recognisers trained on general speech mishear short command words ("left"
// comes back as "laughed", "højre" as "høre"). The [CorrectionPipeline]
// compares every transcript word against the lexicon vocabulary with a
// [PhoneticMatcher] and substitutes sufficiently similar vocabulary words.
// Typed input never passes through this package; the normalizer's own
// spelling correction covers keyboard typos.
//
// Each [Correction] records the substitution and its confidence, so callers
// can log or display what was changed.
package transcript

import "context"

// MethodPhonetic is the [Correction.Method] of substitutions made by a
// [PhoneticMatcher].
const MethodPhonetic = "phonetic"

// Correction captures a single word-level substitution made by the pipeline.
type Correction struct {
	// Original is the word as produced by the recogniser.
	Original string `json:"original"`

	// Corrected is the vocabulary word that replaced it.
	Corrected string `json:"corrected"`

	// Confidence is the matcher's similarity score in [0.0, 1.0].
	Confidence float64 `json:"confidence"`

	// Method names the stage that produced this substitution.
	Method string `json:"method"`
}

// CorrectedTranscript is the output of a [Pipeline.Correct] call.
type CorrectedTranscript struct {
	// Original is the transcript text as received.
	Original string `json:"original"`

	// Corrected is the text with all substitutions applied, words joined by
	// single spaces.
	Corrected string `json:"corrected"`

	// Corrections lists the substitutions in transcript order. An empty
	// (non-nil) slice means nothing was changed.
	Corrections []Correction `json:"corrections"`
}

// Pipeline corrects a raw transcript against a vocabulary.
//
// Implementations must be safe for concurrent use.
type Pipeline interface {
	// Correct returns a non-nil *CorrectedTranscript on success. When no
	// corrections are needed, Corrected equals the whitespace-normalised
	// input and Corrections is empty.
	Correct(ctx context.Context, text string, vocabulary []string) (*CorrectedTranscript, error)
}

// PhoneticMatcher resolves a single word to the vocabulary word it most
// likely is. It runs in-process with no network calls.
//
// Implementations must be safe for concurrent use.
type PhoneticMatcher interface {
	// Match returns the best vocabulary word for word.
	//
	// When matched is false, corrected must equal word unchanged and
	// confidence must be 0.
	Match(word string, vocabulary []string) (corrected string, confidence float64, matched bool)
}
