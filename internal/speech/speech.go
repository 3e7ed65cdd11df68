// Package speech turns a recorded utterance into a transcript by asking a
// speech-to-text backend for each configured language in turn.
//
// The normalizer never sees speech failures: [Recognizer.Recognize] either
// returns a non-empty, lower-cased transcript or one of two sentinel errors,
// [ErrCouldNotUnderstand] and [ErrServiceUnavailable], which callers turn into
// user-facing text with [Message].
package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/language"
)

var (
	// ErrCouldNotUnderstand means every language attempt returned an empty
	// transcript.
	ErrCouldNotUnderstand = errors.New("speech: could not understand audio")

	// ErrServiceUnavailable means a backend could not be reached or failed.
	// The backend error is wrapped.
	ErrServiceUnavailable = errors.New("speech: recognition service unavailable")
)

// User-facing messages for the two recognition failures.
const (
	MsgCouldNotUnderstand = "Could not understand speech. Please try again."
	MsgServiceUnavailable = "Speech recognition service unavailable."
)

// Message maps a [Recognizer.Recognize] error to the text shown to the
// player. It returns "" for nil and the error text for anything else.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCouldNotUnderstand):
		return MsgCouldNotUnderstand
	case errors.Is(err, ErrServiceUnavailable):
		return MsgServiceUnavailable
	default:
		return err.Error()
	}
}

// Audio is a mono or interleaved 16-bit signed little-endian PCM recording.
type Audio struct {
	PCM        []byte
	SampleRate int
	Channels   int
}

// Duration returns the playback length of the recording.
func (a Audio) Duration() time.Duration {
	if a.SampleRate <= 0 || a.Channels <= 0 {
		return 0
	}
	samples := len(a.PCM) / 2 / a.Channels
	return time.Duration(samples) * time.Second / time.Duration(a.SampleRate)
}

// Transcriber is a speech-to-text backend.
//
// Transcribe returns the recognised text for audio spoken in lang, a BCP 47
// tag such as "da-DK". An empty string with a nil error means nothing
// intelligible was heard. Implementations must be safe for concurrent use.
type Transcriber interface {
	Transcribe(ctx context.Context, audio Audio, lang language.Tag) (string, error)
}

// Result is a successful recognition.
type Result struct {
	// Transcript is trimmed and lower-cased.
	Transcript string `json:"transcript"`

	// Language is the language attempt that produced Transcript.
	Language string `json:"language"`
}

// DefaultLanguages is the attempt order used when none is configured:
// Danish first, then American English.
var DefaultLanguages = []string{"da-DK", "en-US"}

// DefaultTimeout bounds one backend attempt.
const DefaultTimeout = 10 * time.Second

// Option configures a [Recognizer].
type Option func(*Recognizer)

// WithTimeout sets the per-attempt timeout. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(r *Recognizer) { r.timeout = d }
}

// WithLanguageTags replaces the language attempt order.
func WithLanguageTags(tags ...language.Tag) Option {
	return func(r *Recognizer) { r.languages = tags }
}

// WithSilenceThreshold makes [Recognizer.Recognize] report silent audio as
// [ErrCouldNotUnderstand] without calling the backend. rms is compared
// against [RMS]; zero disables the check.
func WithSilenceThreshold(rms float64) Option {
	return func(r *Recognizer) { r.silenceRMS = rms }
}

// Recognizer runs one [Transcriber] over several languages.
type Recognizer struct {
	backend    Transcriber
	languages  []language.Tag
	timeout    time.Duration
	silenceRMS float64
}

// ParseLanguages parses BCP 47 tags, reporting the first invalid one.
func ParseLanguages(codes []string) ([]language.Tag, error) {
	tags := make([]language.Tag, 0, len(codes))
	for _, c := range codes {
		t, err := language.Parse(c)
		if err != nil {
			return nil, fmt.Errorf("speech: invalid language %q: %w", c, err)
		}
		tags = append(tags, t)
	}
	return tags, nil
}

func defaultTags() []language.Tag {
	tags := make([]language.Tag, len(DefaultLanguages))
	for i, c := range DefaultLanguages {
		tags[i] = language.MustParse(c)
	}
	return tags
}

// NewRecognizer creates a [Recognizer] over backend. Without
// [WithLanguageTags] it tries [DefaultLanguages] in order.
func NewRecognizer(backend Transcriber, opts ...Option) *Recognizer {
	r := &Recognizer{
		backend:   backend,
		languages: defaultTags(),
		timeout:   DefaultTimeout,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Recognize transcribes audio in each configured language in order and
// returns the first non-empty transcript. A backend failure ends the attempt
// sequence with [ErrServiceUnavailable]; if every attempt is empty the
// result is [ErrCouldNotUnderstand].
func (r *Recognizer) Recognize(ctx context.Context, audio Audio) (Result, error) {
	if r.silenceRMS > 0 && IsSilent(audio, r.silenceRMS) {
		slog.Debug("speech: silent recording", "duration", audio.Duration())
		return Result{}, ErrCouldNotUnderstand
	}
	for _, lang := range r.languages {
		text, err := r.attempt(ctx, audio, lang)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{}, ctxErr
			}
			slog.Warn("speech: backend failed", "language", lang.String(), "err", err)
			return Result{}, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
		}
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" {
			slog.Debug("speech: empty transcript", "language", lang.String())
			continue
		}
		return Result{Transcript: text, Language: lang.String()}, nil
	}
	return Result{}, ErrCouldNotUnderstand
}

func (r *Recognizer) attempt(ctx context.Context, audio Audio, lang language.Tag) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.backend.Transcribe(ctx, audio, lang)
}
