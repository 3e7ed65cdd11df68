package speech

import (
	"context"

	"golang.org/x/text/language"

	"github.com/MrWong99/coinhop/internal/resilience"
)

// Fallback implements [Transcriber] with automatic failover across several
// backends. Each backend has its own circuit breaker, so a recogniser that
// keeps failing is skipped until its reset timeout elapses.
//
// An empty transcript is a successful call and does not fail over.
type Fallback struct {
	group *resilience.FallbackGroup[Transcriber]
}

var _ Transcriber = (*Fallback)(nil)

// NewFallback creates a [Fallback] with primary as the preferred backend.
func NewFallback(primary Transcriber, primaryName string, cfg resilience.FallbackConfig) *Fallback {
	return &Fallback{
		group: resilience.NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional backend, tried after those added
// before it.
func (f *Fallback) AddFallback(name string, t Transcriber) {
	f.group.AddFallback(name, t)
}

// Transcribe implements [Transcriber].
func (f *Fallback) Transcribe(ctx context.Context, audio Audio, lang language.Tag) (string, error) {
	return resilience.Call(ctx, f.group, func(ctx context.Context, t Transcriber) (string, error) {
		return t.Transcribe(ctx, audio, lang)
	})
}

// Healthy reports whether any backend currently admits calls.
func (f *Fallback) Healthy() bool {
	return f.group.Healthy()
}

// Status returns the breaker state of every backend.
func (f *Fallback) Status() []resilience.EntryStatus {
	return f.group.Status()
}
