package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/text/language"

	"github.com/MrWong99/coinhop/internal/config"
	"github.com/MrWong99/coinhop/internal/observe"
	"github.com/MrWong99/coinhop/internal/resilience"
	"github.com/MrWong99/coinhop/internal/speech"
	"github.com/MrWong99/coinhop/internal/speech/whisper"
)

// DefaultRegistry returns a registry with every built-in speech backend.
func DefaultRegistry() *config.Registry {
	reg := config.NewRegistry()
	reg.RegisterBackend("whisper", func(e config.BackendEntry) (speech.Transcriber, error) {
		var opts []whisper.Option
		if e.Model != "" {
			opts = append(opts, whisper.WithModel(e.Model))
		}
		return whisper.New(e.BaseURL, opts...)
	})
	return reg
}

// initSpeech builds the backend fallback chain and the recognizer over it.
// It returns nil when no backend is configured.
func (a *App) initSpeech(_ context.Context) (*speech.Recognizer, error) {
	sc := a.cfg.Speech
	if len(sc.Backends) == 0 {
		slog.Info("no speech backends configured, spoken commands disabled")
		return nil, nil
	}

	fcfg := resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			MaxFailures:  sc.CircuitBreaker.MaxFailures,
			ResetTimeout: sc.CircuitBreaker.ResetTimeout,
			HalfOpenMax:  sc.CircuitBreaker.HalfOpenMax,
			OnStateChange: func(name string, from, to resilience.State) {
				slog.Warn("speech backend breaker changed state", "backend", name, "from", from, "to", to)
				a.metrics.RecordBreakerTransition(context.Background(), name, to.String())
			},
		},
	}

	for i, entry := range sc.Backends {
		t, err := a.registry.CreateBackend(entry)
		if err != nil {
			return nil, fmt.Errorf("backend %q: %w", entry.Name, err)
		}
		if c, ok := t.(io.Closer); ok {
			a.closers = append(a.closers, c.Close)
		}
		t = &instrumented{name: entry.Name, next: t, metrics: a.metrics}
		if i == 0 {
			a.backends = speech.NewFallback(t, entry.Name, fcfg)
		} else {
			a.backends.AddFallback(entry.Name, t)
		}
		slog.Info("registered speech backend", "name", entry.Name, "provider", entry.Provider)
	}

	tags, err := speech.ParseLanguages(sc.Languages)
	if err != nil {
		return nil, err
	}
	opts := []speech.Option{
		speech.WithTimeout(sc.Timeout),
		speech.WithLanguageTags(tags...),
	}
	if sc.SilenceRMS > 0 {
		opts = append(opts, speech.WithSilenceThreshold(sc.SilenceRMS))
	}
	return speech.NewRecognizer(a.backends, opts...), nil
}

// instrumented records latency and outcome of every call to next.
type instrumented struct {
	name    string
	next    speech.Transcriber
	metrics *observe.Metrics
}

var _ speech.Transcriber = (*instrumented)(nil)

func (t *instrumented) Transcribe(ctx context.Context, audio speech.Audio, lang language.Tag) (string, error) {
	start := time.Now()
	text, err := t.next.Transcribe(ctx, audio, lang)
	status := "ok"
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status = "timeout"
	case err != nil:
		status = "error"
	case text == "":
		status = "empty"
	}
	t.metrics.RecordSpeech(ctx, t.name, status, time.Since(start))
	return text, err
}
