package health

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrWong99/coinhop/internal/resilience"
	"github.com/MrWong99/coinhop/pkg/lexicon"
)

// HealthReporter is implemented by components that track backend health
// internally, such as a speech fallback group.
type HealthReporter interface {
	Healthy() bool
}

// StatusReporter is a [HealthReporter] that can also list the breaker state
// of each of its backends.
type StatusReporter interface {
	HealthReporter
	Status() []resilience.EntryStatus
}

// LexiconChecker fails when lex is nil or has no action or color words, which
// would leave every command unrecognised.
func LexiconChecker(lex *lexicon.Lexicon) Checker {
	return Checker{
		Name: "lexicon",
		Check: func(context.Context) error {
			if lex == nil {
				return errors.New("not loaded")
			}
			if len(lex.CanonicalActions()) == 0 {
				return errors.New("no actions")
			}
			if len(lex.ColorNames()) == 0 {
				return errors.New("no colors")
			}
			return nil
		},
	}
}

// ReporterChecker wraps a [HealthReporter] under name. A nil reporter is
// treated as an optional component that is not configured and always passes.
// A [StatusReporter] also reports per-backend breaker states.
func ReporterChecker(name string, r HealthReporter) Checker {
	var detail func() any
	if sr, ok := r.(StatusReporter); ok {
		detail = func() any { return sr.Status() }
	}
	return Checker{
		Detail: detail,
		Name: name,
		Check: func(ctx context.Context) error {
			if r == nil {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if !r.Healthy() {
				return fmt.Errorf("all %s backends unavailable", name)
			}
			return nil
		},
	}
}
