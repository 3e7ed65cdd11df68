package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrAllFailed is returned by [Call] when no entry of a [FallbackGroup]
// produced a result.
var ErrAllFailed = errors.New("resilience: all backends failed")

// FallbackConfig is the breaker template for every entry of a
// [FallbackGroup]. The template's Name is replaced by the entry name.
type FallbackConfig struct {
	CircuitBreaker CircuitBreakerConfig
}

// EntryStatus reports the breaker state of one [FallbackGroup] entry.
type EntryStatus struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

type entry[T any] struct {
	value   T
	breaker *CircuitBreaker
}

// FallbackGroup holds interchangeable backends in preference order, each
// behind its own [CircuitBreaker]. Register every entry before sharing the
// group between goroutines.
type FallbackGroup[T any] struct {
	cfg     FallbackConfig
	entries []entry[T]
}

// NewFallbackGroup creates a group whose first entry is primary.
func NewFallbackGroup[T any](primary T, primaryName string, cfg FallbackConfig) *FallbackGroup[T] {
	fg := &FallbackGroup[T]{cfg: cfg}
	fg.AddFallback(primaryName, primary)
	return fg
}

// AddFallback appends v; it is tried after every entry added before it.
func (fg *FallbackGroup[T]) AddFallback(name string, v T) {
	bc := fg.cfg.CircuitBreaker
	bc.Name = name
	fg.entries = append(fg.entries, entry[T]{value: v, breaker: NewCircuitBreaker(bc)})
}

func (fg *FallbackGroup[T]) Len() int { return len(fg.entries) }

// Status returns the breaker state of each entry in preference order.
func (fg *FallbackGroup[T]) Status() []EntryStatus {
	out := make([]EntryStatus, 0, len(fg.entries))
	for _, e := range fg.entries {
		out = append(out, EntryStatus{Name: e.breaker.Name(), State: e.breaker.State().String()})
	}
	return out
}

// Healthy reports whether any entry's breaker would admit a call.
func (fg *FallbackGroup[T]) Healthy() bool {
	for _, e := range fg.entries {
		if e.breaker.State() != StateOpen {
			return true
		}
	}
	return false
}

// Call runs fn against the entries of fg in order and returns the first
// success. Entries with an open breaker are skipped. Once ctx is done no
// further entry is tried and ctx's error is returned. Otherwise, when every
// entry fails, the error wraps [ErrAllFailed] and the last entry's error.
//
// Call is a function rather than a method because methods cannot declare
// their own type parameters.
func Call[T, R any](ctx context.Context, fg *FallbackGroup[T], fn func(context.Context, T) (R, error)) (R, error) {
	var zero R
	lastErr := errors.New("no backends registered")
	for _, e := range fg.entries {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		var res R
		err := e.breaker.Do(func() error {
			var err error
			res, err = fn(ctx, e.value)
			return err
		})
		switch {
		case err == nil:
			return res, nil
		case errors.Is(err, ErrCircuitOpen):
			slog.Debug("resilience: backend skipped, circuit open", "backend", e.breaker.Name())
		case ctx.Err() != nil:
			return zero, err
		default:
			slog.Warn("resilience: backend failed, trying next", "backend", e.breaker.Name(), "err", err)
		}
		lastErr = err
	}
	return zero, fmt.Errorf("%w: %w", ErrAllFailed, lastErr)
}
