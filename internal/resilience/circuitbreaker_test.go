package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

var errTest = errors.New("test error")

// fakeClock is a manually advanced clock for breaker tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type transition struct{ from, to State }

func newTestBreaker(clock *fakeClock, maxFailures, halfOpenMax int) (*CircuitBreaker, *[]transition) {
	var seen []transition
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:         "whisper",
		MaxFailures:  maxFailures,
		ResetTimeout: time.Minute,
		HalfOpenMax:  halfOpenMax,
		Now:          clock.Now,
		OnStateChange: func(name string, from, to State) {
			if name != "whisper" {
				panic("unexpected breaker name " + name)
			}
			seen = append(seen, transition{from, to})
		},
	})
	return cb, &seen
}

func fail() error    { return errTest }
func succeed() error { return nil }

func TestNewCircuitBreaker_Defaults(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "test"})
	if cb.cfg.MaxFailures != DefaultMaxFailures {
		t.Errorf("MaxFailures = %d, want %d", cb.cfg.MaxFailures, DefaultMaxFailures)
	}
	if cb.cfg.ResetTimeout != DefaultResetTimeout {
		t.Errorf("ResetTimeout = %v, want %v", cb.cfg.ResetTimeout, DefaultResetTimeout)
	}
	if cb.cfg.HalfOpenMax != DefaultHalfOpenMax {
		t.Errorf("HalfOpenMax = %d, want %d", cb.cfg.HalfOpenMax, DefaultHalfOpenMax)
	}
	if cb.State() != StateClosed {
		t.Errorf("initial state = %v, want closed", cb.State())
	}
	if cb.Name() != "test" {
		t.Errorf("Name() = %q, want %q", cb.Name(), "test")
	}
}

func TestCircuitBreaker_ClosedToOpen(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	cb, seen := newTestBreaker(clock, 3, 1)

	for range 3 {
		_ = cb.Do(fail)
	}
	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open after 3 failures", cb.State())
	}

	called := false
	err := cb.Do(func() error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Error("fn called while open")
	}
	if len(*seen) != 1 || (*seen)[0] != (transition{StateClosed, StateOpen}) {
		t.Errorf("transitions = %v, want [closed->open]", *seen)
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	t.Parallel()

	cb, _ := newTestBreaker(newFakeClock(), 3, 1)

	_ = cb.Do(fail)
	_ = cb.Do(fail)
	_ = cb.Do(succeed)
	_ = cb.Do(fail)
	_ = cb.Do(fail)

	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want closed (success should reset counter)", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenToClosed(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	cb, seen := newTestBreaker(clock, 2, 2)

	_ = cb.Do(fail)
	_ = cb.Do(fail)

	clock.Advance(time.Minute)
	if cb.State() != StateHalfOpen {
		t.Fatalf("state = %v, want half-open after timeout", cb.State())
	}

	for i := range 2 {
		if err := cb.Do(succeed); err != nil {
			t.Fatalf("probe %d: unexpected error: %v", i, err)
		}
	}
	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want closed after successful probes", cb.State())
	}

	want := []transition{
		{StateClosed, StateOpen},
		{StateOpen, StateHalfOpen},
		{StateHalfOpen, StateClosed},
	}
	if len(*seen) != len(want) {
		t.Fatalf("transitions = %v, want %v", *seen, want)
	}
	for i := range want {
		if (*seen)[i] != want[i] {
			t.Errorf("transition[%d] = %v, want %v", i, (*seen)[i], want[i])
		}
	}
}

func TestCircuitBreaker_HalfOpenToOpen(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	cb, _ := newTestBreaker(clock, 2, 3)

	_ = cb.Do(fail)
	_ = cb.Do(fail)
	clock.Advance(time.Minute)

	if err := cb.Do(fail); !errors.Is(err, errTest) {
		t.Fatalf("probe err = %v, want errTest", err)
	}
	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open after half-open failure", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenProbeBudget(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	cb, _ := newTestBreaker(clock, 1, 1)

	_ = cb.Do(fail)
	clock.Advance(time.Minute)

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- cb.Do(func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	if err := cb.Do(succeed); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("second probe err = %v, want ErrCircuitOpen", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first probe: %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("state = %v, want closed", cb.State())
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	t.Parallel()

	cb, _ := newTestBreaker(newFakeClock(), 2, 1)
	_ = cb.Do(fail)
	_ = cb.Do(fail)
	if cb.State() != StateOpen {
		t.Fatal("expected open")
	}

	cb.Reset()
	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want closed after reset", cb.State())
	}
	if err := cb.Do(succeed); err != nil {
		t.Fatalf("unexpected error after reset: %v", err)
	}
}

func TestCircuitBreaker_CancellationIsNotAFailure(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	cb, _ := newTestBreaker(clock, 1, 1)
	cancelled := func() error { return context.Canceled }

	if err := cb.Do(cancelled); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled passed through", err)
	}
	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want closed after a cancelled call", cb.State())
	}

	// A cancelled probe gives its slot back.
	_ = cb.Do(fail)
	clock.Advance(time.Minute)
	_ = cb.Do(cancelled)
	if err := cb.Do(succeed); err != nil {
		t.Fatalf("probe after cancelled probe: %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("state = %v, want closed", cb.State())
	}
}

func TestCircuitBreaker_CustomIsFailure(t *testing.T) {
	t.Parallel()

	errBusy := errors.New("busy")
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures: 1,
		IsFailure:   func(err error) bool { return !errors.Is(err, errBusy) },
	})
	_ = cb.Do(func() error { return errBusy })
	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want closed for an ignored error", cb.State())
	}
	_ = cb.Do(fail)
	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state State
		want  string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
