package game

import (
	"context"
	"errors"
	"time"
)

// DefaultTickRate is the physics rate in ticks per second.
const DefaultTickRate = 30

// Run calls [World.Tick] rate times per second until ctx is done. It returns
// nil on cancellation.
func (w *World) Run(ctx context.Context, rate int) error {
	if rate <= 0 {
		return errors.New("game: tick rate must be positive")
	}
	t := time.NewTicker(time.Second / time.Duration(rate))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			w.Tick()
		}
	}
}

// Settle ticks until the player is grounded or max ticks have passed, and
// returns the number of ticks run. Headless front ends without a running
// loop use it to finish a jump immediately.
func (w *World) Settle(max int) int {
	for i := range max {
		if w.Snapshot().Player.Grounded {
			return i
		}
		w.Tick()
	}
	return max
}
