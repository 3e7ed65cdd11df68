package game

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/MrWong99/coinhop/pkg/command"
	"github.com/MrWong99/coinhop/pkg/lexicon"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	w := New(lexicon.Default(), WithRand(rand.New(rand.NewPCG(1, 2))))
	// Park the coin in the far corner so it does not interfere.
	w.state.Coin = Coin{X: ScreenWidth - CoinSize, Y: coinY}
	return w
}

func TestNew_InitialState(t *testing.T) {
	t.Parallel()

	s := New(lexicon.Default()).Snapshot()
	if s.Player.X != 375 || s.Player.Y != 450 || !s.Player.Grounded {
		t.Errorf("player = %+v, want standing at (375, 450)", s.Player)
	}
	if s.Coin.Y != 450 || s.Coin.X < 0 || s.Coin.X > ScreenWidth-CoinSize {
		t.Errorf("coin = %+v, want on the ground line within the screen", s.Coin)
	}
	if s.Color.Hex != "#000000" || s.Score != 0 {
		t.Errorf("color/score = %+v/%d, want black/0", s.Color, s.Score)
	}
}

func TestApply_Moves(t *testing.T) {
	t.Parallel()

	w := newTestWorld(t)
	if err := w.Apply("move left"); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if x := w.Snapshot().Player.X; x != 325 {
		t.Errorf("x after move left = %d, want 325", x)
	}
	if err := w.Apply("move right"); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if x := w.Snapshot().Player.X; x != 375 {
		t.Errorf("x after move right = %d, want 375", x)
	}
}

func TestApply_MoveClampsToScreen(t *testing.T) {
	t.Parallel()

	w := newTestWorld(t)
	for range 20 {
		_ = w.Apply("move left")
	}
	if x := w.Snapshot().Player.X; x != 0 {
		t.Errorf("x = %d, want 0", x)
	}

	w.state.Coin = Coin{X: 0, Y: coinY}
	for range 20 {
		_ = w.Apply("move right")
	}
	if x := w.Snapshot().Player.X; x != ScreenWidth-PlayerSize {
		t.Errorf("x = %d, want %d", x, ScreenWidth-PlayerSize)
	}
}

func TestApply_JumpAndGravity(t *testing.T) {
	t.Parallel()

	w := newTestWorld(t)
	if err := w.Apply("jump"); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	s := w.Snapshot()
	if s.Player.Grounded || s.Player.DY != JumpPower {
		t.Fatalf("player = %+v, want airborne with dy %v", s.Player, JumpPower)
	}

	// A second jump while airborne is accepted but changes nothing.
	if err := w.Apply("jump"); err != nil {
		t.Fatalf("Apply(jump airborne): %v", err)
	}
	if got := w.Snapshot().Player; got != s.Player {
		t.Errorf("airborne jump changed player: %+v -> %+v", s.Player, got)
	}

	w.Tick()
	p := w.Snapshot().Player
	if p.Y != 430 || p.DY != JumpPower+Gravity {
		t.Errorf("after one tick = %+v, want y 430 dy %v", p, JumpPower+Gravity)
	}

	n := w.Settle(1000)
	if n == 0 || n == 1000 {
		t.Fatalf("Settle ran %d ticks", n)
	}
	p = w.Snapshot().Player
	if !p.Grounded || p.Y != groundY || p.DY != 0 {
		t.Errorf("after landing = %+v, want grounded at %v", p, float64(groundY))
	}
}

func TestApply_ChangeColor(t *testing.T) {
	t.Parallel()

	w := newTestWorld(t)
	if err := w.Apply("change color rød"); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	c := w.Snapshot().Color
	if c.Name != "rød" || c.Hex != "#ff0000" {
		t.Errorf("color = %+v, want rød #ff0000", c)
	}
	if c.RGB() != (lexicon.RGB{R: 255}) {
		t.Errorf("RGB = %+v", c.RGB())
	}

	if err := w.Apply("change color random"); err != nil {
		t.Fatalf("Apply(random): %v", err)
	}
	if name := w.Snapshot().Color.Name; !lexicon.Default().IsColor(name) {
		t.Errorf("random color %q is not a lexicon color", name)
	}
}

func TestApply_Rejections(t *testing.T) {
	t.Parallel()

	w := newTestWorld(t)
	before := w.Snapshot()

	if err := w.Apply(command.Unrecognized); !errors.Is(err, ErrUnrecognized) {
		t.Errorf("Apply(unrecognized) = %v, want ErrUnrecognized", err)
	}
	if err := w.Apply("change color mauve"); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("Apply(mauve) = %v, want ErrInvalidColor", err)
	}
	if got := w.Snapshot(); got != before {
		t.Errorf("rejected commands changed state: %+v -> %+v", before, got)
	}
}

func TestApply_UnhandledCommandIsAccepted(t *testing.T) {
	t.Parallel()

	w := newTestWorld(t)
	before := w.Snapshot()
	if err := w.Apply("move up"); err != nil {
		t.Fatalf("Apply(move up) = %v, want nil", err)
	}
	if got := w.Snapshot(); got != before {
		t.Errorf("move up changed state: %+v -> %+v", before, got)
	}
}

func TestApply_CollectsCoin(t *testing.T) {
	t.Parallel()

	w := newTestWorld(t)
	w.state.Coin = Coin{X: 300, Y: coinY}

	if err := w.Apply("move left"); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	s := w.Snapshot()
	if s.Score != 1 {
		t.Fatalf("score = %d, want 1", s.Score)
	}
	if overlaps(float64(s.Player.X), s.Player.Y, float64(s.Coin.X), float64(s.Coin.Y)) {
		t.Errorf("relocated coin %+v overlaps player %+v", s.Coin, s.Player)
	}
	if s.Coin.Y != coinY {
		t.Errorf("coin y = %d, want %d", s.Coin.Y, coinY)
	}
}

func TestWithCollectHook(t *testing.T) {
	t.Parallel()

	var scores []int
	w := New(lexicon.Default(),
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithCollectHook(func(score int) { scores = append(scores, score) }),
	)
	w.state.Coin = Coin{X: 300, Y: coinY}
	if err := w.Apply("move left"); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(scores) != 1 || scores[0] != 1 {
		t.Errorf("hook scores = %v, want [1]", scores)
	}
}

func TestApply_RejectedColorDoesNotCollect(t *testing.T) {
	t.Parallel()

	w := newTestWorld(t)
	w.state.Coin = Coin{X: 375, Y: coinY}
	if err := w.Apply("change color mauve"); !errors.Is(err, ErrInvalidColor) {
		t.Fatalf("Apply = %v, want ErrInvalidColor", err)
	}
	if s := w.Snapshot().Score; s != 0 {
		t.Errorf("score = %d, want 0", s)
	}
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	w := newTestWorld(t)
	ch, cancel := w.Subscribe()
	defer cancel()

	_ = w.Apply("move left")
	_ = w.Apply("move left")

	select {
	case s := <-ch:
		if s.Player.X != 275 {
			t.Errorf("latest snapshot x = %d, want 275", s.Player.X)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot received")
	}

	cancel()
	cancel()
	_ = w.Apply("move left")
	select {
	case s := <-ch:
		t.Errorf("received %+v after cancel", s)
	default:
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	w := newTestWorld(t)
	if err := w.Run(context.Background(), 0); err == nil {
		t.Fatal("Run with rate 0: want error")
	}

	_ = w.Apply("jump")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, 240) }()

	deadline := time.After(5 * time.Second)
	for !w.Snapshot().Player.Grounded {
		select {
		case <-deadline:
			t.Fatal("player never landed")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}
