// Package game holds the coin-collecting world that canonical commands act
// on: a square player on a ground line, one coin, a score, and a color.
//
// The world is headless. Renderers (the REPL, the HTTP API, websocket
// clients) read [Snapshot] values and never touch the world directly.
package game

import (
	"errors"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/MrWong99/coinhop/pkg/command"
	"github.com/MrWong99/coinhop/pkg/lexicon"
)

// World geometry and physics, in pixels and pixels per tick.
const (
	ScreenWidth  = 800
	ScreenHeight = 600
	GroundHeight = 100
	PlayerSize   = 50
	CoinSize     = 50

	Step      = 50
	JumpPower = -20.0
	Gravity   = 1.5

	// groundY is the player's y when standing.
	groundY = ScreenHeight - GroundHeight - PlayerSize

	// coinY is the coin's fixed y on the ground line.
	coinY = ScreenHeight - GroundHeight - CoinSize
)

var (
	// ErrUnrecognized is returned by [World.Apply] for the unrecognized
	// command sentinel.
	ErrUnrecognized = errors.New("game: unrecognized command")

	// ErrInvalidColor is returned by [World.Apply] for a color change naming
	// a color the lexicon does not know.
	ErrInvalidColor = errors.New("game: invalid color")
)

// FailureMessage is shown to the player when a command is rejected.
const FailureMessage = "Unrecognized command or invalid color. Please try again."

// Instructions is the one-line help text.
const Instructions = "Commands: move left, jump, move right, change color"

// Player is the player square's state.
type Player struct {
	X        int     `json:"x"`
	Y        float64 `json:"y"`
	DY       float64 `json:"dy"`
	Grounded bool    `json:"grounded"`
}

// Coin is the coin's position.
type Coin struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Color is the player's current color. Name is empty for the starting
// black.
type Color struct {
	Name string `json:"name,omitempty"`
	Hex  string `json:"hex"`

	rgb lexicon.RGB
}

// RGB returns the color's display value.
func (c Color) RGB() lexicon.RGB { return c.rgb }

// Snapshot is a copy of the world state.
type Snapshot struct {
	Player Player `json:"player"`
	Coin   Coin   `json:"coin"`
	Color  Color  `json:"color"`
	Score  int    `json:"score"`
	Ticks  uint64 `json:"ticks"`
}

// Option configures a [World].
type Option func(*World)

// WithRand sets the random source used for coin placement and random
// colors. The default is seeded from the runtime.
func WithRand(r *rand.Rand) Option {
	return func(w *World) { w.rng = r }
}

// WithCollectHook registers fn to run each time a coin is collected, with
// the new score. fn runs under the world lock and must not call back into
// the world.
func WithCollectHook(fn func(score int)) Option {
	return func(w *World) { w.onCollect = fn }
}

// World is the game state. All methods are safe for concurrent use.
type World struct {
	lex       *lexicon.Lexicon
	onCollect func(score int)

	mu    sync.Mutex
	rng   *rand.Rand
	state Snapshot
	subs  map[chan Snapshot]struct{}
}

// New creates a world with the player standing at the center of the ground
// and the coin at a random spot.
func New(lex *lexicon.Lexicon, opts ...Option) *World {
	w := &World{
		lex:  lex,
		subs: make(map[chan Snapshot]struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	if w.rng == nil {
		w.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	w.state = Snapshot{
		Player: Player{X: ScreenWidth/2 - PlayerSize/2, Y: groundY, Grounded: true},
		Coin:   Coin{X: w.rng.IntN(ScreenWidth - CoinSize + 1), Y: coinY},
		Color:  Color{Hex: lexicon.RGB{}.Hex()},
	}
	return w
}

// Snapshot returns a copy of the current state.
func (w *World) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Apply executes a canonical command.
//
// The sentinel [command.Unrecognized] is rejected with [ErrUnrecognized].
// A command containing "move left" or "move right" steps the player,
// clamped to the screen; one containing "jump" launches a grounded player;
// one starting with "change color" sets the color named by its last word,
// where "random" picks any lexicon color and an unknown name is rejected
// with [ErrInvalidColor]. Any other command is accepted without effect.
//
// After an accepted command a player touching the coin scores a point and
// the coin moves to a spot clear of the player.
func (w *World) Apply(cmd string) error {
	if cmd == command.Unrecognized {
		return ErrUnrecognized
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	p := &w.state.Player
	switch {
	case strings.Contains(cmd, command.MoveLeft):
		p.X = max(0, p.X-Step)
	case strings.Contains(cmd, command.MoveRight):
		p.X = min(ScreenWidth-PlayerSize, p.X+Step)
	case strings.Contains(cmd, command.Jump) && p.Grounded:
		p.DY = JumpPower
		p.Grounded = false
	case strings.HasPrefix(cmd, strings.TrimSpace(command.ChangeColorPrefix)):
		if err := w.changeColor(cmd); err != nil {
			return err
		}
	}

	if w.collides() {
		w.state.Score++
		w.relocateCoin()
		if w.onCollect != nil {
			w.onCollect(w.state.Score)
		}
	}
	w.publish()
	return nil
}

// changeColor must be called with w.mu held.
func (w *World) changeColor(cmd string) error {
	fields := strings.Fields(cmd)
	name := fields[len(fields)-1]
	if name == command.RandomColor {
		names := w.lex.ColorNames()
		name = names[w.rng.IntN(len(names))]
	}
	rgb, ok := w.lex.Color(name)
	if !ok {
		return ErrInvalidColor
	}
	w.state.Color = Color{Name: lexicon.Normalize(name), Hex: rgb.Hex(), rgb: rgb}
	return nil
}

// Tick advances gravity by one frame. A player that reaches the ground
// lands there.
func (w *World) Tick() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.state.Ticks++
	p := &w.state.Player
	if p.Grounded {
		return
	}
	p.Y += p.DY
	p.DY += Gravity
	if p.Y >= groundY {
		p.Y = groundY
		p.DY = 0
		p.Grounded = true
	}
	w.publish()
}

// collides reports player/coin overlap. Must be called with w.mu held.
func (w *World) collides() bool {
	p, c := w.state.Player, w.state.Coin
	return overlaps(float64(p.X), p.Y, float64(c.X), float64(c.Y))
}

// relocateCoin moves the coin to a random spot on the ground line that does
// not overlap the player. Must be called with w.mu held.
func (w *World) relocateCoin() {
	p := w.state.Player
	for {
		x := w.rng.IntN(ScreenWidth - CoinSize + 1)
		if !overlaps(float64(p.X), p.Y, float64(x), coinY) {
			w.state.Coin = Coin{X: x, Y: coinY}
			return
		}
	}
}

func overlaps(px, py, cx, cy float64) bool {
	return px < cx+CoinSize && px+PlayerSize > cx &&
		py < cy+CoinSize && py+PlayerSize > cy
}

// Subscribe returns a channel that receives a snapshot after every state
// change, and a function that ends the subscription. Slow subscribers miss
// intermediate snapshots rather than blocking the world.
func (w *World) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	w.mu.Lock()
	w.subs[ch] = struct{}{}
	w.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.subs, ch)
			w.mu.Unlock()
		})
	}
}

// publish must be called with w.mu held.
func (w *World) publish() {
	for ch := range w.subs {
		select {
		case ch <- w.state:
		default:
			// Replace the stale snapshot with the latest one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- w.state:
			default:
			}
		}
	}
}
