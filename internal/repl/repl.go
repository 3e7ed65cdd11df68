// Package repl is the terminal front end: one typed utterance per line,
// with ":listen" to speak a command into the microphone instead.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrWong99/coinhop/internal/audio"
	"github.com/MrWong99/coinhop/internal/control"
	"github.com/MrWong99/coinhop/internal/game"
	"github.com/MrWong99/coinhop/internal/speech"
)

// Meta commands.
const (
	cmdListen = ":listen"
	cmdState  = ":state"
	cmdHelp   = ":help"
	cmdQuit   = ":quit"
)

// settleTicks is how many physics ticks a jump is given to land before the
// prompt returns.
const settleTicks = 120

// msgNoMicrophone is printed for :listen without a recorder or backend.
const msgNoMicrophone = "Speech input is not configured."

// Option configures a [REPL].
type Option func(*REPL)

// WithRecorder enables :listen, recording d of audio per command.
func WithRecorder(rec audio.Recorder, d time.Duration) Option {
	return func(r *REPL) {
		r.rec = rec
		r.listenFor = d
	}
}

// WithSettle controls whether each command is followed by ticking the
// world until the player lands. It is on by default; turn it off when a
// game loop is already running.
func WithSettle(on bool) Option {
	return func(r *REPL) { r.settle = on }
}

// REPL reads commands from in and writes responses to out.
type REPL struct {
	ctl       *control.Controller
	in        io.Reader
	out       io.Writer
	rec       audio.Recorder
	listenFor time.Duration
	settle    bool
}

// New creates a [REPL] over ctl.
func New(ctl *control.Controller, in io.Reader, out io.Writer, opts ...Option) *REPL {
	r := &REPL{ctl: ctl, in: in, out: out, settle: true}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run prints the instructions and processes lines until in is exhausted,
// ":quit" is read, or ctx is done. It returns nil in all three cases.
func (r *REPL) Run(ctx context.Context) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
		scanErr <- sc.Err()
	}()

	fmt.Fprintln(r.out, game.Instructions)
	r.prompt()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("repl: read input: %w", err)
					}
				default:
				}
				return nil
			}
			if !r.handle(ctx, strings.TrimSpace(line)) {
				return nil
			}
			r.prompt()
		}
	}
}

func (r *REPL) prompt() { fmt.Fprint(r.out, "> ") }

// handle processes one line and reports whether to keep reading.
func (r *REPL) handle(ctx context.Context, line string) bool {
	switch line {
	case "":
	case cmdQuit:
		return false
	case cmdHelp:
		fmt.Fprintln(r.out, game.Instructions)
		fmt.Fprintln(r.out, "Meta: :listen, :state, :help, :quit")
	case cmdState:
		r.printState(r.ctl.World().Snapshot())
	case cmdListen:
		r.listen(ctx)
	default:
		r.report(r.ctl.Play(ctx, line))
	}
	return true
}

func (r *REPL) listen(ctx context.Context) {
	if r.rec == nil || !r.ctl.SpeechEnabled() {
		fmt.Fprintln(r.out, msgNoMicrophone)
		return
	}
	fmt.Fprintf(r.out, "Listening for %s...\n", r.listenFor)
	a, err := r.rec.Record(ctx, r.listenFor)
	if err != nil {
		if errors.Is(err, audio.ErrNoDevice) {
			fmt.Fprintln(r.out, msgNoMicrophone)
			return
		}
		fmt.Fprintln(r.out, err)
		return
	}
	out, err := r.ctl.Listen(ctx, a)
	if err != nil {
		fmt.Fprintln(r.out, speech.Message(err))
		return
	}
	fmt.Fprintf(r.out, "Heard: %s\n", out.Transcript)
	r.report(out)
}

func (r *REPL) report(out control.Outcome) {
	if !out.Applied {
		fmt.Fprintln(r.out, out.Message)
		return
	}
	state := out.State
	if r.settle && !state.Player.Grounded {
		r.ctl.World().Settle(settleTicks)
		state = r.ctl.World().Snapshot()
	}
	fmt.Fprintln(r.out, out.Result.Command)
	r.printState(state)
}

func (r *REPL) printState(s game.Snapshot) {
	color := s.Color.Name
	if color == "" {
		color = "black"
	}
	fmt.Fprintf(r.out, "player x=%d color=%s | coin x=%d | score %d\n", s.Player.X, color, s.Coin.X, s.Score)
}
