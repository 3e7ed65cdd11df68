package repl_test

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/MrWong99/coinhop/internal/audio"
	"github.com/MrWong99/coinhop/internal/control"
	"github.com/MrWong99/coinhop/internal/game"
	"github.com/MrWong99/coinhop/internal/repl"
	"github.com/MrWong99/coinhop/internal/speech"
	"github.com/MrWong99/coinhop/internal/speech/mock"
	"github.com/MrWong99/coinhop/pkg/command"
	"github.com/MrWong99/coinhop/pkg/lexicon"
)

type fakeRecorder struct {
	audio speech.Audio
	err   error
	got   time.Duration
}

func (f *fakeRecorder) Record(_ context.Context, d time.Duration) (speech.Audio, error) {
	f.got = d
	return f.audio, f.err
}

var _ audio.Recorder = (*fakeRecorder)(nil)

func newController(t *testing.T, opts ...control.Option) *control.Controller {
	t.Helper()
	lex := lexicon.Default()
	norm, err := command.New(lex)
	if err != nil {
		t.Fatalf("command.New: %v", err)
	}
	return control.New(norm, game.New(lex, game.WithRand(rand.New(rand.NewPCG(5, 6)))), opts...)
}

func run(t *testing.T, ctl *control.Controller, input string, opts ...repl.Option) string {
	t.Helper()
	var out bytes.Buffer
	if err := repl.New(ctl, strings.NewReader(input), &out, opts...).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestRun_PlaysLines(t *testing.T) {
	t.Parallel()

	ctl := newController(t)
	start := ctl.World().Snapshot().Player.X
	out := run(t, ctl, "move right\nhello there\nskift farve blå\n")

	if !strings.HasPrefix(out, game.Instructions) {
		t.Errorf("output does not start with the instructions:\n%s", out)
	}
	for _, want := range []string{command.MoveRight, game.FailureMessage, "change color blå", "color=blå"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if got := ctl.World().Snapshot().Player.X; got != min(start+game.Step, game.ScreenWidth-game.PlayerSize) {
		t.Errorf("player x = %d, want one step right of %d", got, start)
	}
}

func TestRun_JumpSettles(t *testing.T) {
	t.Parallel()

	ctl := newController(t)
	run(t, ctl, "jump\n")
	if !ctl.World().Snapshot().Player.Grounded {
		t.Error("player still airborne after the prompt returned")
	}
}

func TestRun_QuitStopsReading(t *testing.T) {
	t.Parallel()

	ctl := newController(t)
	start := ctl.World().Snapshot().Player.X
	out := run(t, ctl, ":quit\nmove left\n")
	if strings.Contains(strings.TrimPrefix(out, game.Instructions), command.MoveLeft) {
		t.Errorf("line after :quit was played:\n%s", out)
	}
	if strings.Contains(out, "player x=") {
		t.Errorf("state line printed after :quit:\n%s", out)
	}
	if ctl.World().Snapshot().Player.X != start {
		t.Error("world changed after :quit")
	}
}

func TestRun_State(t *testing.T) {
	t.Parallel()

	ctl := newController(t)
	out := run(t, ctl, ":state\n")
	if !strings.Contains(out, "color=black") || !strings.Contains(out, "score 0") {
		t.Errorf("state line missing:\n%s", out)
	}
}

func TestRun_Listen(t *testing.T) {
	t.Parallel()

	pcm := speech.Audio{PCM: make([]byte, 3200), SampleRate: 16000, Channels: 1}
	tests := []struct {
		name string
		tr   *mock.Transcriber
		rec  *fakeRecorder
		want string
	}{
		{
			name: "heard",
			tr:   &mock.Transcriber{Responses: map[string]string{"da": "gå venstre"}},
			rec:  &fakeRecorder{audio: pcm},
			want: "Heard: gå venstre",
		},
		{
			name: "nothing heard",
			tr:   &mock.Transcriber{},
			rec:  &fakeRecorder{audio: pcm},
			want: speech.MsgCouldNotUnderstand,
		},
		{
			name: "backend down",
			tr:   &mock.Transcriber{Err: errors.New("connection refused")},
			rec:  &fakeRecorder{audio: pcm},
			want: speech.MsgServiceUnavailable,
		},
		{
			name: "no microphone",
			tr:   &mock.Transcriber{},
			rec:  &fakeRecorder{err: audio.ErrNoDevice},
			want: "Speech input is not configured.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctl := newController(t, control.WithRecognizer(speech.NewRecognizer(tt.tr)))
			out := run(t, ctl, ":listen\n", repl.WithRecorder(tt.rec, 2*time.Second))
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
			if tt.rec.got != 2*time.Second {
				t.Errorf("recorded for %s, want 2s", tt.rec.got)
			}
		})
	}
}

func TestRun_ListenWithoutRecorder(t *testing.T) {
	t.Parallel()

	out := run(t, newController(t), ":listen\n")
	if !strings.Contains(out, "Speech input is not configured.") {
		t.Errorf("output:\n%s", out)
	}
}

func TestRun_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	if err := repl.New(newController(t), strings.NewReader("jump\n"), &out).Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
