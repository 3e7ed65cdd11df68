// Package control joins the command normalizer, the game world, and the
// optional speech stack into the operations every front end shares: play a
// typed utterance and play a recorded one.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/MrWong99/coinhop/internal/game"
	"github.com/MrWong99/coinhop/internal/observe"
	"github.com/MrWong99/coinhop/internal/speech"
	"github.com/MrWong99/coinhop/internal/transcript"
	"github.com/MrWong99/coinhop/pkg/command"
)

// ErrSpeechDisabled is returned by [Controller.Listen] when no speech
// backend is configured.
var ErrSpeechDisabled = errors.New("control: speech input is not configured")

// Outcome reports what a played utterance did.
type Outcome struct {
	// Result is the full normalization trace.
	Result command.Result `json:"result"`

	// Applied reports whether the world accepted the command.
	Applied bool `json:"applied"`

	// Message is the text to show the player when the command was rejected.
	Message string `json:"message,omitempty"`

	// Transcript is the recognised speech, before vocabulary snapping, for
	// spoken input.
	Transcript string `json:"transcript,omitempty"`

	// SpeechLanguage is the BCP 47 tag the transcript was recognised in.
	SpeechLanguage string `json:"speech_language,omitempty"`

	// Corrections lists the words vocabulary snapping replaced.
	Corrections []transcript.Correction `json:"corrections,omitempty"`

	// State is the world after the command.
	State game.Snapshot `json:"state"`
}

// Recognizer turns recorded audio into text.
type Recognizer interface {
	Recognize(ctx context.Context, audio speech.Audio) (speech.Result, error)
}

// Option configures a [Controller].
type Option func(*Controller)

// WithRecognizer enables [Controller.Listen].
func WithRecognizer(r Recognizer) Option {
	return func(c *Controller) { c.recognizer = r }
}

// WithSnapping runs transcripts through p against the lexicon vocabulary
// before normalization.
func WithSnapping(p transcript.Pipeline) Option {
	return func(c *Controller) { c.snapper = p }
}

// WithMetrics records command outcomes on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// Controller is safe for concurrent use.
type Controller struct {
	norm       *command.Normalizer
	world      *game.World
	recognizer Recognizer
	snapper    transcript.Pipeline
	metrics    *observe.Metrics
}

// New creates a [Controller] over norm and world.
func New(norm *command.Normalizer, world *game.World, opts ...Option) *Controller {
	c := &Controller{norm: norm, world: world}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Normalizer returns the normalizer commands go through.
func (c *Controller) Normalizer() *command.Normalizer { return c.norm }

// World returns the controlled world.
func (c *Controller) World() *game.World { return c.world }

// SpeechEnabled reports whether [Controller.Listen] can succeed.
func (c *Controller) SpeechEnabled() bool { return c.recognizer != nil }

// Play normalizes utterance and applies the result to the world. A command
// the world rejects is not an error: the outcome carries
// [game.FailureMessage] and Applied is false.
func (c *Controller) Play(ctx context.Context, utterance string) Outcome {
	ctx, span := observe.StartSpan(ctx, "control.play")
	defer span.End()

	res := c.norm.Analyze(utterance)
	out := Outcome{Result: res}

	err := c.world.Apply(res.Command)
	out.State = c.world.Snapshot()
	status := "ok"
	switch {
	case err == nil:
		out.Applied = true
	case errors.Is(err, game.ErrUnrecognized):
		status = "unrecognized"
		out.Message = game.FailureMessage
	default:
		status = "rejected"
		out.Message = game.FailureMessage
	}
	span.SetAttributes(
		observe.Attr("command", res.Command),
		observe.Attr("language", string(res.Language)),
		attribute.Bool("applied", out.Applied),
	)
	if c.metrics != nil {
		c.metrics.RecordCommand(ctx, metricCommand(res.Command), status)
	}
	observe.Logger(ctx).Debug("control: played",
		"input", utterance,
		"command", res.Command,
		"status", status,
	)
	return out
}

// Listen recognises audio, snaps the transcript onto the vocabulary when
// snapping is enabled, and plays it. Speech failures are returned wrapped so
// that [speech.Message] renders them.
func (c *Controller) Listen(ctx context.Context, audio speech.Audio) (Outcome, error) {
	if c.recognizer == nil {
		return Outcome{}, ErrSpeechDisabled
	}
	ctx, span := observe.StartSpan(ctx, "control.listen")
	defer span.End()

	sr, err := c.recognizer.Recognize(ctx, audio)
	if err != nil {
		observe.FailSpan(span, err, speech.Message(err))
		return Outcome{}, fmt.Errorf("control: listen: %w", err)
	}
	span.SetAttributes(observe.Attr("speech.language", sr.Language))

	text := sr.Transcript
	var corrections []transcript.Correction
	if c.snapper != nil {
		ct, err := c.snapper.Correct(ctx, text, c.norm.Lexicon().Vocabulary())
		if err != nil {
			if ctx.Err() != nil {
				return Outcome{}, ctx.Err()
			}
			slog.Warn("control: vocabulary snapping failed, using raw transcript", "err", err)
		} else {
			text = ct.Corrected
			corrections = ct.Corrections
		}
	}

	out := c.Play(ctx, text)
	out.Transcript = sr.Transcript
	out.SpeechLanguage = sr.Language
	out.Corrections = corrections
	return out, nil
}

// metricCommand collapses color changes to one label so that metric
// cardinality does not grow with the color table.
func metricCommand(cmd string) string {
	if strings.HasPrefix(cmd, command.ChangeColorPrefix) {
		return "change color"
	}
	return cmd
}
