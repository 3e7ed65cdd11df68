// Package app wires the coinhop subsystems into a running application.
//
// New builds the lexicon, the normalizer, the world, and the optional speech
// stack from a [config.Config]. The run methods serve one front end each
// (HTTP, terminal, or MCP) and Shutdown tears everything down in order.
//
// For testing, inject doubles via functional options (WithRegistry,
// WithRecorder, WithMetrics). When an option is not provided, New creates
// real implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/coinhop/internal/audio"
	"github.com/MrWong99/coinhop/internal/config"
	"github.com/MrWong99/coinhop/internal/control"
	"github.com/MrWong99/coinhop/internal/game"
	"github.com/MrWong99/coinhop/internal/health"
	"github.com/MrWong99/coinhop/internal/mcpserver"
	"github.com/MrWong99/coinhop/internal/observe"
	"github.com/MrWong99/coinhop/internal/repl"
	"github.com/MrWong99/coinhop/internal/server"
	"github.com/MrWong99/coinhop/internal/speech"
	"github.com/MrWong99/coinhop/internal/transcript"
	"github.com/MrWong99/coinhop/internal/transcript/phonetic"
	"github.com/MrWong99/coinhop/pkg/command"
	"github.com/MrWong99/coinhop/pkg/command/langdetect"
	"github.com/MrWong99/coinhop/pkg/lexicon"
)

// shutdownTimeout bounds graceful HTTP shutdown after the run context ends.
const shutdownTimeout = 10 * time.Second

// App owns all subsystem lifetimes.
type App struct {
	cfg      *config.Config
	registry *config.Registry
	metrics  *observe.Metrics
	recorder audio.Recorder

	lex      *lexicon.Lexicon
	norm     *command.Normalizer
	world    *game.World
	backends *speech.Fallback
	ctl      *control.Controller
	health   *health.Handler

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithRegistry replaces the built-in speech backend registry.
func WithRegistry(r *config.Registry) Option {
	return func(a *App) { a.registry = r }
}

// WithMetrics records on m instead of the global meter provider.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithRecorder replaces the PulseAudio recorder used by the terminal's
// ":listen".
func WithRecorder(r audio.Recorder) Option {
	return func(a *App) { a.recorder = r }
}

// New creates an App by wiring all subsystems together. It performs all
// initialisation synchronously and fails on the first subsystem that cannot
// be built.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, o := range opts {
		o(a)
	}
	if a.registry == nil {
		a.registry = DefaultRegistry()
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	if err := a.initLexicon(); err != nil {
		return nil, fmt.Errorf("app: init lexicon: %w", err)
	}
	if err := a.initNormalizer(); err != nil {
		return nil, fmt.Errorf("app: init normalizer: %w", err)
	}
	a.initWorld()

	var ctlOpts []control.Option
	rec, err := a.initSpeech(ctx)
	if err != nil {
		return nil, fmt.Errorf("app: init speech: %w", err)
	}
	if rec != nil {
		ctlOpts = append(ctlOpts, control.WithRecognizer(rec))
		if cfg.Speech.VocabularySnapping {
			ctlOpts = append(ctlOpts, control.WithSnapping(
				transcript.NewPipeline(transcript.WithPhoneticMatcher(phonetic.New())),
			))
		}
	}
	ctlOpts = append(ctlOpts, control.WithMetrics(a.metrics))
	a.ctl = control.New(a.norm, a.world, ctlOpts...)

	checkers := []health.Checker{health.LexiconChecker(a.lex)}
	if a.backends != nil {
		checkers = append(checkers, health.ReporterChecker("speech", a.backends))
	}
	a.health = health.New(checkers...)

	return a, nil
}

func (a *App) initLexicon() error {
	if a.cfg.Lexicon.Path == "" {
		a.lex = lexicon.Default()
		return nil
	}
	lex, err := lexicon.Load(a.cfg.Lexicon.Path)
	if err != nil {
		return err
	}
	slog.Info("loaded lexicon", "path", a.cfg.Lexicon.Path, "colors", len(lex.ColorNames()))
	a.lex = lex
	return nil
}

func (a *App) initNormalizer() error {
	nc := a.cfg.Normalizer
	cacheSize := nc.CacheSize
	if cacheSize < 0 {
		cacheSize = 0
	}
	sc, err := command.NewSpellCorrector(a.lex,
		command.WithEnglishMaxErrors(nc.EnglishMaxErrors),
		command.WithDanishMaxDistance(nc.DanishMaxDistance),
		command.WithCacheSize(cacheSize),
	)
	if err != nil {
		return err
	}

	opts := []command.Option{
		command.WithCorrector(sc),
		command.WithObserver(func(res command.Result, elapsed time.Duration) {
			a.metrics.RecordNormalization(context.Background(), string(res.Language), res.Recognized(), elapsed)
		}),
	}
	if nc.Detector == config.DetectorLingua {
		opts = append(opts, command.WithDetector(langdetect.New(command.NewVocabularyDetector(a.lex))))
	}
	a.norm, err = command.New(a.lex, opts...)
	return err
}

func (a *App) initWorld() {
	opts := []game.Option{
		game.WithCollectHook(func(int) {
			a.metrics.CoinsCollected.Add(context.Background(), 1)
		}),
	}
	if seed := a.cfg.Game.Seed; seed != 0 {
		opts = append(opts, game.WithRand(rand.New(rand.NewPCG(seed, seed))))
	}
	a.world = game.New(a.lex, opts...)
}

// Controller returns the shared command controller.
func (a *App) Controller() *control.Controller { return a.ctl }

// Handler returns the HTTP front end, including health and metrics routes.
func (a *App) Handler(opts ...server.Option) http.Handler {
	opts = append([]server.Option{
		server.WithHealth(a.health),
		server.WithMetrics(a.metrics),
	}, opts...)
	return server.New(a.ctl, opts...)
}

// RunServer runs the game loop and the HTTP server until ctx is cancelled,
// then shuts the server down gracefully. Hijacked websocket connections see
// ctx through their request context and close with it.
func (a *App) RunServer(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.ListenAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.world.Run(gctx, a.cfg.Game.TickRate)
	})
	g.Go(func() error {
		slog.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("app: http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// RunREPL runs the terminal front end on in and out until in is exhausted,
// the player quits, or ctx is cancelled.
func (a *App) RunREPL(ctx context.Context, in io.Reader, out io.Writer) error {
	var opts []repl.Option
	if a.ctl.SpeechEnabled() {
		rec := a.recorder
		if rec == nil {
			rec = audio.NewPulseRecorder(a.cfg.Audio.Device)
		}
		opts = append(opts, repl.WithRecorder(rec, a.cfg.Audio.ListenDuration))
	}
	return repl.New(a.ctl, in, out, opts...).Run(ctx)
}

// RunMCP serves the game as MCP tools over stdin and stdout until ctx is
// cancelled or the client disconnects. The game loop runs alongside.
func (a *App) RunMCP(ctx context.Context, version string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.world.Run(gctx, a.cfg.Game.TickRate)
	})
	g.Go(func() error {
		defer cancel()
		return mcpserver.Serve(gctx, mcpserver.New(a.ctl, version))
	})
	return g.Wait()
}

// Shutdown releases resources in order. It is safe to call more than once.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	a.stopOnce.Do(func() {
		for _, c := range a.closers {
			if ctx.Err() != nil {
				errs = append(errs, ctx.Err())
				return
			}
			if err := c(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}
