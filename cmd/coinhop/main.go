// Command coinhop runs the coin-collecting game with English and Danish
// voice and text commands.
//
// Usage:
//
//	coinhop [-config coinhop.yaml] [-mode repl|serve|mcp]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/MrWong99/coinhop/internal/app"
	"github.com/MrWong99/coinhop/internal/config"
	"github.com/MrWong99/coinhop/internal/observe"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	modeREPL  = "repl"
	modeServe = "serve"
	modeMCP   = "mcp"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to the YAML configuration file (built-in defaults when empty)")
	mode := flag.String("mode", modeREPL, "front end to run: repl, serve, or mcp")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "coinhop: config file %q not found\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "coinhop: %v\n", err)
		}
		return 1
	}
	switch *mode {
	case modeREPL, modeServe, modeMCP:
	default:
		fmt.Fprintf(os.Stderr, "coinhop: unknown mode %q\n", *mode)
		return 2
	}

	logger, closeLog := newLogger(cfg.Server)
	defer closeLog()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}

	slog.Info("coinhop starting", "version", version, "mode", *mode, "config", *configPath)

	application, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}

	switch *mode {
	case modeServe:
		err = application.RunServer(ctx)
	case modeMCP:
		err = application.RunMCP(ctx, version)
	default:
		err = application.RunREPL(ctx, os.Stdin, os.Stdout)
	}
	code := 0
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		code = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		code = 1
	}
	if err := otelShutdown(shutdownCtx); err != nil {
		slog.Warn("telemetry shutdown error", "err", err)
	}
	slog.Info("goodbye")
	return code
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// newLogger builds the process logger. With a log file configured, output
// goes to a size-rotated file; otherwise to stderr, which stays clear of the
// MCP stdio stream.
func newLogger(sc config.ServerConfig) (*slog.Logger, func()) {
	var lvl slog.Level
	switch sc.LogLevel {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	if sc.LogFile != "" {
		lj := &lumberjack.Logger{
			Filename:   sc.LogFile,
			MaxSize:    32, // MB
			MaxBackups: 3,
			MaxAge:     14,
		}
		w = lj
		closeFn = func() { _ = lj.Close() }
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if sc.LogFormat == config.LogJSON {
		return slog.New(slog.NewJSONHandler(w, opts)), closeFn
	}
	return slog.New(slog.NewTextHandler(w, opts)), closeFn
}
