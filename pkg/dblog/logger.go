// Package dblog wraps log/slog with the lazily-initialized, process-wide
// logger the rest of the engine calls into. It mirrors the teacher's own
// logging package: a single global logger guarded by sync.Once, configurable
// once at startup, safe to call before Init (it falls back to a stdout text
// logger so package-level init-order doesn't matter).
package dblog

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// Format selects the slog handler used by Init.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config configures the global logger.
type Config struct {
	Level  slog.Level
	Output io.Writer // nil means os.Stdout
	Format Format
}

var (
	mu       sync.Mutex
	logger   *slog.Logger
	initOnce sync.Once
)

// Init configures the global logger. Calling it more than once replaces the
// previous configuration; this is intentional so tests and the REPL's
// --log-level flag can both exercise it.
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	var handler slog.Handler
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger = slog.New(handler)
}

// Logger returns the global logger, initializing it with sane defaults
// (INFO, text, stdout) on first use if Init was never called.
func Logger() *slog.Logger {
	initOnce.Do(func() {
		mu.Lock()
		if logger == nil {
			logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
		}
		mu.Unlock()
	})
	mu.Lock()
	defer mu.Unlock()
	return logger
}
