// Package logging configures the structured logger shared by the
// index and query flows.
package logging

import (
	"log/slog"
	"os"
)

// Config controls the handler and level used by New.
type Config struct {
	// JSON selects slog.JSONHandler over a human-readable text
	// handler. CLI runs default to text; automated/CI runs typically
	// want JSON.
	JSON  bool
	Debug bool
}

// New builds a logger writing to stderr so that stdout stays free for
// command output (JSON results, tables, etc).
func New(cfg Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
