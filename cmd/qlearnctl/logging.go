package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"qlearn/internal/config"

	"github.com/mattn/go-isatty"
)

// newLogger builds the process logger. Format "auto" picks text for a
// terminal and JSON otherwise.
func newLogger(cfg config.LogConfig, w *os.File) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}

	format := cfg.Format
	if format == "auto" {
		format = "json"
		if isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd()) {
			format = "text"
		}
	}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}
}
