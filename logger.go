package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"marker-tracker.klederson.com/internal/config"
)

// NewLogger returns a structured slog.Logger with the given level.
func NewLogger(level slog.Leveler, w io.Writer) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// logOutput picks where logs go. The terminal UI owns the screen, so
// without a log file its logs are discarded.
func logOutput(cfg *config.Config) (io.Writer, func() error, error) {
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return f, f.Close, nil
	}
	if cfg.Display.Mode == config.DisplayTUI {
		return io.Discard, func() error { return nil }, nil
	}
	return os.Stderr, func() error { return nil }, nil
}
