// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// SetupLogger configures the global slog logger. Used by every CLI command.
func SetupLogger(level, format string) {
	slog.SetDefault(slog.New(newLogHandler(os.Stdout, level, format)))
}

// newLogHandler returns a JSON handler for format "json" and a tint text
// handler otherwise. Unknown levels fall back to info; debug adds sources.
func newLogHandler(w io.Writer, level, format string) slog.Handler {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	debug := lvl <= slog.LevelDebug

	if format == "json" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl, AddSource: debug})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		AddSource:  debug,
		TimeFormat: time.DateTime,
		NoColor:    w != os.Stdout,
	})
}
