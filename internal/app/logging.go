package app

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// logger carries diagnostics only; the status protocol is printed directly.
var logger = slog.New(slog.DiscardHandler)

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("run", uuid.NewString())
}
