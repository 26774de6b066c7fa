package tui

import (
	"io"
	"log/slog"
)

type Deps struct {
	// In and Out default to the terminal when nil.
	In  io.Reader
	Out io.Writer

	Logger *slog.Logger
}
