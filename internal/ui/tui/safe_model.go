package tui

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
)

var errPanicked = errors.New("unexpected error in prompt (see logs)")

// safeModel turns a panic in a prompt into an error instead of a broken terminal.
type safeModel struct {
	m   tea.Model
	log *slog.Logger
	err error
}

func wrapSafe(m tea.Model, log *slog.Logger) safeModel {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return safeModel{m: m, log: log}
}

func (s safeModel) Init() tea.Cmd {
	return s.m.Init()
}

func (s safeModel) Update(msg tea.Msg) (tm tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic.recovered",
				"where", "tui.update",
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			s.err = errPanicked
			tm = s
			cmd = tea.Quit
		}
	}()

	inner, c := s.m.Update(msg)
	if sm, ok := inner.(safeModel); ok {
		return sm, c
	}
	s.m = inner
	return s, c
}

func (s safeModel) View() (out string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic.recovered",
				"where", "tui.view",
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			out = "Unexpected error (see logs)"
		}
	}()
	return s.m.View()
}

var _ tea.Model = (*safeModel)(nil)
