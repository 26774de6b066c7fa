package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

type confirmModel struct {
	theme   Theme
	message string
	def     bool

	value     bool
	done      bool
	cancelled bool
}

func newConfirmModel(theme Theme, message string, def bool) confirmModel {
	return confirmModel{theme: theme, message: message, def: def}
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch km.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "y", "Y":
		m.value, m.done = true, true
		return m, tea.Quit
	case "n", "N":
		m.value, m.done = false, true
		return m, tea.Quit
	case "enter":
		m.value, m.done = m.def, true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	hint := "(y/N)"
	if m.def {
		hint = "(Y/n)"
	}
	return m.theme.Question.Render("? "+m.message) + " " + m.theme.Help.Render(hint)
}
