package tui

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Question lipgloss.Style
	Answer   lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
	Card     lipgloss.Style
}

func DefaultTheme() Theme {
	return Theme{
		Question: lipgloss.NewStyle().Bold(true),
		Answer:   lipgloss.NewStyle().Foreground(lipgloss.Color("36")),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		Help:     lipgloss.NewStyle().Faint(true),
		Card: lipgloss.NewStyle().
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")),
	}
}
