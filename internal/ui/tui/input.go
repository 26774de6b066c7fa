package tui

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/ports"
)

type inputModel struct {
	theme    Theme
	message  string
	input    textinput.Model
	validate ports.Validator
	errMsg   string

	value     string
	done      bool
	cancelled bool
}

func newInputModel(theme Theme, p ports.TextPrompt) inputModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 512
	if p.Secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '*'
	} else if p.Default != "" {
		ti.SetValue(p.Default)
		ti.CursorEnd()
	}
	if len(p.Suggestions) > 0 {
		ti.ShowSuggestions = true
		ti.SetSuggestions(p.Suggestions)
	}
	ti.Focus()

	return inputModel{theme: theme, message: p.Message, input: ti, validate: p.Validate}
}

func (m inputModel) Init() tea.Cmd { return textinput.Blink }

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			v := m.input.Value()
			if m.validate != nil {
				if err := m.validate(v); err != nil {
					m.errMsg = err.Error()
					return m, nil
				}
			}
			m.value = v
			m.done = true
			return m, tea.Quit
		}
		m.errMsg = ""
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	out := m.theme.Question.Render("? "+m.message) + " " + m.input.View()
	if m.errMsg != "" {
		out += "\n" + m.theme.Error.Render("✗ "+m.errMsg)
	}
	return out
}

// parseNumber accepts both decimal point and decimal comma.
func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, errors.New("input cannot be empty")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

func numberValidator(check func(float64) error) ports.Validator {
	return func(answer string) error {
		v, err := parseNumber(answer)
		if err != nil {
			return err
		}
		if check != nil {
			return check(v)
		}
		return nil
	}
}

func dateValidator(answer string) error {
	if _, err := domain.ParseDate(answer); err != nil {
		return errors.New("invalid date, use YYYY-MM-DD")
	}
	return nil
}
