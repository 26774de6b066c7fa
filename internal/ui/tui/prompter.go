// Package tui implements the interactive prompts of the money collection session.
package tui

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/ports"
)

// Prompter runs one short bubbletea program per question and leaves a
// one-line summary of the answer in the terminal.
type Prompter struct {
	in    io.Reader
	out   io.Writer
	theme Theme
	log   *slog.Logger
}

func NewPrompter(deps Deps) *Prompter {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Prompter{in: deps.In, out: out, theme: DefaultTheme(), log: log}
}

var _ ports.Prompter = (*Prompter)(nil)

func (p *Prompter) run(m tea.Model) (tea.Model, error) {
	opts := []tea.ProgramOption{tea.WithOutput(p.out)}
	if p.in != nil {
		opts = append(opts, tea.WithInput(p.in))
	}

	final, err := tea.NewProgram(wrapSafe(m, p.log), opts...).Run()
	if err != nil {
		return nil, &domain.OpError{Op: "tui.prompt", Kind: domain.KindExecution, Err: err}
	}
	sm, ok := final.(safeModel)
	if !ok {
		return final, nil
	}
	if sm.err != nil {
		return nil, &domain.OpError{Op: "tui.prompt", Kind: domain.KindExecution, Err: sm.err}
	}
	return sm.m, nil
}

func (p *Prompter) answered(message, answer string) {
	fmt.Fprintln(p.out, p.theme.Question.Render("? "+message)+" "+p.theme.Answer.Render(answer))
}

func cancelled() error {
	return &domain.OpError{Op: "tui.prompt", Kind: domain.KindCancelled, Err: domain.ErrCancelled}
}

func (p *Prompter) choose(message string, choices []ports.Choice, multi bool) (chooseModel, error) {
	final, err := p.run(newChooseModel(p.theme, message, choices, multi))
	if err != nil {
		return chooseModel{}, err
	}
	m := final.(chooseModel)
	if m.cancelled || !m.done {
		return chooseModel{}, cancelled()
	}
	p.answered(message, m.labels())
	return m, nil
}

func (p *Prompter) Select(message string, choices []ports.Choice) (int64, error) {
	if len(choices) == 0 {
		return 0, &domain.OpError{Op: "tui.select", Kind: domain.KindInvalidInput, Err: fmt.Errorf("nothing to choose from: %w", domain.ErrInvalidInput)}
	}
	m, err := p.choose(message, choices, false)
	if err != nil {
		return 0, err
	}
	return m.values[0], nil
}

func (p *Prompter) MultiSelect(message string, choices []ports.Choice) ([]int64, error) {
	if len(choices) == 0 {
		return nil, nil
	}
	m, err := p.choose(message, choices, true)
	if err != nil {
		return nil, err
	}
	return m.values, nil
}

func (p *Prompter) Confirm(message string, def bool) (bool, error) {
	final, err := p.run(newConfirmModel(p.theme, message, def))
	if err != nil {
		return false, err
	}
	m := final.(confirmModel)
	if m.cancelled || !m.done {
		return false, cancelled()
	}
	answer := "No"
	if m.value {
		answer = "Yes"
	}
	p.answered(message, answer)
	return m.value, nil
}

func (p *Prompter) Text(tp ports.TextPrompt) (string, error) {
	final, err := p.run(newInputModel(p.theme, tp))
	if err != nil {
		return "", err
	}
	m := final.(inputModel)
	if m.cancelled || !m.done {
		return "", cancelled()
	}

	value := m.value
	if tp.Filter != nil {
		value = tp.Filter(value)
	}
	shown := value
	if tp.Secret {
		shown = strings.Repeat("*", 8)
	}
	p.answered(tp.Message, shown)
	return value, nil
}

func (p *Prompter) Number(np ports.NumberPrompt) (float64, error) {
	raw, err := p.Text(ports.TextPrompt{Message: np.Message, Validate: numberValidator(np.Validate)})
	if err != nil {
		return 0, err
	}
	return parseNumber(raw)
}

func (p *Prompter) Date(message string) (time.Time, error) {
	raw, err := p.Text(ports.TextPrompt{Message: message, Validate: dateValidator})
	if err != nil {
		return time.Time{}, err
	}
	return domain.ParseDate(raw)
}

func (p *Prompter) Say(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}
