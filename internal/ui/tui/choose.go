package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/michalnik/money-collector/internal/ports"
)

const (
	defaultListWidth  = 80
	defaultListHeight = 14
)

type choiceItem struct {
	label string
	value int64
}

func (c choiceItem) FilterValue() string { return c.label }

// choiceDelegate renders one line per choice. In multi mode it shows a checkbox.
type choiceDelegate struct {
	theme  Theme
	multi  bool
	chosen map[int64]bool
}

func (d choiceDelegate) Height() int                             { return 1 }
func (d choiceDelegate) Spacing() int                            { return 0 }
func (d choiceDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d choiceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(choiceItem)
	if !ok {
		return
	}
	line := it.label
	if d.multi {
		box := "◯ "
		if d.chosen[it.value] {
			box = "◉ "
		}
		line = box + line
	}
	line = clampString(line, max(m.Width()-2, 10))
	if index == m.Index() {
		fmt.Fprint(w, d.theme.Selected.Render("❯ "+line))
		return
	}
	fmt.Fprint(w, "  "+line)
}

// chooseModel is a fuzzy-filterable list for single and multiple choice.
type chooseModel struct {
	theme   Theme
	message string
	multi   bool
	list    list.Model
	chosen  map[int64]bool

	values    []int64
	done      bool
	cancelled bool
}

func newChooseModel(theme Theme, message string, choices []ports.Choice, multi bool) chooseModel {
	items := make([]list.Item, 0, len(choices))
	for _, c := range choices {
		items = append(items, choiceItem{label: c.Label, value: c.Value})
	}
	chosen := map[int64]bool{}

	height := len(items) + 4
	if height > defaultListHeight {
		height = defaultListHeight
	}
	l := list.New(items, choiceDelegate{theme: theme, multi: multi, chosen: chosen}, defaultListWidth, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()

	return chooseModel{theme: theme, message: message, multi: multi, list: l, chosen: chosen}
}

func (m chooseModel) Init() tea.Cmd { return nil }

func (m chooseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h := msg.Height - 4
		if h > defaultListHeight {
			h = defaultListHeight
		}
		m.list.SetSize(msg.Width-2, max(h, 3))
		return m, nil

	case tea.KeyMsg:
		filtering := m.list.FilterState() == list.Filtering
		switch msg.String() {
		case "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		case "esc":
			if !filtering && m.list.FilterState() != list.FilterApplied {
				m.cancelled = true
				return m, tea.Quit
			}
		case " ":
			if m.multi && !filtering {
				if it, ok := m.list.SelectedItem().(choiceItem); ok {
					m.chosen[it.value] = !m.chosen[it.value]
				}
				return m, nil
			}
		case "enter":
			if !filtering {
				return m.confirm()
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m chooseModel) confirm() (tea.Model, tea.Cmd) {
	if !m.multi {
		it, ok := m.list.SelectedItem().(choiceItem)
		if !ok {
			return m, nil
		}
		m.values = []int64{it.value}
		m.done = true
		return m, tea.Quit
	}

	// Keep the order the choices were offered in.
	m.values = nil
	for _, item := range m.list.Items() {
		if it, ok := item.(choiceItem); ok && m.chosen[it.value] {
			m.values = append(m.values, it.value)
		}
	}
	m.done = true
	return m, tea.Quit
}

// labels returns the labels of the chosen values for the answer summary.
func (m chooseModel) labels() string {
	want := map[int64]bool{}
	for _, v := range m.values {
		want[v] = true
	}
	var out []string
	for _, item := range m.list.Items() {
		if it, ok := item.(choiceItem); ok && want[it.value] {
			out = append(out, it.label)
		}
	}
	if len(out) == 0 {
		return "(none)"
	}
	return strings.Join(out, ", ")
}

func (m chooseModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	help := "↑/↓ move • / filter • enter choose • esc cancel"
	if m.multi {
		help = "↑/↓ move • space toggle • / filter • enter confirm • esc cancel"
	}
	return m.theme.Question.Render("? "+m.message) + "\n" +
		m.list.View() + "\n" +
		m.theme.Help.Render(help)
}
