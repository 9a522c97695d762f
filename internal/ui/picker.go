package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrNothingToPick is returned when the choice list is empty.
var ErrNothingToPick = errors.New("nothing to pick from")

// Choice is one entry in a picker.
type Choice struct {
	Label  string // e.g. wallet name
	Detail string // dimmed, e.g. address
	Value  string
	Marked bool // current selection, shown with a star
}

type pickerModel struct {
	title    string
	choices  []Choice
	cursor   int
	picked   int // -1 until enter
	canceled bool
}

func newPicker(title string, choices []Choice) pickerModel {
	m := pickerModel{title: title, choices: choices, picked: -1}
	for i, c := range choices {
		if c.Marked {
			m.cursor = i
			break
		}
	}
	return m
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "esc", "ctrl+c":
		m.canceled = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.picked = m.cursor
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.canceled || m.picked >= 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(StyleTitle.Render(m.title) + "\n")
	for i, c := range m.choices {
		prefix := "  "
		if i == m.cursor {
			prefix = "▸ "
		}
		star := " "
		if c.Marked {
			star = "★"
		}
		line := fmt.Sprintf("%s%s %s", prefix, star, c.Label)
		if c.Detail != "" {
			line += "  " + StyleMeta.Render(c.Detail)
		}
		if i == m.cursor {
			line = StyleSelected.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n" + StyleMeta.Render("↑↓ move  enter select  q cancel") + "\n")
	return sb.String()
}

// Pick runs an inline list picker and returns the chosen Value, or "" if
// the user cancelled.
func Pick(title string, choices []Choice, opts ...tea.ProgramOption) (string, error) {
	if len(choices) == 0 {
		return "", ErrNothingToPick
	}
	final, err := tea.NewProgram(newPicker(title, choices), opts...).Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}
	m := final.(pickerModel)
	if m.canceled || m.picked < 0 {
		return "", nil
	}
	return m.choices[m.picked].Value, nil
}
