package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wordiz/internal/ui/theme"
)

// Choice is one answer in a ChoiceList. Empty fields render as a blank so a
// hidden word or translation does not leak through the layout.
type Choice struct {
	Label   string
	Detail  string
	Clicked bool
	Correct bool

	// Reveal marks the list as answered: correct and picked choices are
	// colored.
	Reveal bool
}

// ChosenMsg is emitted when the user picks a choice.
type ChosenMsg struct {
	Index int
}

// ChoiceList is a vertical multiple-choice selector. Keys 1-9 pick a choice
// directly; arrows move the cursor and enter picks it.
type ChoiceList struct {
	Choices  []Choice
	Selected int
	Disabled bool
}

// NewChoiceList creates a list with the cursor on the first choice.
func NewChoiceList(choices []Choice) ChoiceList {
	return ChoiceList{Choices: choices}
}

// SetChoices replaces the choices, keeping the cursor in range.
func (m *ChoiceList) SetChoices(choices []Choice) {
	m.Choices = choices
	if m.Selected >= len(choices) {
		m.Selected = max(len(choices)-1, 0)
	}
}

// Update handles navigation. A pick returns a command yielding ChosenMsg.
func (m ChoiceList) Update(msg tea.Msg) (ChoiceList, tea.Cmd) {
	if m.Disabled || len(m.Choices) == 0 {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
		return m, nil
	case "down", "j":
		if m.Selected < len(m.Choices)-1 {
			m.Selected++
		}
		return m, nil
	case "enter":
		return m, choose(m.Selected)
	}

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		idx := int(key[0] - '1')
		if idx < len(m.Choices) {
			m.Selected = idx
			return m, choose(idx)
		}
	}
	return m, nil
}

func choose(idx int) tea.Cmd {
	return func() tea.Msg { return ChosenMsg{Index: idx} }
}

// View renders the list.
func (m ChoiceList) View() string {
	var b strings.Builder
	for i, c := range m.Choices {
		prefix := "  "
		if i == m.Selected && !m.Disabled {
			prefix = "▸ "
		}

		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, placeholder(c.Label))
		if c.Detail != "" {
			line += "   " + c.Detail
		}

		var style lipgloss.Style
		switch {
		case c.Reveal && c.Correct:
			style = theme.Correct
		case c.Clicked:
			style = theme.Incorrect
		case c.Reveal:
			style = theme.Dimmed
		case i == m.Selected:
			style = theme.Selected
		default:
			style = theme.Unselected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func placeholder(s string) string {
	if s == "" {
		return "······"
	}
	return s
}
