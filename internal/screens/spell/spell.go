// Package spell is the screen for the spelling review drill.
package spell

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wordiz/internal/router"
	"github.com/abhisek/wordiz/internal/screen"
	core "github.com/abhisek/wordiz/internal/spell"
	"github.com/abhisek/wordiz/internal/ui/components"
	"github.com/abhisek/wordiz/internal/ui/layout"
	"github.com/abhisek/wordiz/internal/ui/theme"
)

// Screen runs a spelling drill. Hints map each word to the prompt shown in
// its place, usually the translation.
type Screen struct {
	session *core.Session
	hints   map[string]string
	input   components.TextInput

	view core.View
	// last is the word just answered, shown with its verdict.
	last    string
	checked int
	correct int
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.HeaderProvider = (*Screen)(nil)

// New wraps session.
func New(session *core.Session, hints map[string]string) *Screen {
	return &Screen{
		session: session,
		hints:   hints,
		input:   components.NewTextInput("type the word…", 64),
		view:    session.View(),
	}
}

func (s *Screen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *Screen) Title() string {
	return "Spelling"
}

func (s *Screen) HeaderStatus() string {
	if s.view.Completed {
		return "done"
	}
	return fmt.Sprintf("round %d · %d left", s.view.Round, s.view.Remaining+1)
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.view.Completed {
		return []layout.KeyHint{{Key: "Enter", Description: "Home"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Check"},
		{Key: "Tab", Description: "Skip"},
		{Key: "Esc", Description: "Back"},
	}
}

// Close waits for pending drill telemetry.
func (s *Screen) Close() {
	s.session.Close()
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	if s.view.Completed {
		if kmsg.String() == "enter" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	}

	switch kmsg.String() {
	case "enter":
		s.check()
		return s, nil
	case "tab":
		s.last = ""
		s.session.Next()
		s.input.Reset()
		s.view = s.session.View()
		return s, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *Screen) check() {
	value := s.input.Value()
	if value == "" {
		return
	}
	word := s.view.Word
	s.checked++
	ok := s.session.Check(context.Background(), value)
	if ok {
		s.correct++
		s.last = word
		s.input.Reset()
	} else {
		s.last = ""
		s.input.Submit(false)
	}
	s.view = s.session.View()
}

func (s *Screen) View(width, height int) string {
	cw := components.ContentWidth(width)
	center := lipgloss.NewStyle().Width(cw).Align(lipgloss.Center)

	if s.view.Completed {
		body := center.Inherit(theme.Title).Render("All words spelled!") + "\n\n" +
			center.Inherit(theme.Body).Render(fmt.Sprintf(
				"Rounds: %d        Checks: %d        Correct: %d",
				s.view.Round, s.checked, s.correct))
		return components.Frame(body, width, height)
	}

	var sections []string
	sections = append(sections, components.Panel(s.prompt(), cw))
	sections = append(sections, s.input.View())

	switch {
	case s.view.Wrong:
		sections = append(sections, theme.Incorrect.Render("Not quite: "+s.view.Word))
	case s.last != "":
		sections = append(sections, theme.Correct.Render("✓ "+s.last))
	}
	if s.view.Retries > 0 {
		sections = append(sections, theme.Dimmed.Render(
			fmt.Sprintf("%d word(s) queued for another round", s.view.Retries)))
	}
	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

// prompt shows the hint and a letter mask of the hidden word.
func (s *Screen) prompt() string {
	w := s.view.Word
	hint := s.hints[w]
	if hint == "" {
		hint = "?"
	}
	mask := ""
	if r := []rune(w); len(r) > 0 {
		mask = string(r[0]) + strings.Repeat(" _", len(r)-1)
	}
	return theme.Translation.Render(hint) + "\n\n" + theme.Word.Render(mask)
}
