// Package home is the root menu screen.
package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wordiz/internal/router"
	"github.com/abhisek/wordiz/internal/screen"
	"github.com/abhisek/wordiz/internal/store"
	"github.com/abhisek/wordiz/internal/ui/components"
	"github.com/abhisek/wordiz/internal/ui/theme"
)

// Launcher builds the screens and numbers the home menu needs.
type Launcher interface {
	// Progress returns the counts of the configured book.
	Progress(ctx context.Context) (store.BookCount, error)
	Study(ctx context.Context) (screen.Screen, error)
	Spell(ctx context.Context) (screen.Screen, error)
}

type progressMsg struct {
	count store.BookCount
	err   error
}

type launchFailedMsg struct {
	what string
	err  error
}

// Screen is the main menu.
type Screen struct {
	launcher Launcher
	menu     components.Menu

	count  store.BookCount
	errMsg string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.Resumer = (*Screen)(nil)
var _ screen.HeaderProvider = (*Screen)(nil)

// New creates the home screen.
func New(l Launcher) *Screen {
	h := &Screen{launcher: l}
	h.menu = components.NewMenu([]components.MenuItem{
		{Label: "STUDY", Hint: "learn new words", Action: func() tea.Cmd {
			return h.launch("study", l.Study)
		}},
		{Label: "SPELL", Hint: "review learned words", Action: func() tea.Cmd {
			return h.launch("spelling", l.Spell)
		}},
		{Label: "QUIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	})
	return h
}

func (h *Screen) Init() tea.Cmd {
	return h.loadProgress()
}

// Resume refreshes the book counts after a drill.
func (h *Screen) Resume() tea.Cmd {
	return h.loadProgress()
}

func (h *Screen) Title() string {
	return "Home"
}

func (h *Screen) HeaderStatus() string {
	if h.count.Book == "" {
		return ""
	}
	return fmt.Sprintf("%s ✔ %d/%d", h.count.Book, h.count.Learned, h.count.Total)
}

func (h *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		if msg.err != nil {
			h.errMsg = "could not load progress: " + msg.err.Error()
			return h, nil
		}
		h.count = msg.count
		h.errMsg = ""
		h.menu.Items[1].Disabled = msg.count.Learned == 0
		return h, nil

	case launchFailedMsg:
		h.errMsg = fmt.Sprintf("cannot start %s: %v", msg.what, msg.err)
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *Screen) View(width, height int) string {
	cw := components.ContentWidth(width)

	sections := []string{renderBanner(cw)}
	if h.count.Book != "" {
		bar := components.NewProgressBar(h.count.Book, learnedPercent(h.count), true, cw)
		sections = append(sections, bar.View())
	}
	sections = append(sections, components.Panel(h.menu.View(), cw))
	if h.errMsg != "" {
		sections = append(sections, lipgloss.NewStyle().Width(cw).Inherit(theme.Incorrect).Render(h.errMsg))
	}
	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

func (h *Screen) launch(what string, build func(context.Context) (screen.Screen, error)) tea.Cmd {
	return func() tea.Msg {
		s, err := build(context.Background())
		if err != nil {
			return launchFailedMsg{what: what, err: err}
		}
		return router.PushScreenMsg{Screen: s}
	}
}

func (h *Screen) loadProgress() tea.Cmd {
	return func() tea.Msg {
		c, err := h.launcher.Progress(context.Background())
		return progressMsg{count: c, err: err}
	}
}

func learnedPercent(c store.BookCount) int {
	if c.Total == 0 {
		return 0
	}
	return c.Learned * 100 / c.Total
}
