// Package summary shows the results of a finished study session.
package summary

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wordiz/internal/router"
	"github.com/abhisek/wordiz/internal/screen"
	"github.com/abhisek/wordiz/internal/study"
	"github.com/abhisek/wordiz/internal/ui/components"
	"github.com/abhisek/wordiz/internal/ui/layout"
	"github.com/abhisek/wordiz/internal/ui/theme"
)

// maxMissed caps the "needs work" list.
const maxMissed = 8

// Screen displays session statistics.
type Screen struct {
	stats *study.Statistics
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates a summary for stats. A nil stats renders an empty summary.
func New(stats *study.Statistics) *Screen {
	return &Screen{stats: stats}
}

func (s *Screen) Init() tea.Cmd {
	return nil
}

func (s *Screen) Title() string {
	return "Session Summary"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	cw := components.ContentWidth(width)
	st := s.stats
	if st == nil {
		return components.Frame(theme.Hint.Render("Nothing studied."), width, height)
	}

	center := lipgloss.NewStyle().Width(cw).Align(lipgloss.Center)

	var b strings.Builder
	b.WriteString(center.Inherit(theme.Title).Render("Session complete!"))
	b.WriteString("\n\n")
	b.WriteString(center.Inherit(theme.Body).Render(fmt.Sprintf(
		"Words: %d        Clean: %d        Time: %s",
		len(st.Items), cleanCount(st), formatDuration(st.TotalTimeMs))))
	b.WriteString("\n\n")

	missed := missedWords(st)
	if len(missed) == 0 {
		b.WriteString(center.Inherit(theme.Correct).Render("No mistakes today."))
		return components.Frame(b.String(), width, height)
	}

	b.WriteString(center.Inherit(theme.Dimmed).Render("Needs work"))
	b.WriteString("\n")
	b.WriteString(center.Render(theme.Hidden.Render(strings.Repeat("─", min(cw-8, 48)))))
	b.WriteString("\n")
	for _, m := range missed {
		line := fmt.Sprintf("%-16s %-16s ✗%d", m.Word, m.Translation, st.FailMap[m.TopicID])
		b.WriteString(center.Inherit(theme.Incorrect).Render(line))
		b.WriteString("\n")
	}
	return components.Frame(b.String(), width, height)
}

// cleanCount returns how many items were never missed.
func cleanCount(st *study.Statistics) int {
	n := 0
	for _, it := range st.Items {
		if st.FailMap[it.TopicID] == 0 {
			n++
		}
	}
	return n
}

// missedWords returns the most-missed items, worst first.
func missedWords(st *study.Statistics) []study.Brief {
	var out []study.Brief
	for _, it := range st.Items {
		if st.FailMap[it.TopicID] > 0 {
			out = append(out, it)
		}
	}
	slices.SortStableFunc(out, func(a, b study.Brief) int {
		return st.FailMap[b.TopicID] - st.FailMap[a.TopicID]
	})
	if len(out) > maxMissed {
		out = out[:maxMissed]
	}
	return out
}

func formatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
