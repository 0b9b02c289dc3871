package study

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	core "github.com/abhisek/wordiz/internal/study"
	"github.com/abhisek/wordiz/internal/ui/components"
	"github.com/abhisek/wordiz/internal/ui/theme"
)

const hiddenField = "· · ·"

func progressLabel(pct int) string {
	return fmt.Sprintf("%d%%", pct)
}

func (s *Screen) View(width, height int) string {
	cw := components.ContentWidth(width)
	c := s.view.Card
	if c == nil {
		msg := "Loading…"
		if s.finished {
			msg = "Saving your progress…"
		}
		return components.Frame(theme.Hint.Render(msg), width, height)
	}

	sections := []string{
		components.NewProgressBar(c.Stage.String(), s.view.Progress, true, cw).View(),
		components.Panel(renderCard(c), cw),
	}

	if len(s.view.Options) == 0 && !c.ShowAnswer {
		sections = append(sections, theme.Hint.Render("loading choices…"))
	} else if len(s.view.Options) > 0 {
		sections = append(sections, lipgloss.NewStyle().Width(cw).Render(s.choices.View()))
	}

	if s.view.Failures > 0 {
		sections = append(sections, theme.Dimmed.Render(
			fmt.Sprintf("missed %d time(s) this session", s.view.Failures)))
	}

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

// renderCard draws the prompt side of the card, or every field once the
// answer is shown. Fields the stage keeps covered render as a placeholder.
func renderCard(c *core.CardView) string {
	d := c.Detail
	var lines []string

	word := theme.Hidden.Render(hiddenField)
	if c.ShowWord || c.ShowAnswer {
		word = theme.Word.Render(d.Word)
		if d.Phonetic != "" {
			word += "  " + theme.Phonetic.Render(d.Phonetic)
		}
	}
	lines = append(lines, word)

	if c.ShowSentence || c.ShowAnswer {
		if d.Sentence != "" {
			lines = append(lines, theme.Sentence.Render(d.Sentence))
		}
		if c.ShowAnswer && d.SentenceTranslation != "" {
			lines = append(lines, theme.Dimmed.Render(d.SentenceTranslation))
		}
	}

	if c.ShowTranslation || c.ShowAnswer {
		lines = append(lines, theme.Translation.Render(orHidden(d.Translation)))
	}
	if c.ShowEnglishTranslation || c.ShowAnswer {
		if d.EnglishTranslation != "" {
			lines = append(lines, theme.Dimmed.Render(d.EnglishTranslation))
		}
	}

	return strings.Join(lines, "\n")
}

func orHidden(s string) string {
	if s == "" {
		return hiddenField
	}
	return s
}
