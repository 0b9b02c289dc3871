// Package study is the screen for a three-stage study session.
package study

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/wordiz/internal/router"
	"github.com/abhisek/wordiz/internal/screen"
	"github.com/abhisek/wordiz/internal/screens/summary"
	core "github.com/abhisek/wordiz/internal/study"
	"github.com/abhisek/wordiz/internal/ui/components"
	"github.com/abhisek/wordiz/internal/ui/layout"
)

// viewMsg carries a session snapshot published by a listener.
type viewMsg core.View

// Screen drives a core.Session from the keyboard. Session listeners may
// fire on background goroutines, so snapshots reach Update through a
// one-slot channel that always holds the latest view.
type Screen struct {
	session     *core.Session
	updates     chan core.View
	closed      chan struct{}
	unsubscribe func()
	logger      *zap.Logger

	view     core.View
	choices  components.ChoiceList
	finished bool
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.HeaderProvider = (*Screen)(nil)

// New wraps session. The session is started by Init.
func New(session *core.Session, logger *zap.Logger) *Screen {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Screen{
		session: session,
		updates: make(chan core.View, 1),
		closed:  make(chan struct{}),
		logger:  logger.Named("screen.study"),
	}
	s.unsubscribe = session.Subscribe(s.forward)
	return s
}

func (s *Screen) Init() tea.Cmd {
	return tea.Batch(s.start(), s.wait())
}

func (s *Screen) Title() string {
	return "Study"
}

func (s *Screen) HeaderStatus() string {
	return progressLabel(s.view.Progress)
}

func (s *Screen) KeyHints() []layout.KeyHint {
	c := s.view.Card
	if c == nil {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	if c.ShowAnswer {
		return []layout.KeyHint{
			{Key: "Space", Description: "Next"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "1-4", Description: "Choose"},
		{Key: "Space", Description: "I know it"},
		{Key: "X", Description: "No idea"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case viewMsg:
		scr, cmd := s.apply(core.View(msg))
		if s.finished {
			return scr, cmd
		}
		return scr, tea.Batch(cmd, s.wait())

	case components.ChosenMsg:
		s.choose(msg.Index)
		return s.apply(s.session.View())

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

// Close detaches the screen and waits for the session's background work.
func (s *Screen) Close() {
	if s.unsubscribe == nil {
		return
	}
	s.unsubscribe()
	s.unsubscribe = nil
	close(s.closed)
	s.session.Close()
}

func (s *Screen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	c := s.view.Card
	if c == nil {
		return s, nil
	}

	switch msg.String() {
	case "space", " ":
		s.session.Pass(context.Background())
		return s.apply(s.session.View())
	case "x":
		if !c.ShowAnswer {
			s.session.Fail(context.Background(), 0)
			return s.apply(s.session.View())
		}
		return s, nil
	}

	if c.ShowAnswer {
		if msg.String() == "enter" || msg.String() == "n" {
			s.session.Pass(context.Background())
			return s.apply(s.session.View())
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.choices, cmd = s.choices.Update(msg)
	return s, cmd
}

// choose answers the current card with the option at idx.
func (s *Screen) choose(idx int) {
	if s.view.Card == nil || s.view.Card.ShowAnswer || idx < 0 || idx >= len(s.view.Options) {
		return
	}
	opt := s.view.Options[idx]
	if opt.Correct {
		s.session.Pass(context.Background())
		return
	}
	if revealed, _ := s.session.Fail(context.Background(), opt.ID); revealed {
		s.logger.Debug("answer revealed", zap.String("word", s.view.Card.Item.Word))
	}
}

// apply renders v and, once the session is complete, swaps in the summary.
func (s *Screen) apply(v core.View) (screen.Screen, tea.Cmd) {
	if s.finished {
		return s, nil
	}
	prevID := int64(-1)
	if s.view.Card != nil {
		prevID = s.view.Card.Item.TopicID
	}
	s.view = v

	if v.Completed {
		s.finished = true
		stats := s.session.Statistics()
		return s, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: summary.New(stats)}
		}
	}

	if v.Card != nil && v.Card.Item.TopicID != prevID {
		s.choices = components.NewChoiceList(nil)
	}
	s.choices.SetChoices(choicesOf(v))
	s.choices.Disabled = v.Card == nil || v.Card.ShowAnswer
	return s, nil
}

func (s *Screen) start() tea.Cmd {
	return func() tea.Msg {
		s.session.Start(context.Background())
		return nil
	}
}

// wait blocks for the next published snapshot.
func (s *Screen) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case v := <-s.updates:
			return viewMsg(v)
		case <-s.closed:
			return nil
		}
	}
}

// forward publishes v, replacing a snapshot nobody has read yet.
func (s *Screen) forward(v core.View) {
	for {
		select {
		case s.updates <- v:
			return
		default:
		}
		select {
		case <-s.updates:
		default:
		}
	}
}

func choicesOf(v core.View) []components.Choice {
	if v.Card == nil {
		return nil
	}
	out := make([]components.Choice, len(v.Options))
	for i, o := range v.Options {
		c := components.Choice{
			Clicked: o.Clicked,
			Correct: o.Correct,
			Reveal:  v.Card.ShowAnswer,
		}
		if o.ShowWord {
			c.Label = o.Word
		}
		if o.ShowTranslation {
			c.Detail = o.Translation
		}
		out[i] = c
	}
	return out
}
