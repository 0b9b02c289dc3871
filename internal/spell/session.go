// Package spell implements the round-based spelling drill.
package spell

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/wordiz/internal/background"
	"github.com/abhisek/wordiz/internal/notify"
)

// ErrNoWords is returned by New for an empty word list.
var ErrNoWords = errors.New("spell: no words to drill")

// Telemetry event names and group.
const (
	EventEnter = "spell_enter"
	EventCheck = "spell_check"
	EventGroup = "spell"
)

// Reporter receives drill analytics.
type Reporter interface {
	ReportEvent(ctx context.Context, name, payload, group string) error
}

// Deps are the drill's optional collaborators.
type Deps struct {
	Reporter Reporter
	Runner   *background.Runner
	Logger   *zap.Logger
}

// View is a snapshot of the drill.
type View struct {
	Word      string
	Round     int
	Remaining int
	Retries   int
	Wrong     bool
	Completed bool
}

// Session quizzes free-text spelling one word at a time. A word spelled
// wrong goes into the next round once, however often it is missed.
type Session struct {
	mu sync.Mutex

	queue   []string
	retry   []string
	current string
	hasWord bool
	wrong   bool
	round   int
	done    bool

	deps       Deps
	ownsRunner bool
	tasks      *background.Group
	logger     *zap.Logger
	listeners  notify.List[View]

	outbox   []pendingEvent
	draining bool
}

type pendingEvent struct {
	name    string
	payload string
}

// New seeds the first round with words and moves to the first word. The
// first round runs from the end of the list, so the most recently added word
// comes first; retry rounds keep the order in which words were missed.
func New(words []string, deps Deps) (*Session, error) {
	if len(words) == 0 {
		return nil, ErrNoWords
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	s := &Session{
		queue:  reversed(words),
		round:  1,
		deps:   deps,
		logger: deps.Logger.Named("spell"),
	}
	if s.deps.Runner == nil {
		s.deps.Runner = background.New(2, deps.Logger)
		s.ownsRunner = true
	}
	s.tasks = s.deps.Runner.Group()

	s.mu.Lock()
	s.nextLocked()
	s.mu.Unlock()
	return s, nil
}

// Subscribe registers l, calls it with the current view and returns a
// function that removes it.
func (s *Session) Subscribe(l notify.Listener[View]) (unsubscribe func()) {
	unsubscribe = s.listeners.Add(l)
	l(s.View())
	return unsubscribe
}

// Check compares input against the current word, ignoring case and
// surrounding whitespace. A match moves on; a miss marks the word wrong and
// schedules it for the next round. Check reports whether input matched and
// is a no-op once the drill is complete.
func (s *Session) Check(ctx context.Context, input string) bool {
	s.mu.Lock()
	if s.done || !s.hasWord {
		s.mu.Unlock()
		return false
	}
	word := s.current
	ok := strings.EqualFold(strings.TrimSpace(input), strings.TrimSpace(word))
	s.reportLocked(EventCheck, map[string]any{
		"word":    word,
		"input":   input,
		"correct": ok,
		"round":   s.round,
	})
	if ok {
		s.nextLocked()
	} else {
		s.wrong = true
		if !slices.Contains(s.retry, word) {
			s.retry = append(s.retry, word)
		}
	}
	s.mu.Unlock()

	s.notify()
	return ok
}

// Next skips to the next word without checking.
func (s *Session) Next() {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.nextLocked()
	s.mu.Unlock()
	s.notify()
}

// Current returns the word being drilled.
func (s *Session) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.hasWord
}

// Wrong reports whether the current word has been missed.
func (s *Session) Wrong() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wrong
}

// Completed reports whether a full round finished without mistakes.
func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Round returns the 1-based round number.
func (s *Session) Round() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

// RetryLen returns how many words are scheduled for the next round.
func (s *Session) RetryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.retry)
}

// View returns a snapshot of the drill.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		Word:      s.current,
		Round:     s.round,
		Remaining: len(s.queue),
		Retries:   len(s.retry),
		Wrong:     s.wrong,
		Completed: s.done,
	}
}

// Wait blocks until pending telemetry has been handed off.
func (s *Session) Wait() {
	s.tasks.Wait()
}

// Close waits for telemetry and releases a runner the session created.
func (s *Session) Close() {
	s.tasks.Wait()
	if s.ownsRunner {
		s.deps.Runner.Close()
	}
}

func (s *Session) notify() {
	s.listeners.Notify(s.View())
}

func (s *Session) nextLocked() {
	s.wrong = false
	if len(s.queue) == 0 && len(s.retry) > 0 {
		s.queue, s.retry = s.retry, nil
		s.round++
		s.logger.Debug("retry round", zap.Int("round", s.round), zap.Int("words", len(s.queue)))
	}
	if len(s.queue) == 0 {
		s.current, s.hasWord = "", false
		s.done = true
		s.logger.Info("drill complete", zap.Int("rounds", s.round))
		return
	}
	s.current, s.queue = s.queue[0], s.queue[1:]
	s.hasWord = true
	s.reportLocked(EventEnter, map[string]any{"word": s.current, "round": s.round})
}

func reversed(words []string) []string {
	out := slices.Clone(words)
	slices.Reverse(out)
	return out
}

// reportLocked queues an analytics event. Events are delivered in the order
// they were queued by a single drain task; failures are logged only.
func (s *Session) reportLocked(name string, payload map[string]any) {
	if s.deps.Reporter == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("encode event", zap.String("event", name), zap.Error(err))
		return
	}
	s.outbox = append(s.outbox, pendingEvent{name: name, payload: string(data)})
	if s.draining {
		return
	}
	s.draining = true
	if err := s.tasks.Go("spell.telemetry", s.drain); err != nil {
		s.draining = false
		s.outbox = nil
		s.logger.Debug("events dropped", zap.String("event", name), zap.Error(err))
	}
}

// drain reports queued events until the outbox is empty.
func (s *Session) drain(ctx context.Context) error {
	for {
		s.mu.Lock()
		batch := s.outbox
		s.outbox = nil
		if len(batch) == 0 {
			s.draining = false
			s.mu.Unlock()
			return nil
		}
		s.mu.Unlock()

		for _, e := range batch {
			if err := s.deps.Reporter.ReportEvent(ctx, e.name, e.payload, EventGroup); err != nil {
				s.logger.Warn("report event", zap.String("event", e.name), zap.Error(err))
			}
		}
	}
}
