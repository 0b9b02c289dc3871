package study

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/wordiz/internal/background"
	"github.com/abhisek/wordiz/internal/notify"
)

// DoneUploader records finished items remotely. It is the default upload
// path when no OnUpload callback is configured.
type DoneUploader interface {
	UploadDone(ctx context.Context, items []Item, failMap map[int64]int, useTimeMap map[int64]int64) error
}

// UploadFunc replaces the default upload when set.
type UploadFunc func(ctx context.Context, s *Session) error

// Deps are the collaborators a Session talks to. Every field is optional.
type Deps struct {
	Details     DetailFetcher
	Options     OptionLoader
	OptionCache *OptionCache
	Stats       StatsStore
	Uploader    DoneUploader
	OnUpload    UploadFunc

	// Runner executes background work. A private runner is created when nil.
	Runner *background.Runner
	Logger *zap.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Session sequences a list of items through the three stages and collects
// statistics. Transitions are synchronous; listeners are called after each
// transition, outside the session lock.
type Session struct {
	mu sync.Mutex

	items []Item
	seq   *Sequencer
	card  *Card

	// failMap counts wrong attempts per item; it is never reset.
	failMap map[int64]int
	// useTimeMap holds milliseconds spent on an item's latest visit.
	useTimeMap map[int64]int64

	briefs    []Brief
	briefIdx  map[int64]int
	loading   map[int64]bool
	itemEntry time.Time
	startTime time.Time
	started   bool
	completed bool
	stats     *Statistics

	deps       Deps
	ownsRunner bool
	tasks      *background.Group
	logger     *zap.Logger
	listeners  notify.List[View]
}

// New creates a session over items. It returns ErrNoItems for an empty list.
func New(items []Item, deps Deps) (*Session, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.OptionCache == nil {
		deps.OptionCache = NewOptionCache()
	}
	s := &Session{
		items:      slices.Clone(items),
		seq:        NewSequencer(items, deps.Details),
		failMap:    make(map[int64]int),
		useTimeMap: make(map[int64]int64),
		briefIdx:   make(map[int64]int),
		loading:    make(map[int64]bool),
		deps:       deps,
		logger:     deps.Logger.Named("study"),
	}
	if s.deps.Runner == nil {
		s.deps.Runner = background.New(4, deps.Logger)
		s.ownsRunner = true
	}
	s.tasks = s.deps.Runner.Group()
	return s, nil
}

// Start shows the first card. Calling it again is a no-op.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.startTime = s.deps.Now()
	s.logger.Debug("session started", zap.Int("items", s.seq.Len()))
	s.advanceLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// Subscribe registers l. It is called right away with the current view and
// after every state change until the returned function is called.
func (s *Session) Subscribe(l notify.Listener[View]) (unsubscribe func()) {
	unsubscribe = s.listeners.Add(l)
	l(s.View())
	return unsubscribe
}

// Pass records a correct answer or moves on from a revealed card.
//
// On a revealed card, a reveal forced by exhausting attempts flips back to
// the front for one more try; otherwise the session advances. On a front
// card outside the recognition stage, an item never failed this session
// skips the reveal and advances directly. It returns false when there is no
// current card.
func (s *Session) Pass(ctx context.Context) bool {
	s.mu.Lock()
	c := s.card
	if c == nil {
		s.mu.Unlock()
		return false
	}
	switch {
	case c.ShowAnswer() && c.AttemptCount() == 0:
		c.Flip()
	case c.ShowAnswer():
		s.advanceLocked(ctx)
	case c.Stage != StageRecognition && s.failMap[c.Item.TopicID] == 0:
		s.advanceLocked(ctx)
	default:
		c.Pass()
	}
	s.mu.Unlock()
	s.notify()
	return true
}

// Fail records a wrong pick of optionID on the current card and re-queues
// the item into the current stage. ok is false, and nothing changes, when
// there is no current card. revealed reports that the attempt limit forced
// the answer open.
func (s *Session) Fail(ctx context.Context, optionID int64) (revealed, ok bool) {
	s.mu.Lock()
	c := s.card
	if c == nil {
		s.mu.Unlock()
		return false, false
	}
	id := c.Item.TopicID
	s.failMap[id]++
	s.seq.Putback(c.Item)
	revealed = c.Fail(optionID)
	s.logger.Debug("wrong answer",
		zap.Int64("topic_id", id),
		zap.Stringer("stage", c.Stage),
		zap.Int("failures", s.failMap[id]),
		zap.Bool("revealed", revealed))
	s.mu.Unlock()
	s.notify()
	return revealed, true
}

// Progress returns the sequencer progress as a rounded percentage.
func (s *Session) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progressLocked()
}

func (s *Session) progressLocked() int {
	return s.seq.Percent()
}

// Completed reports whether every stage is exhausted.
func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// CurrentItem returns the item on the current card.
func (s *Session) CurrentItem() (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.card == nil {
		return Item{}, false
	}
	return s.card.Item, true
}

// Items returns the items the session was created with.
func (s *Session) Items() []Item {
	return slices.Clone(s.items)
}

// FailMap returns a copy of the per-item wrong-attempt counts.
func (s *Session) FailMap() map[int64]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.failMap)
}

// UseTimeMap returns a copy of the per-item milliseconds.
func (s *Session) UseTimeMap() map[int64]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.useTimeMap)
}

// Statistics returns this session's aggregate, or nil before completion.
func (s *Session) Statistics() *Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statisticsLocked()
}

func (s *Session) statisticsLocked() *Statistics {
	if s.stats == nil {
		return nil
	}
	cp := *s.stats
	cp.FailMap = maps.Clone(s.stats.FailMap)
	cp.UseTimeMap = maps.Clone(s.stats.UseTimeMap)
	cp.Items = slices.Clone(s.stats.Items)
	return &cp
}

// View returns a snapshot of the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		Progress:  s.progressLocked(),
		Completed: s.completed,
	}
	if s.card == nil {
		return v
	}
	v.Card = newCardView(s.card)
	v.Failures = s.failMap[s.card.Item.TopicID]
	if opts, ok := s.deps.OptionCache.Get(s.card.Item.TopicID); ok {
		v.Options = newOptionViews(s.card, opts)
	}
	return v
}

// Wait blocks until background work started by the session has finished.
func (s *Session) Wait() {
	s.tasks.Wait()
}

// Close waits for background work and releases a runner the session created.
func (s *Session) Close() {
	s.tasks.Wait()
	if s.ownsRunner {
		s.deps.Runner.Close()
	}
}

func (s *Session) notify() {
	s.listeners.Notify(s.View())
}

// advanceLocked stamps the time spent on the current item and moves to the
// next one, completing the session when the sequencer is exhausted.
func (s *Session) advanceLocked(ctx context.Context) {
	now := s.deps.Now()
	if s.card != nil {
		s.useTimeMap[s.card.Item.TopicID] = now.Sub(s.itemEntry).Milliseconds()
	}

	if !s.seq.HasNext() {
		s.card = nil
		s.completeLocked(now)
		return
	}

	card, err := s.seq.Next(ctx)
	if err != nil {
		s.logger.Warn("detail fetch failed, showing stub", zap.Error(err))
	}
	s.card = card
	s.itemEntry = now
	s.touchLocked(card)
	s.loadOptionsLocked(card)
}

func (s *Session) touchLocked(c *Card) {
	b := Brief{TopicID: c.Item.TopicID, Word: c.Item.Word}
	if c.Detail != nil {
		b.Translation = c.Detail.Translation
	}
	if i, ok := s.briefIdx[b.TopicID]; ok {
		if s.briefs[i].Translation == "" {
			s.briefs[i].Translation = b.Translation
		}
		return
	}
	s.briefIdx[b.TopicID] = len(s.briefs)
	s.briefs = append(s.briefs, b)
}

// loadOptionsLocked fetches options for c in the background when they are
// not cached yet; landing options re-notify listeners.
func (s *Session) loadOptionsLocked(c *Card) {
	if s.deps.Options == nil {
		return
	}
	id := c.Item.TopicID
	if _, ok := s.deps.OptionCache.Get(id); ok || s.loading[id] {
		return
	}
	s.loading[id] = true

	item, detail := c.Item, c.Detail
	err := s.tasks.Go("study.options", func(ctx context.Context) error {
		opts, err := s.deps.Options.LoadOptions(ctx, item, detail)

		s.mu.Lock()
		delete(s.loading, id)
		s.mu.Unlock()

		if err != nil {
			return fmt.Errorf("load options for %d: %w", id, err)
		}
		s.deps.OptionCache.Put(id, opts)
		s.notify()
		return nil
	})
	if err != nil {
		delete(s.loading, id)
		s.logger.Warn("option load not scheduled", zap.Int64("topic_id", id), zap.Error(err))
	}
}

// completeLocked marks the session done and hands statistics and upload to
// the background runner. Nothing after the flag can undo completion.
func (s *Session) completeLocked(now time.Time) {
	s.completed = true
	s.stats = &Statistics{
		Day:         dayOf(now),
		FailMap:     maps.Clone(s.failMap),
		UseTimeMap:  maps.Clone(s.useTimeMap),
		TotalTimeMs: now.Sub(s.startTime).Milliseconds(),
		Items:       slices.Clone(s.briefs),
	}
	s.logger.Info("session complete",
		zap.Int("items", len(s.briefs)),
		zap.Int64("total_ms", s.stats.TotalTimeMs))

	stats := s.statisticsLocked()
	err := s.tasks.Go("study.complete", func(ctx context.Context) error {
		return s.finish(ctx, stats)
	})
	if err != nil {
		s.logger.Warn("completion report not scheduled", zap.Error(err))
	}
}

// finish persists merged statistics then runs exactly one upload path.
func (s *Session) finish(ctx context.Context, stats *Statistics) error {
	if st := s.deps.Stats; st != nil {
		prev, err := st.LastStatistics(ctx)
		if err != nil {
			s.logger.Warn("read last statistics", zap.Error(err))
			prev = nil
		}
		if err := st.SaveStatistics(ctx, MergeStatistics(prev, stats)); err != nil {
			s.logger.Warn("save statistics", zap.Error(err))
		}
	}

	switch {
	case s.deps.OnUpload != nil:
		if err := s.deps.OnUpload(ctx, s); err != nil {
			return fmt.Errorf("upload callback: %w", err)
		}
	case s.deps.Uploader != nil:
		if err := s.deps.Uploader.UploadDone(ctx, s.Items(), stats.FailMap, stats.UseTimeMap); err != nil {
			return fmt.Errorf("upload done items: %w", err)
		}
	default:
		s.logger.Debug("no upload path configured")
	}
	return nil
}
