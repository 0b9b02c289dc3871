package study

import (
	"context"
	"fmt"
)

// DetailFetcher resolves the display detail for an item. It is called at
// most once per distinct item id per sequencer.
type DetailFetcher interface {
	FetchItemDetail(ctx context.Context, item Item) (*Detail, error)
}

// DetailFetcherFunc adapts a function to DetailFetcher.
type DetailFetcherFunc func(ctx context.Context, item Item) (*Detail, error)

func (f DetailFetcherFunc) FetchItemDetail(ctx context.Context, item Item) (*Detail, error) {
	return f(ctx, item)
}

// Sequencer drives the three stage queues in order and caches item detail.
// It is not safe for concurrent use; Session serializes access to it.
type Sequencer struct {
	queues  [len(Stages)]*StageQueue
	active  int
	total   int
	details map[int64]*Detail
	fetcher DetailFetcher
}

// NewSequencer creates a sequencer whose three queues all start with items.
func NewSequencer(items []Item, fetcher DetailFetcher) *Sequencer {
	s := &Sequencer{
		details: make(map[int64]*Detail),
		fetcher: fetcher,
	}
	for i, stage := range Stages {
		s.queues[i] = NewStageQueue(stage, items)
	}
	s.total = s.queues[0].Len()
	return s
}

// Len returns the number of distinct items N.
func (s *Sequencer) Len() int {
	return s.total
}

// HasNext reports whether the active queue or any later queue has work.
func (s *Sequencer) HasNext() bool {
	for i := s.active; i < len(s.queues); i++ {
		if s.queues[i].HasNext() {
			return true
		}
	}
	return false
}

// Remaining returns the number of pending items across all queues.
func (s *Sequencer) Remaining() int {
	n := 0
	for _, q := range s.queues {
		n += q.Len()
	}
	return n
}

// Stage returns the stage of the active queue.
func (s *Sequencer) Stage() Stage {
	return s.queues[s.active].Stage()
}

// Next pops the next item and returns a Card bound to it. It returns nil
// when every queue is exhausted.
//
// If the detail cannot be resolved the returned card carries a stub detail
// built from the item and the fetch error is returned alongside it; the
// cache is left untouched so a later visit retries the fetch.
func (s *Sequencer) Next(ctx context.Context) (*Card, error) {
	for s.active < len(s.queues)-1 && !s.queues[s.active].HasNext() {
		s.active++
	}
	q := s.queues[s.active]
	item, ok := q.Next()
	if !ok {
		return nil, nil
	}

	detail, err := s.resolve(ctx, item)
	if err != nil {
		return NewCard(item, stubDetail(item), q.Stage()), err
	}
	return NewCard(item, detail, q.Stage()), nil
}

// Putback re-queues item into the active stage.
func (s *Sequencer) Putback(item Item) {
	s.queues[s.active].Putback(item)
}

// Progress returns (3N - remaining - 1) / 3N. The -1 accounts for the item
// currently shown, which has left its queue but is not yet complete.
func (s *Sequencer) Progress() float64 {
	done, total := s.progress()
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total)
}

// Percent returns Progress scaled to 0..100, rounded half-up in integer
// arithmetic so exact halves never round down.
func (s *Sequencer) Percent() int {
	done, total := s.progress()
	if total == 0 {
		return 0
	}
	return (200*done + total) / (2 * total)
}

func (s *Sequencer) progress() (done, total int) {
	total = len(s.queues) * s.total
	done = total - s.Remaining() - 1
	return max(done, 0), total
}

// CachedDetail returns the cached detail for id, if resolved.
func (s *Sequencer) CachedDetail(id int64) (*Detail, bool) {
	d, ok := s.details[id]
	return d, ok
}

func (s *Sequencer) resolve(ctx context.Context, item Item) (*Detail, error) {
	if d, ok := s.details[item.TopicID]; ok {
		return d, nil
	}
	if s.fetcher == nil {
		d := stubDetail(item)
		s.details[item.TopicID] = d
		return d, nil
	}
	d, err := s.fetcher.FetchItemDetail(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("fetch detail for %d: %w", item.TopicID, err)
	}
	if d == nil {
		d = stubDetail(item)
	}
	s.details[item.TopicID] = d
	return d, nil
}
