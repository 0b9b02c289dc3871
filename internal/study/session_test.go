package study

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/wordiz/internal/background"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memStats struct {
	mu      sync.Mutex
	last    *Statistics
	saved   []*Statistics
	readErr error
}

func (m *memStats) LastStatistics(context.Context) (*Statistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.readErr
}

func (m *memStats) SaveStatistics(_ context.Context, s *Statistics) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, s)
	m.last = s
	return nil
}

type recordingUploader struct {
	mu    sync.Mutex
	calls int
	items []Item
	fails map[int64]int
}

func (u *recordingUploader) UploadDone(_ context.Context, items []Item, failMap map[int64]int, _ map[int64]int64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	u.items = items
	u.fails = failMap
	return nil
}

type stubOptions struct {
	err   error
	calls int
	mu    sync.Mutex
}

func (o *stubOptions) LoadOptions(_ context.Context, item Item, _ *Detail) ([]Option, error) {
	o.mu.Lock()
	o.calls++
	o.mu.Unlock()
	if o.err != nil {
		return nil, o.err
	}
	return []Option{
		{ID: item.TopicID, Word: item.Word, Correct: true},
		{ID: 100 + item.TopicID, Word: "decoy"},
	}, nil
}

func newTestSession(t *testing.T, items []Item, deps Deps) *Session {
	t.Helper()
	s, err := New(items, deps)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestNew_NoItems(t *testing.T) {
	_, err := New(nil, Deps{})
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestSession_AlwaysPassScenario(t *testing.T) {
	stats := &memStats{}
	up := &recordingUploader{}
	s := newTestSession(t, testItems("cat", "dog", "fox"), Deps{Stats: stats, Uploader: up})

	var progress []int
	s.Subscribe(func(v View) { progress = append(progress, v.Progress) })

	ctx := context.Background()
	s.Start(ctx)
	for i := 0; i < 100 && !s.Completed(); i++ {
		require.True(t, s.Pass(ctx))
	}
	require.True(t, s.Completed())
	assert.False(t, s.Pass(ctx), "pass after completion is a no-op")

	// Progress never goes backwards and ends below 100.
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i], progress[i-1])
	}
	assert.Equal(t, 0, progress[1], "first card shows 0%")
	assert.Less(t, progress[len(progress)-1], 100)

	st := s.Statistics()
	require.NotNil(t, st)
	assert.Len(t, st.Items, 3)
	assert.Empty(t, st.FailMap)

	s.Wait()
	require.Len(t, stats.saved, 1)
	assert.Len(t, stats.saved[0].Items, 3)
	assert.Equal(t, 1, up.calls)
	assert.Len(t, up.items, 3)
}

func TestSession_ProgressStrictlyIncreasesPerCard(t *testing.T) {
	s := newTestSession(t, testItems("a", "b", "c"), Deps{})
	ctx := context.Background()

	var perCard []int
	s.Start(ctx)
	perCard = append(perCard, s.Progress())
	for !s.Completed() {
		before, _ := s.CurrentItem()
		stage := s.View().Card.Stage
		s.Pass(ctx)
		if s.Completed() {
			break
		}
		after, _ := s.CurrentItem()
		v := s.View()
		if after != before || v.Card.Stage != stage {
			perCard = append(perCard, v.Progress)
		}
	}

	assert.Equal(t, []int{0, 11, 22, 33, 44, 56, 67, 78, 89}, perCard)
}

func TestSession_FastPathSkipsRevealForUnfailedItems(t *testing.T) {
	s := newTestSession(t, testItems("cat"), Deps{})
	ctx := context.Background()
	s.Start(ctx)

	// Recognition always reveals the back first.
	s.Pass(ctx)
	v := s.View()
	require.Equal(t, StageRecognition, v.Card.Stage)
	assert.True(t, v.Card.ShowAnswer)

	s.Pass(ctx)
	v = s.View()
	require.Equal(t, StageUnderstanding, v.Card.Stage)
	assert.False(t, v.Card.ShowAnswer)

	// Never failed: advance straight to mastery.
	s.Pass(ctx)
	v = s.View()
	require.Equal(t, StageMastery, v.Card.Stage)
	assert.False(t, v.Card.ShowAnswer)

	s.Pass(ctx)
	assert.True(t, s.Completed())
}

func TestSession_FailedItemRevealsOutsideRecognition(t *testing.T) {
	s := newTestSession(t, testItems("cat"), Deps{})
	ctx := context.Background()
	s.Start(ctx)
	s.Pass(ctx)
	s.Pass(ctx) // understanding

	_, ok := s.Fail(ctx, 42)
	require.True(t, ok)

	s.Pass(ctx)
	v := s.View()
	assert.Equal(t, StageUnderstanding, v.Card.Stage)
	assert.True(t, v.Card.ShowAnswer, "failed item gets the reveal step")
	assert.Equal(t, 2, v.Card.AttemptCount)

	// Advancing pops the putback copy of the same item, same stage.
	s.Pass(ctx)
	v = s.View()
	assert.Equal(t, StageUnderstanding, v.Card.Stage)
	assert.Equal(t, int64(1), v.Card.Item.TopicID)
}

func TestSession_ForcedRevealBouncesToFront(t *testing.T) {
	s := newTestSession(t, testItems("cat", "dog"), Deps{})
	ctx := context.Background()
	s.Start(ctx)

	var revealed bool
	for range MaxAttempts {
		var ok bool
		revealed, ok = s.Fail(ctx, 9)
		require.True(t, ok)
	}
	require.True(t, revealed)
	v := s.View()
	assert.True(t, v.Card.ShowAnswer)
	assert.Equal(t, 0, v.Card.AttemptCount)
	assert.Equal(t, 3, v.Failures)

	// Forced reveal: the same card flips back for one more try.
	s.Pass(ctx)
	v = s.View()
	assert.Equal(t, "cat", v.Card.Item.Word)
	assert.False(t, v.Card.ShowAnswer)

	s.Pass(ctx)
	s.Pass(ctx)
	v = s.View()
	assert.Equal(t, "dog", v.Card.Item.Word)
	assert.Equal(t, map[int64]int{1: 3}, s.FailMap())
}

func TestSession_FailWithoutCardIsNoop(t *testing.T) {
	s := newTestSession(t, testItems("cat"), Deps{})

	revealed, ok := s.Fail(context.Background(), 1)
	assert.False(t, ok)
	assert.False(t, revealed)
	assert.Empty(t, s.FailMap())
	assert.False(t, s.Pass(context.Background()))
}

func TestSession_SubscribeImmediateAndUnsubscribe(t *testing.T) {
	s := newTestSession(t, testItems("cat"), Deps{})
	ctx := context.Background()

	var calls int
	unsubscribe := s.Subscribe(func(View) { calls++ })
	assert.Equal(t, 1, calls, "called on subscribe")

	s.Start(ctx)
	assert.Equal(t, 2, calls)

	unsubscribe()
	s.Pass(ctx)
	assert.Equal(t, 2, calls)
}

func TestSession_UseTimeStampedOnLeave(t *testing.T) {
	clk := newFakeClock()
	s := newTestSession(t, testItems("cat", "dog"), Deps{Now: clk.Now})
	ctx := context.Background()

	s.Start(ctx)
	clk.Add(1500 * time.Millisecond)
	s.Pass(ctx)
	assert.Empty(t, s.UseTimeMap(), "revealing does not leave the item")

	clk.Add(500 * time.Millisecond)
	s.Pass(ctx)
	assert.Equal(t, map[int64]int64{1: 2000}, s.UseTimeMap())

	clk.Add(3 * time.Second)
	s.Pass(ctx)
	s.Pass(ctx)
	assert.Equal(t, int64(3000), s.UseTimeMap()[2])
}

func TestSession_CompletionMergesSameDayStats(t *testing.T) {
	clk := newFakeClock()
	stats := &memStats{last: &Statistics{
		Day:         clk.Now().Format(DayLayout),
		FailMap:     map[int64]int{1: 5, 9: 2},
		UseTimeMap:  map[int64]int64{9: 700},
		TotalTimeMs: 1000,
		Items:       []Brief{{TopicID: 9, Word: "old"}},
	}}
	s := newTestSession(t, testItems("cat"), Deps{Stats: stats, Now: clk.Now, Uploader: &recordingUploader{}})
	ctx := context.Background()

	s.Start(ctx)
	s.Fail(ctx, 3)
	for !s.Completed() {
		clk.Add(time.Second)
		s.Pass(ctx)
	}
	s.Wait()

	require.Len(t, stats.saved, 1)
	merged := stats.saved[0]
	assert.Equal(t, 1, merged.FailMap[1], "later value wins")
	assert.Equal(t, 2, merged.FailMap[9])
	assert.Equal(t, int64(700), merged.UseTimeMap[9])
	assert.Len(t, merged.Items, 2)
	assert.Equal(t, 1000+s.Statistics().TotalTimeMs, merged.TotalTimeMs)
}

func TestSession_OnUploadReplacesDefault(t *testing.T) {
	up := &recordingUploader{}
	var called int
	var mu sync.Mutex
	s := newTestSession(t, testItems("cat"), Deps{
		Uploader: up,
		OnUpload: func(_ context.Context, got *Session) error {
			mu.Lock()
			defer mu.Unlock()
			called++
			assert.True(t, got.Completed())
			return nil
		},
	})
	ctx := context.Background()
	s.Start(ctx)
	for !s.Completed() {
		s.Pass(ctx)
	}
	s.Wait()

	assert.Equal(t, 1, called)
	assert.Zero(t, up.calls)
}

func TestSession_ReportFailuresDoNotBlockCompletion(t *testing.T) {
	stats := &memStats{readErr: errors.New("disk gone")}
	s := newTestSession(t, testItems("cat"), Deps{
		Stats:    stats,
		OnUpload: func(context.Context, *Session) error { return errors.New("offline") },
	})
	ctx := context.Background()
	s.Start(ctx)
	for !s.Completed() {
		s.Pass(ctx)
	}
	s.Wait()

	assert.True(t, s.Completed())
	require.Len(t, stats.saved, 1, "save still attempted after read failure")
}

func TestSession_ProgressiveOptions(t *testing.T) {
	loader := &stubOptions{}
	cache := NewOptionCache()
	s := newTestSession(t, testItems("cat", "dog"), Deps{Options: loader, OptionCache: cache})
	ctx := context.Background()

	var mu sync.Mutex
	var withOptions int
	s.Subscribe(func(v View) {
		mu.Lock()
		defer mu.Unlock()
		if len(v.Options) > 0 {
			withOptions++
		}
	})

	s.Start(ctx)
	s.Wait()

	v := s.View()
	require.Len(t, v.Options, 2)
	assert.True(t, v.Options[0].Correct)
	assert.True(t, v.Options[0].ShowTranslation)
	mu.Lock()
	assert.GreaterOrEqual(t, withOptions, 1, "listeners re-notified when options land")
	mu.Unlock()

	// Revisiting a cached item does not fetch again.
	for !s.Completed() {
		s.Pass(ctx)
		s.Wait()
	}
	assert.Equal(t, 2, loader.calls)
	assert.Equal(t, 2, cache.Len())
}

func TestSession_OptionFailureIsSwallowed(t *testing.T) {
	loader := &stubOptions{err: errors.New("timeout")}
	s := newTestSession(t, testItems("cat"), Deps{Options: loader})
	ctx := context.Background()

	s.Start(ctx)
	s.Wait()

	v := s.View()
	require.NotNil(t, v.Card)
	assert.Empty(t, v.Options)
	assert.True(t, s.Pass(ctx))
}

func TestSession_DetailFailureShowsStub(t *testing.T) {
	f := newCountingFetcher()
	f.fail[1] = true
	s := newTestSession(t, testItems("cat"), Deps{Details: f})

	s.Start(context.Background())
	v := s.View()
	require.NotNil(t, v.Card)
	assert.Equal(t, "cat", v.Card.Detail.Word)
}

func TestSession_ProgressRoundsHalfUp(t *testing.T) {
	s := newTestSession(t, numberedItems(40), Deps{})
	ctx := context.Background()

	s.Start(ctx)
	for range 69 {
		s.seq.Next(ctx)
	}
	assert.Equal(t, 58, s.Progress(), "69/120 is exactly 57.5%")
}

func TestSession_CloseIgnoresUnrelatedRunnerWork(t *testing.T) {
	runner := background.New(4, nil)
	release := make(chan struct{})
	t.Cleanup(func() {
		close(release)
		runner.Close()
	})
	require.NoError(t, runner.Go("words.enrich", func(context.Context) error {
		<-release
		return nil
	}))

	opts := &stubOptions{}
	s, err := New(testItems("cat"), Deps{Runner: runner, Options: opts})
	require.NoError(t, err)
	s.Start(context.Background())

	closed := make(chan struct{})
	go func() {
		s.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close waited for work the session did not start")
	}
	_, cached := s.deps.OptionCache.Get(1)
	assert.True(t, cached, "the session's own option load is drained")
}
