package words

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/wordiz/internal/background"
	"github.com/abhisek/wordiz/internal/enrich"
	"github.com/abhisek/wordiz/internal/llm"
	"github.com/abhisek/wordiz/internal/store"
	"github.com/abhisek/wordiz/internal/study"
)

const sampleBook = `[
	{"word": "abandon", "translation": "放弃", "phonetic": "/əˈbændən/"},
	{"word": "ability", "translation": "能力", "sentence": "She has the ability to lead.", "definition": "the power to do something"},
	{"word": "absent", "translation": "缺席的"},
	{"word": "absorb", "translation": "吸收"},
	{"word": "abstract", "translation": "抽象的"}
]`

func newTestService(t *testing.T, opts Options) (*Service, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "words.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(1, 2))
	}
	svc := NewService(s.Words(), s.Stats(), opts)
	n, err := svc.Import(context.Background(), strings.NewReader(sampleBook), "cet4")
	require.NoError(t, err)
	require.Equal(t, 5, n)
	return svc, s
}

func TestImport_Validation(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	_, err := svc.Import(ctx, strings.NewReader(`[{"word":"cat"}]`), "pets")
	assert.ErrorContains(t, err, "entry 1")

	_, err = svc.Import(ctx, strings.NewReader(`[{"word":"cat","translation":"猫","audio_url":"not a url"}]`), "pets")
	assert.Error(t, err)

	_, err = svc.Import(ctx, strings.NewReader(`[]`), "pets")
	assert.ErrorIs(t, err, ErrEmptyBook)

	_, err = svc.Import(ctx, strings.NewReader(`{`), "pets")
	assert.Error(t, err)

	_, err = svc.Import(ctx, strings.NewReader(sampleBook), " ")
	assert.Error(t, err)
}

func TestStudyItemsAndReview(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	_, err := svc.ReviewWords(ctx, "cet4", 0)
	assert.ErrorIs(t, err, ErrEmptyReview)

	items, err := svc.StudyItems(ctx, "cet4", 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "abandon", items[0].Word)

	require.NoError(t, svc.UploadDone(ctx, items, map[int64]int{items[0].TopicID: 2}, nil))

	review, err := svc.ReviewWords(ctx, "cet4", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"abandon", "ability"}, review)

	_, hints, err := svc.ReviewSet(ctx, "cet4", 0)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"abandon": "放弃", "ability": "能力"}, hints)

	rest, err := svc.StudyItems(ctx, "cet4", 0)
	require.NoError(t, err)
	assert.Len(t, rest, 3)

	require.NoError(t, svc.UploadDone(ctx, rest, nil, nil))
	_, err = svc.StudyItems(ctx, "cet4", 0)
	assert.ErrorIs(t, err, ErrNoUnlearned)

	_, err = svc.StudyItems(ctx, "missing-book", 0)
	assert.ErrorIs(t, err, ErrNoUnlearned)
}

func TestFetchItemDetailAndOptions(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	items, err := svc.StudyItems(ctx, "cet4", 1)
	require.NoError(t, err)

	d, err := svc.FetchItemDetail(ctx, items[0])
	require.NoError(t, err)
	assert.Equal(t, "abandon", d.Word)
	assert.Equal(t, "/əˈbændən/", d.Phonetic)
	assert.Len(t, d.OptionIDs, OptionCount-1)
	assert.NotContains(t, d.OptionIDs, items[0].TopicID)

	opts, err := svc.LoadOptions(ctx, items[0], d)
	require.NoError(t, err)
	require.Len(t, opts, OptionCount)

	var correct []study.Option
	ids := map[int64]bool{}
	for _, o := range opts {
		ids[o.ID] = true
		if o.Correct {
			correct = append(correct, o)
		}
	}
	require.Len(t, correct, 1)
	assert.Equal(t, "放弃", correct[0].Translation)
	assert.Len(t, ids, OptionCount, "no duplicate options")

	_, err = svc.FetchItemDetail(ctx, study.Item{TopicID: 999, Word: "ghost"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLoadOptionsWithoutDetail(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	items, _ := svc.StudyItems(context.Background(), "cet4", 1)

	opts, err := svc.LoadOptions(context.Background(), items[0], nil)
	require.NoError(t, err)
	assert.Len(t, opts, OptionCount)
}

func TestStatisticsRoundTrip(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	got, err := svc.LastStatistics(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	st := &study.Statistics{
		Day:         "2026-03-14",
		FailMap:     map[int64]int{1: 2},
		UseTimeMap:  map[int64]int64{1: 1500},
		TotalTimeMs: 9000,
		Items:       []study.Brief{{TopicID: 1, Word: "abandon", Translation: "放弃"}},
	}
	require.NoError(t, svc.SaveStatistics(ctx, st))

	got, err = svc.LastStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, st, got)
}

type countingEnricher struct {
	mu       sync.Mutex
	words    []string
	purposes []string
	err      error
}

func (e *countingEnricher) Enrich(ctx context.Context, in enrich.Input) (*enrich.Enrichment, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.words = append(e.words, in.Word)
	e.purposes = append(e.purposes, llm.PurposeFrom(ctx))
	if e.err != nil {
		return nil, e.err
	}
	return &enrich.Enrichment{
		Sentence:            "Example with " + in.Word + ".",
		SentenceTranslation: "例句",
		Definition:          "meaning of " + in.Word,
	}, nil
}

func TestEnrichBook(t *testing.T) {
	e := &countingEnricher{}
	svc, s := newTestService(t, Options{Enricher: e})
	ctx := context.Background()

	n, err := svc.EnrichBook(ctx, "cet4")
	require.NoError(t, err)
	assert.Equal(t, 4, n, "ability already has content")
	for _, p := range e.purposes {
		assert.Equal(t, llm.PurposeBookEnrich, p)
	}

	ws, err := s.Words().ListBook(ctx, "cet4")
	require.NoError(t, err)
	for _, w := range ws {
		assert.NotEmpty(t, w.Sentence, w.Word)
		assert.NotEmpty(t, w.EnglishTranslation, w.Word)
	}
	assert.Equal(t, "She has the ability to lead.", ws[1].Sentence)

	n, err = svc.EnrichBook(ctx, "cet4")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEnrichBookRequiresEnricher(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	_, err := svc.EnrichBook(context.Background(), "cet4")
	assert.Error(t, err)
}

func TestFetchQueuesBackgroundEnrichment(t *testing.T) {
	runner := background.New(2, nil)
	defer runner.Close()

	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		`{"sentence":"They had to abandon the car.","sentence_translation":"他们不得不弃车。","definition":"to leave behind"}`,
	)})
	svc, s := newTestService(t, Options{
		Enricher: enrich.NewService(mock, enrich.DefaultConfig()),
		Runner:   runner,
	})
	ctx := context.Background()

	items, _ := svc.StudyItems(ctx, "cet4", 1)
	d, err := svc.FetchItemDetail(ctx, items[0])
	require.NoError(t, err)
	assert.Empty(t, d.Sentence, "current card shows stored content")

	runner.Wait()
	w, err := s.Words().Get(ctx, items[0].TopicID)
	require.NoError(t, err)
	assert.Equal(t, "They had to abandon the car.", w.Sentence)
	assert.Equal(t, "to leave behind", w.EnglishTranslation)
}

func TestEnrichmentFailureDoesNotBreakFetch(t *testing.T) {
	runner := background.New(1, nil)
	defer runner.Close()

	svc, _ := newTestService(t, Options{Enricher: &countingEnricher{err: errors.New("quota")}, Runner: runner})
	items, _ := svc.StudyItems(context.Background(), "cet4", 1)

	_, err := svc.FetchItemDetail(context.Background(), items[0])
	require.NoError(t, err)
	runner.Wait()
}

func TestUploadDoneUsesClock(t *testing.T) {
	at := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	svc, s := newTestService(t, Options{Now: func() time.Time { return at }})
	ctx := context.Background()

	items, _ := svc.StudyItems(ctx, "cet4", 1)
	require.NoError(t, svc.UploadDone(ctx, items, nil, nil))

	w, err := s.Words().Get(ctx, items[0].TopicID)
	require.NoError(t, err)
	assert.True(t, w.LearnedAt.Equal(at))
}
