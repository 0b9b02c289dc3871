// Package words serves word books to the study engines. It implements the
// engines' detail, option, statistics and upload collaborators on top of
// the local store.
package words

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/wordiz/internal/background"
	"github.com/abhisek/wordiz/internal/enrich"
	"github.com/abhisek/wordiz/internal/store"
	"github.com/abhisek/wordiz/internal/study"
)

var (
	// ErrNoUnlearned means every word of the book has been studied.
	ErrNoUnlearned = errors.New("words: no unlearned words left")
	// ErrEmptyReview means nothing has been studied yet to review.
	ErrEmptyReview = errors.New("words: nothing to review")
)

// OptionCount is the number of choices offered per card, correct one included.
const OptionCount = 4

// Enricher generates missing example content for a word.
type Enricher interface {
	Enrich(ctx context.Context, in enrich.Input) (*enrich.Enrichment, error)
}

// Options configures a Service. Every field is optional.
type Options struct {
	Enricher Enricher
	// Language is passed to the enricher as the learner's language.
	Language string
	Runner   *background.Runner
	Logger   *zap.Logger
	Rand     *rand.Rand
	Now      func() time.Time
}

// Service implements the study collaborators over the store.
type Service struct {
	words store.WordRepo
	stats store.StatsRepo
	opts  Options

	logger *zap.Logger

	randMu sync.Mutex
	rand   *rand.Rand

	enrichMu  sync.Mutex
	enriching map[int64]bool
}

// NewService creates a word service.
func NewService(words store.WordRepo, stats store.StatsRepo, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		words:     words,
		stats:     stats,
		opts:      opts,
		logger:    opts.Logger.Named("words"),
		rand:      opts.Rand,
		enriching: make(map[int64]bool),
	}
}

// StudyItems returns up to limit unlearned words of book as study items.
func (s *Service) StudyItems(ctx context.Context, book string, limit int) ([]study.Item, error) {
	ws, err := s.words.Unlearned(ctx, book, limit)
	if err != nil {
		return nil, fmt.Errorf("load study items: %w", err)
	}
	if len(ws) == 0 {
		return nil, ErrNoUnlearned
	}
	items := make([]study.Item, len(ws))
	for i, w := range ws {
		items[i] = study.Item{TopicID: w.ID, Word: w.Word}
	}
	return items, nil
}

// ReviewWords returns up to limit learned words of book for the spelling
// drill, most recently learned first.
func (s *Service) ReviewWords(ctx context.Context, book string, limit int) ([]string, error) {
	ws, _, err := s.ReviewSet(ctx, book, limit)
	return ws, err
}

// ReviewSet is ReviewWords plus each word's translation, used as the prompt
// while the word itself stays hidden.
func (s *Service) ReviewSet(ctx context.Context, book string, limit int) ([]string, map[string]string, error) {
	ws, err := s.words.Learned(ctx, book, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("load review words: %w", err)
	}
	if len(ws) == 0 {
		return nil, nil, ErrEmptyReview
	}
	out := make([]string, len(ws))
	hints := make(map[string]string, len(ws))
	for i, w := range ws {
		out[i] = w.Word
		hints[w.Word] = w.Translation
	}
	return out, hints, nil
}

// Counts returns progress per book.
func (s *Service) Counts(ctx context.Context) ([]store.BookCount, error) {
	return s.words.Counts(ctx)
}

// FetchItemDetail resolves the display detail of item, choosing distractor
// ids from the same book. Words missing example content are queued for
// enrichment when an enricher is configured.
func (s *Service) FetchItemDetail(ctx context.Context, item study.Item) (*study.Detail, error) {
	w, err := s.words.Get(ctx, item.TopicID)
	if err != nil {
		return nil, fmt.Errorf("fetch detail of %q: %w", item.Word, err)
	}
	book, err := s.words.ListBook(ctx, w.Book)
	if err != nil {
		return nil, fmt.Errorf("fetch distractors of %q: %w", item.Word, err)
	}

	d := detailOf(w)
	d.OptionIDs = s.distractors(w.ID, book, OptionCount-1)
	s.enrichLater(w)
	return d, nil
}

// LoadOptions builds the choice list for item: its distractors plus the
// correct answer at a random position.
func (s *Service) LoadOptions(ctx context.Context, item study.Item, detail *study.Detail) ([]study.Option, error) {
	correct, err := s.words.Get(ctx, item.TopicID)
	if err != nil {
		return nil, fmt.Errorf("load options of %q: %w", item.Word, err)
	}

	var ids []int64
	if detail != nil {
		ids = detail.OptionIDs
	}
	if len(ids) == 0 {
		book, err := s.words.ListBook(ctx, correct.Book)
		if err != nil {
			return nil, fmt.Errorf("load options of %q: %w", item.Word, err)
		}
		ids = s.distractors(correct.ID, book, OptionCount-1)
	}

	opts := make([]study.Option, 0, len(ids)+1)
	for _, id := range ids {
		w, err := s.words.Get(ctx, id)
		if err != nil {
			if store.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("load option %d: %w", id, err)
		}
		opts = append(opts, study.Option{ID: w.ID, Word: w.Word, Translation: w.Translation})
	}

	s.randMu.Lock()
	at := s.rand.IntN(len(opts) + 1)
	s.randMu.Unlock()
	opts = append(opts, study.Option{})
	copy(opts[at+1:], opts[at:])
	opts[at] = study.Option{ID: correct.ID, Word: correct.Word, Translation: correct.Translation, Correct: true}
	return opts, nil
}

// LastStatistics returns the most recently saved statistics, or nil.
func (s *Service) LastStatistics(ctx context.Context) (*study.Statistics, error) {
	_, data, err := s.stats.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var st study.Statistics
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode statistics: %w", err)
	}
	return &st, nil
}

// SaveStatistics stores st under its day.
func (s *Service) SaveStatistics(ctx context.Context, st *study.Statistics) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode statistics: %w", err)
	}
	return s.stats.Save(ctx, st.Day, data)
}

// UploadDone records items as learned with their failure counts and times.
func (s *Service) UploadDone(ctx context.Context, items []study.Item, failMap map[int64]int, useTimeMap map[int64]int64) error {
	now := s.opts.Now()
	records := make([]store.DoneRecord, len(items))
	for i, it := range items {
		records[i] = store.DoneRecord{
			WordID:    it.TopicID,
			FailCount: failMap[it.TopicID],
			UseTimeMs: useTimeMap[it.TopicID],
			DoneAt:    now,
		}
	}
	if err := s.words.MarkDone(ctx, records); err != nil {
		return fmt.Errorf("upload done: %w", err)
	}
	s.logger.Info("items recorded", zap.Int("count", len(records)))
	return nil
}

// distractors picks up to n ids from book other than id.
func (s *Service) distractors(id int64, book []store.Word, n int) []int64 {
	candidates := make([]int64, 0, len(book))
	for _, w := range book {
		if w.ID != id {
			candidates = append(candidates, w.ID)
		}
	}

	s.randMu.Lock()
	s.rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	s.randMu.Unlock()

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

func detailOf(w *store.Word) *study.Detail {
	return &study.Detail{
		TopicID:             w.ID,
		Word:                w.Word,
		Phonetic:            w.Phonetic,
		Translation:         w.Translation,
		EnglishTranslation:  w.EnglishTranslation,
		Sentence:            w.Sentence,
		SentenceTranslation: w.SentenceTranslation,
		AudioURL:            w.AudioURL,
	}
}
