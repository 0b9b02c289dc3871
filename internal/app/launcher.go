package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/wordiz/internal/background"
	"github.com/abhisek/wordiz/internal/screen"
	spellscreen "github.com/abhisek/wordiz/internal/screens/spell"
	studyscreen "github.com/abhisek/wordiz/internal/screens/study"
	"github.com/abhisek/wordiz/internal/spell"
	"github.com/abhisek/wordiz/internal/store"
	"github.com/abhisek/wordiz/internal/study"
	"github.com/abhisek/wordiz/internal/words"
)

// Drills that can be opened directly at startup.
const (
	StartStudy = "study"
	StartSpell = "spell"
)

// DefaultBatchSize is used when Options.BatchSize is not set.
const DefaultBatchSize = 20

// Options configures Run.
type Options struct {
	Words    *words.Service
	Reporter spell.Reporter
	Runner   *background.Runner
	Logger   *zap.Logger

	Book      string
	BatchSize int

	// Start opens StartStudy or StartSpell above the home screen.
	Start string
}

// launcher implements home.Launcher over the word service. Options are
// cached across study sessions of one run.
type launcher struct {
	opts   Options
	cache  *study.OptionCache
	logger *zap.Logger
}

func newLauncher(opts Options) (*launcher, error) {
	if opts.Words == nil {
		return nil, errors.New("app: word service is required")
	}
	if opts.Book == "" {
		return nil, errors.New("app: book is required")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &launcher{
		opts:   opts,
		cache:  study.NewOptionCache(),
		logger: opts.Logger.Named("app"),
	}, nil
}

// Progress returns the counts of the configured book, zero when the book
// has not been imported.
func (l *launcher) Progress(ctx context.Context) (store.BookCount, error) {
	counts, err := l.opts.Words.Counts(ctx)
	if err != nil {
		return store.BookCount{}, err
	}
	for _, c := range counts {
		if c.Book == l.opts.Book {
			return c, nil
		}
	}
	return store.BookCount{Book: l.opts.Book}, nil
}

// Study opens a session over the next batch of unlearned words.
func (l *launcher) Study(ctx context.Context) (screen.Screen, error) {
	items, err := l.opts.Words.StudyItems(ctx, l.opts.Book, l.opts.BatchSize)
	if err != nil {
		return nil, err
	}
	sess, err := study.New(items, study.Deps{
		Details:     l.opts.Words,
		Options:     l.opts.Words,
		OptionCache: l.cache,
		Stats:       l.opts.Words,
		Uploader:    l.opts.Words,
		Runner:      l.opts.Runner,
		Logger:      l.opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	l.logger.Info("study session opened", zap.String("book", l.opts.Book), zap.Int("items", len(items)))
	return studyscreen.New(sess, l.opts.Logger), nil
}

// Spell opens a spelling drill over recently learned words.
func (l *launcher) Spell(ctx context.Context) (screen.Screen, error) {
	ws, hints, err := l.opts.Words.ReviewSet(ctx, l.opts.Book, l.opts.BatchSize)
	if err != nil {
		return nil, err
	}
	sess, err := spell.New(ws, spell.Deps{
		Reporter: l.opts.Reporter,
		Runner:   l.opts.Runner,
		Logger:   l.opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	l.logger.Info("spelling drill opened", zap.String("book", l.opts.Book), zap.Int("words", len(ws)))
	return spellscreen.New(sess, hints), nil
}

func (l *launcher) start(name string) (screen.Screen, error) {
	ctx := context.Background()
	switch name {
	case StartStudy:
		return l.Study(ctx)
	case StartSpell:
		return l.Spell(ctx)
	default:
		return nil, fmt.Errorf("app: unknown drill %q", name)
	}
}
