package words

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/wordiz/internal/enrich"
	"github.com/abhisek/wordiz/internal/llm"
	"github.com/abhisek/wordiz/internal/store"
)

func needsEnrichment(w *store.Word) bool {
	return w.Sentence == "" || w.EnglishTranslation == ""
}

// enrichLater queues w for background enrichment. The current card shows
// what is stored; later sessions see the enriched content.
func (s *Service) enrichLater(w *store.Word) {
	if s.opts.Enricher == nil || s.opts.Runner == nil || !needsEnrichment(w) {
		return
	}
	s.enrichMu.Lock()
	if s.enriching[w.ID] {
		s.enrichMu.Unlock()
		return
	}
	s.enriching[w.ID] = true
	s.enrichMu.Unlock()

	word := *w
	err := s.opts.Runner.Go("words.enrich", func(ctx context.Context) error {
		defer func() {
			s.enrichMu.Lock()
			delete(s.enriching, word.ID)
			s.enrichMu.Unlock()
		}()
		return s.enrichOne(ctx, &word)
	})
	if err != nil {
		s.logger.Debug("enrichment not scheduled", zap.Int64("word_id", w.ID), zap.Error(err))
	}
}

// EnrichBook enriches every word of book that lacks a sentence or an
// English definition. It stops at the first provider error and reports how
// many words were updated.
func (s *Service) EnrichBook(ctx context.Context, book string) (int, error) {
	if s.opts.Enricher == nil {
		return 0, fmt.Errorf("enrich book %q: no enricher configured", book)
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeBookEnrich)
	ws, err := s.words.ListBook(ctx, book)
	if err != nil {
		return 0, fmt.Errorf("enrich book %q: %w", book, err)
	}

	n := 0
	for i := range ws {
		if !needsEnrichment(&ws[i]) {
			continue
		}
		if err := s.enrichOne(ctx, &ws[i]); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (s *Service) enrichOne(ctx context.Context, w *store.Word) error {
	e, err := s.opts.Enricher.Enrich(ctx, enrich.Input{
		Word:        w.Word,
		Translation: w.Translation,
		Language:    s.opts.Language,
	})
	if err != nil {
		return err
	}

	d := store.WordDetail{
		EnglishTranslation:  w.EnglishTranslation,
		Sentence:            w.Sentence,
		SentenceTranslation: w.SentenceTranslation,
	}
	if d.Sentence == "" {
		d.Sentence = e.Sentence
		d.SentenceTranslation = e.SentenceTranslation
	}
	if d.EnglishTranslation == "" {
		d.EnglishTranslation = e.Definition
	}
	if err := s.words.UpdateDetail(ctx, w.ID, d); err != nil {
		return fmt.Errorf("store enrichment of %q: %w", w.Word, err)
	}
	s.logger.Debug("word enriched", zap.String("word", w.Word))
	return nil
}
