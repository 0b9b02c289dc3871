// Package enrich fills in example sentences and English definitions for
// words that were imported without them.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/wordiz/internal/llm"
)

// ErrEmptyWord is returned when asked to enrich a blank word.
var ErrEmptyWord = errors.New("enrich: empty word")

// Input describes the word to enrich.
type Input struct {
	Word        string
	Translation string
	Language    string
}

// Enrichment is the generated content for one word.
type Enrichment struct {
	Sentence            string
	SentenceTranslation string
	Definition          string
}

// Service generates enrichments with an LLM provider.
type Service struct {
	provider llm.Provider
	cfg      Config
}

// NewService creates an enrichment service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

type enrichmentOutput struct {
	Sentence            string `json:"sentence"`
	SentenceTranslation string `json:"sentence_translation"`
	Definition          string `json:"definition"`
}

// Enrich asks the provider for a sentence and definition of in.Word. The
// request is labeled with the word and, unless ctx already carries one, the
// word-enrich purpose.
func (s *Service) Enrich(ctx context.Context, in Input) (*Enrichment, error) {
	in.Word = strings.TrimSpace(in.Word)
	if in.Word == "" {
		return nil, ErrEmptyWord
	}
	if llm.PurposeFrom(ctx) == "" {
		ctx = llm.WithPurpose(ctx, llm.PurposeEnrich)
	}
	ctx = llm.WithWord(ctx, in.Word)

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      buildUserMessage(in),
		Schema:      EnrichmentSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("enrich %q: %w", in.Word, err)
	}

	var out enrichmentOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse enrichment response: %w", err)
	}
	if strings.TrimSpace(out.Sentence) == "" {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: errors.New("empty sentence")}
	}

	return &Enrichment{
		Sentence:            strings.TrimSpace(out.Sentence),
		SentenceTranslation: strings.TrimSpace(out.SentenceTranslation),
		Definition:          strings.TrimSpace(out.Definition),
	}, nil
}
