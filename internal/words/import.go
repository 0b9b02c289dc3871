package words

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/wordiz/internal/store"
)

// ErrEmptyBook is returned when an import file holds no entries.
var ErrEmptyBook = errors.New("words: word book is empty")

// Entry is one word in an import file.
type Entry struct {
	Word                string `json:"word" validate:"required,max=64"`
	Phonetic            string `json:"phonetic"`
	Translation         string `json:"translation" validate:"required"`
	Definition          string `json:"definition"`
	Sentence            string `json:"sentence"`
	SentenceTranslation string `json:"sentence_translation"`
	AudioURL            string `json:"audio_url" validate:"omitempty,url"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Import reads a JSON array of entries from r into book and returns the
// number of words stored. Entries are validated before anything is written.
func (s *Service) Import(ctx context.Context, r io.Reader, book string) (int, error) {
	book = strings.TrimSpace(book)
	if book == "" {
		return 0, errors.New("import: book name is required")
	}

	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return 0, fmt.Errorf("import: decode word book: %w", err)
	}
	if len(entries) == 0 {
		return 0, ErrEmptyBook
	}

	ws := make([]store.Word, len(entries))
	for i, e := range entries {
		e.Word = strings.TrimSpace(e.Word)
		if err := validate.Struct(e); err != nil {
			return 0, fmt.Errorf("import: entry %d (%q): %w", i+1, e.Word, err)
		}
		ws[i] = store.Word{
			Book:                book,
			Word:                e.Word,
			Phonetic:            e.Phonetic,
			Translation:         e.Translation,
			EnglishTranslation:  e.Definition,
			Sentence:            e.Sentence,
			SentenceTranslation: e.SentenceTranslation,
			AudioURL:            e.AudioURL,
		}
	}

	ids, err := s.words.Upsert(ctx, ws)
	if err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}
	return len(ids), nil
}
