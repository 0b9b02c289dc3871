package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// Word is one entry of a word book.
type Word struct {
	ID                  int64
	Book                string
	Word                string
	Phonetic            string
	Translation         string
	EnglishTranslation  string
	Sentence            string
	SentenceTranslation string
	AudioURL            string
	LearnedAt           time.Time // zero until studied to the end
	CreatedAt           time.Time
}

// Learned reports whether the word finished a study session.
func (w *Word) Learned() bool {
	return !w.LearnedAt.IsZero()
}

// WordDetail holds the enrichable fields of a word.
type WordDetail struct {
	EnglishTranslation  string
	Sentence            string
	SentenceTranslation string
}

// DoneRecord marks one word finished in a session.
type DoneRecord struct {
	WordID    int64
	FailCount int
	UseTimeMs int64
	DoneAt    time.Time
}

// BookCount summarises progress through a book.
type BookCount struct {
	Book    string
	Total   int
	Learned int
}

// WordRepo manages word books.
type WordRepo interface {
	// Upsert inserts words or refreshes their content, keyed by book and
	// word. Learned marks survive. Returned IDs follow the input order.
	Upsert(ctx context.Context, words []Word) ([]int64, error)

	// Get returns the word with id, or ErrNotFound.
	Get(ctx context.Context, id int64) (*Word, error)

	// ListBook returns every word in book ordered by id.
	ListBook(ctx context.Context, book string) ([]Word, error)

	// Unlearned returns up to limit words of book not yet learned, oldest
	// first. limit <= 0 means no limit.
	Unlearned(ctx context.Context, book string, limit int) ([]Word, error)

	// Learned returns up to limit learned words of book, most recent first.
	Learned(ctx context.Context, book string, limit int) ([]Word, error)

	// MarkDone records finished words and stamps them learned.
	MarkDone(ctx context.Context, records []DoneRecord) error

	// UpdateDetail stores enriched fields for a word.
	UpdateDetail(ctx context.Context, id int64, d WordDetail) error

	// Counts returns per-book totals.
	Counts(ctx context.Context) ([]BookCount, error)
}

// StatsRepo stores one JSON statistics document per day.
type StatsRepo interface {
	// Latest returns the most recent day's document, or nil if none exist.
	Latest(ctx context.Context) (day string, data []byte, err error)

	// Save writes the document for day, replacing any previous one.
	Save(ctx context.Context, day string, data []byte) error
}

// Event is one entry of the append-only event log.
type Event struct {
	ID        string
	Sequence  int64
	Timestamp time.Time
	Name      string
	Group     string
	Payload   string
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	Purpose      string  `json:"purpose"`
	Word         string  `json:"word,omitempty"`
	Attempt      int     `json:"attempt,omitempty"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	LatencyMs    int64   `json:"latency_ms"`
	Success      bool    `json:"success"`
	ErrorMessage string  `json:"error_message,omitempty"`
	CostUSD      float64 `json:"cost_usd,omitempty"`
	RequestBody  string  `json:"request,omitempty"`
	ResponseBody string  `json:"response,omitempty"`
}

// EventLLMRequest names LLM request events in the log.
const EventLLMRequest = "llm_request"

// EventRepo provides append and query access to the event log.
type EventRepo interface {
	// Append stores e, assigning its sequence number. ID and Timestamp are
	// filled in when empty.
	Append(ctx context.Context, e *Event) error

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// Count returns the number of events named name, or all events when
	// name is empty.
	Count(ctx context.Context, name string) (int, error)

	// Recent returns up to limit events, newest first.
	Recent(ctx context.Context, limit int) ([]Event, error)

	// RecentNamed is Recent restricted to events named name.
	RecentNamed(ctx context.Context, name string, limit int) ([]Event, error)

	// BySequence returns the event with sequence number seq, or ErrNotFound.
	BySequence(ctx context.Context, seq int64) (*Event, error)
}
