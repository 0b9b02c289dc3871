package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// sequenceCounter manages the global monotonic sequence number stamped on
// every event. Row ids are random UUIDs, so ordering comes from here.
//
// The mutex serializes within the process; the RETURNING clause makes the
// increment atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// eventRepo implements EventRepo on the events table.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) Append(ctx context.Context, e *Event) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if e.Payload == "" {
		e.Payload = "{}"
	}
	e.Sequence = seqNum

	insert := builder.Insert(tableEvents).
		Columns("id", "sequence", "timestamp", "name", "event_group", "payload").
		Values(e.ID, e.Sequence, e.Timestamp.UnixMilli(), e.Name, e.Group, e.Payload)
	if err := execBuilder(ctx, r.db, insert); err != nil {
		return fmt.Errorf("save event %s: %w", e.Name, err)
	}
	return nil
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal LLM request event: %w", err)
	}
	return r.Append(ctx, &Event{
		Name:    EventLLMRequest,
		Group:   "llm",
		Payload: string(payload),
	})
}

func (r *eventRepo) Count(ctx context.Context, name string) (int, error) {
	sel := builder.Select(entsql.Count("*")).From(builder.Table(tableEvents))
	if name != "" {
		sel.Where(entsql.EQ("name", name))
	}
	query, args := sel.Query()

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func (r *eventRepo) Recent(ctx context.Context, limit int) ([]Event, error) {
	return r.RecentNamed(ctx, "", limit)
}

func (r *eventRepo) RecentNamed(ctx context.Context, name string, limit int) ([]Event, error) {
	sel := selectEvents().OrderBy(entsql.Desc("sequence"))
	if name != "" {
		sel.Where(entsql.EQ("name", name))
	}
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *eventRepo) BySequence(ctx context.Context, seq int64) (*Event, error) {
	query, args := selectEvents().Where(entsql.EQ("sequence", seq)).Query()
	e, err := scanEvent(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

func selectEvents() *entsql.Selector {
	return builder.Select("id", "sequence", "timestamp", "name", "event_group", "payload").
		From(builder.Table(tableEvents))
}

func scanEvent(row interface{ Scan(...any) error }) (*Event, error) {
	var (
		e  Event
		ts int64
	)
	if err := row.Scan(&e.ID, &e.Sequence, &ts, &e.Name, &e.Group, &e.Payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	e.Timestamp = time.UnixMilli(ts)
	return &e, nil
}
