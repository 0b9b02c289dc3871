package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var wordColumns = []string{
	"id", "book", "word", "phonetic", "translation", "english_translation",
	"sentence", "sentence_translation", "audio_url", "learned_at", "created_at",
}

// wordRepo implements WordRepo with builder-rendered SQL.
type wordRepo struct {
	db *sql.DB
}

func (r *wordRepo) Upsert(ctx context.Context, words []Word) ([]int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	ids := make([]int64, 0, len(words))
	for _, w := range words {
		insert := builder.Insert(tableWords).
			Columns("book", "word", "phonetic", "translation", "english_translation",
				"sentence", "sentence_translation", "audio_url", "created_at").
			Values(w.Book, w.Word, w.Phonetic, w.Translation, w.EnglishTranslation,
				w.Sentence, w.SentenceTranslation, w.AudioURL, now).
			OnConflict(
				entsql.ConflictColumns("book", "word"),
				entsql.ResolveWith(func(u *entsql.UpdateSet) {
					u.SetExcluded("translation")
					for _, c := range []string{"phonetic", "english_translation",
						"sentence", "sentence_translation", "audio_url"} {
						setExcludedUnlessBlank(u, c)
					}
				}),
			)
		if err := execBuilder(ctx, tx, insert); err != nil {
			return nil, fmt.Errorf("upsert word %q: %w", w.Word, err)
		}

		query, args := builder.Select("id").
			From(builder.Table(tableWords)).
			Where(entsql.And(entsql.EQ("book", w.Book), entsql.EQ("word", w.Word))).
			Query()
		var id int64
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return nil, fmt.Errorf("resolve id of %q: %w", w.Word, err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit upsert: %w", err)
	}
	return ids, nil
}

// setExcludedUnlessBlank takes the incoming value of column on conflict,
// keeping the stored one when the incoming value is empty.
func setExcludedUnlessBlank(u *entsql.UpdateSet, column string) {
	incoming := builder.Table("excluded").C(column)
	u.Set(column, entsql.Expr(fmt.Sprintf("COALESCE(NULLIF(%s, ''), %s)", incoming, u.Table().C(column))))
}

func (r *wordRepo) Get(ctx context.Context, id int64) (*Word, error) {
	words, err := r.query(ctx, builder.Select(wordColumns...).
		From(builder.Table(tableWords)).
		Where(entsql.EQ("id", id)))
	if err != nil {
		return nil, fmt.Errorf("get word %d: %w", id, err)
	}
	if len(words) == 0 {
		return nil, ErrNotFound
	}
	return &words[0], nil
}

func (r *wordRepo) ListBook(ctx context.Context, book string) ([]Word, error) {
	words, err := r.query(ctx, builder.Select(wordColumns...).
		From(builder.Table(tableWords)).
		Where(entsql.EQ("book", book)).
		OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("list book %q: %w", book, err)
	}
	return words, nil
}

func (r *wordRepo) Unlearned(ctx context.Context, book string, limit int) ([]Word, error) {
	sel := builder.Select(wordColumns...).
		From(builder.Table(tableWords)).
		Where(entsql.And(entsql.EQ("book", book), entsql.IsNull("learned_at"))).
		OrderBy("id")
	if limit > 0 {
		sel.Limit(limit)
	}
	words, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query unlearned: %w", err)
	}
	return words, nil
}

func (r *wordRepo) Learned(ctx context.Context, book string, limit int) ([]Word, error) {
	sel := builder.Select(wordColumns...).
		From(builder.Table(tableWords)).
		Where(entsql.And(entsql.EQ("book", book), entsql.NotNull("learned_at"))).
		OrderBy(entsql.Desc("learned_at"), entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	words, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query learned: %w", err)
	}
	return words, nil
}

func (r *wordRepo) MarkDone(ctx context.Context, records []DoneRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mark done: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		at := rec.DoneAt
		if at.IsZero() {
			at = time.Now()
		}
		insert := builder.Insert(tableDoneRecords).
			Columns("word_id", "fail_count", "use_time_ms", "done_at").
			Values(rec.WordID, rec.FailCount, rec.UseTimeMs, at.UnixMilli())
		if err := execBuilder(ctx, tx, insert); err != nil {
			return fmt.Errorf("record word %d: %w", rec.WordID, err)
		}
		update := builder.Update(tableWords).
			Set("learned_at", at.UnixMilli()).
			Where(entsql.EQ("id", rec.WordID))
		if err := execBuilder(ctx, tx, update); err != nil {
			return fmt.Errorf("mark word %d learned: %w", rec.WordID, err)
		}
	}
	return tx.Commit()
}

func (r *wordRepo) UpdateDetail(ctx context.Context, id int64, d WordDetail) error {
	query, args := builder.Update(tableWords).
		Set("english_translation", d.EnglishTranslation).
		Set("sentence", d.Sentence).
		Set("sentence_translation", d.SentenceTranslation).
		Where(entsql.EQ("id", id)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update detail of %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *wordRepo) Counts(ctx context.Context) ([]BookCount, error) {
	query, args := builder.Select("book", entsql.Count("*"), entsql.Count("learned_at")).
		From(builder.Table(tableWords)).
		GroupBy("book").
		OrderBy("book").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count words: %w", err)
	}
	defer rows.Close()

	var out []BookCount
	for rows.Next() {
		var c BookCount
		if err := rows.Scan(&c.Book, &c.Total, &c.Learned); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *wordRepo) query(ctx context.Context, sel *entsql.Selector) ([]Word, error) {
	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Word
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func scanWord(rows *sql.Rows) (Word, error) {
	var (
		w         Word
		learnedAt sql.NullInt64
		createdAt int64
	)
	err := rows.Scan(&w.ID, &w.Book, &w.Word, &w.Phonetic, &w.Translation,
		&w.EnglishTranslation, &w.Sentence, &w.SentenceTranslation, &w.AudioURL,
		&learnedAt, &createdAt)
	if err != nil {
		return Word{}, fmt.Errorf("scan word: %w", err)
	}
	if learnedAt.Valid {
		w.LearnedAt = time.UnixMilli(learnedAt.Int64)
	}
	w.CreatedAt = time.UnixMilli(createdAt)
	return w, nil
}

// IsNotFound reports whether err is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
