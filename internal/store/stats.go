package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// statsRepo implements StatsRepo. Day keys sort lexically, so the latest
// document is the greatest key.
type statsRepo struct {
	db *sql.DB
}

func (r *statsRepo) Latest(ctx context.Context) (string, []byte, error) {
	query, args := builder.Select("day", "data").
		From(builder.Table(tableStatistics)).
		OrderBy(entsql.Desc("day")).
		Limit(1).
		Query()

	var (
		day  string
		data string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&day, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("query latest statistics: %w", err)
	}
	return day, []byte(data), nil
}

func (r *statsRepo) Save(ctx context.Context, day string, data []byte) error {
	insert := builder.Insert(tableStatistics).
		Columns("day", "data", "updated_at").
		Values(day, string(data), time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("day"),
			entsql.ResolveWithNewValues(),
		)
	if err := execBuilder(ctx, r.db, insert); err != nil {
		return fmt.Errorf("save statistics for %s: %w", day, err)
	}
	return nil
}
