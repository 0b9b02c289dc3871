package study

import (
	"context"
	"maps"
	"time"
)

// DayLayout formats the day key that decides whether two statistics merge.
const DayLayout = "2006-01-02"

// Statistics aggregates the results of one or more sessions on the same day.
type Statistics struct {
	Day string `json:"day"`

	// FailMap counts wrong attempts per topic id.
	FailMap map[int64]int `json:"fail_map"`

	// UseTimeMap records milliseconds spent per topic id.
	UseTimeMap map[int64]int64 `json:"use_time_map"`

	// TotalTimeMs is the wall-clock time spent across sessions.
	TotalTimeMs int64 `json:"total_time_ms"`

	// Items summarizes every item touched.
	Items []Brief `json:"items"`
}

// StatsStore persists the most recent statistics.
type StatsStore interface {
	LastStatistics(ctx context.Context) (*Statistics, error)
	SaveStatistics(ctx context.Context, stats *Statistics) error
}

// MergeStatistics folds next into prev when both belong to the same day.
// Later values win on map key collisions, item lists concatenate and total
// time sums. A prev from another day is ignored.
func MergeStatistics(prev, next *Statistics) *Statistics {
	if prev == nil || prev.Day != next.Day {
		return next
	}

	out := &Statistics{
		Day:         next.Day,
		FailMap:     make(map[int64]int, len(prev.FailMap)+len(next.FailMap)),
		UseTimeMap:  make(map[int64]int64, len(prev.UseTimeMap)+len(next.UseTimeMap)),
		TotalTimeMs: prev.TotalTimeMs + next.TotalTimeMs,
	}
	maps.Copy(out.FailMap, prev.FailMap)
	maps.Copy(out.FailMap, next.FailMap)
	maps.Copy(out.UseTimeMap, prev.UseTimeMap)
	maps.Copy(out.UseTimeMap, next.UseTimeMap)

	out.Items = make([]Brief, 0, len(prev.Items)+len(next.Items))
	out.Items = append(out.Items, prev.Items...)
	out.Items = append(out.Items, next.Items...)
	return out
}

// dayOf returns the statistics day key for t.
func dayOf(t time.Time) string {
	return t.Format(DayLayout)
}
