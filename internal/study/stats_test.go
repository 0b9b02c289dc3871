package study

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeStatistics(t *testing.T) {
	prev := &Statistics{
		Day:         "2026-03-14",
		FailMap:     map[int64]int{1: 4, 2: 1},
		UseTimeMap:  map[int64]int64{1: 900},
		TotalTimeMs: 5000,
		Items:       []Brief{{TopicID: 1, Word: "cat"}, {TopicID: 2, Word: "dog"}},
	}
	next := &Statistics{
		Day:         "2026-03-14",
		FailMap:     map[int64]int{1: 0, 3: 2},
		UseTimeMap:  map[int64]int64{1: 100, 3: 300},
		TotalTimeMs: 2000,
		Items:       []Brief{{TopicID: 1, Word: "cat"}, {TopicID: 3, Word: "fox"}},
	}

	got := MergeStatistics(prev, next)

	assert.Equal(t, map[int64]int{1: 0, 2: 1, 3: 2}, got.FailMap)
	assert.Equal(t, map[int64]int64{1: 100, 3: 300}, got.UseTimeMap)
	assert.Equal(t, int64(7000), got.TotalTimeMs)
	assert.Equal(t, []Brief{
		{TopicID: 1, Word: "cat"},
		{TopicID: 2, Word: "dog"},
		{TopicID: 1, Word: "cat"},
		{TopicID: 3, Word: "fox"},
	}, got.Items, "a word studied in two sessions is listed twice")
	assert.Equal(t, 4, prev.FailMap[1], "inputs are not mutated")
}

func TestMergeStatistics_NewDayOrNoHistory(t *testing.T) {
	next := &Statistics{Day: "2026-03-15", TotalTimeMs: 10}

	assert.Same(t, next, MergeStatistics(nil, next))
	assert.Same(t, next, MergeStatistics(&Statistics{Day: "2026-03-14", TotalTimeMs: 99}, next))
}
