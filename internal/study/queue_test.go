package study

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItems(words ...string) []Item {
	items := make([]Item, len(words))
	for i, w := range words {
		items[i] = Item{TopicID: int64(i + 1), Word: w}
	}
	return items
}

func TestStageQueue_FIFO(t *testing.T) {
	q := NewStageQueue(StageRecognition, testItems("cat", "dog", "fox"))

	assert.Equal(t, StageRecognition, q.Stage())
	assert.Equal(t, 3, q.Len())

	var got []string
	for q.HasNext() {
		it, ok := q.Next()
		require.True(t, ok)
		got = append(got, it.Word)
	}
	assert.Equal(t, []string{"cat", "dog", "fox"}, got)

	_, ok := q.Next()
	assert.False(t, ok, "Next on empty queue")
}

func TestStageQueue_PutbackDedup(t *testing.T) {
	items := testItems("cat", "dog")
	q := NewStageQueue(StageMastery, items)

	q.Putback(items[0])
	assert.Equal(t, 2, q.Len(), "putback of a queued item must be a no-op")

	it, _ := q.Next()
	assert.Equal(t, "cat", it.Word)

	q.Putback(it)
	q.Putback(it)
	assert.Equal(t, 2, q.Len())

	it, _ = q.Next()
	assert.Equal(t, "dog", it.Word)
	it, _ = q.Next()
	assert.Equal(t, "cat", it.Word, "putback appends to the back")
}

func TestStageQueue_DuplicateSeed(t *testing.T) {
	items := testItems("cat", "dog")
	items = append(items, items[0])

	q := NewStageQueue(StageUnderstanding, items)
	assert.Equal(t, 2, q.Len())
}

func TestStageQueue_NeverDuplicates(t *testing.T) {
	items := testItems("a", "b", "c")
	q := NewStageQueue(StageRecognition, items)

	// Interleave pops and putbacks and check the invariant after each step.
	ops := []int{0, -1, 1, 0, -1, 2, 2, -1, -1, 1, 0}
	for step, op := range ops {
		if op < 0 {
			q.Next()
		} else {
			q.Putback(items[op])
		}
		seen := map[int64]bool{}
		for _, it := range q.items {
			require.Falsef(t, seen[it.TopicID], "step %d: duplicate id %d", step, it.TopicID)
			seen[it.TopicID] = true
		}
	}
}
