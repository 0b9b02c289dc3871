package study

// StageQueue is a FIFO of items belonging to a single stage.
// An item id is present at most once at any time.
type StageQueue struct {
	stage  Stage
	items  []Item
	queued map[int64]bool
}

// NewStageQueue creates a queue for stage seeded with items. Duplicate ids
// in items are dropped, keeping the first occurrence.
func NewStageQueue(stage Stage, items []Item) *StageQueue {
	q := &StageQueue{
		stage:  stage,
		items:  make([]Item, 0, len(items)),
		queued: make(map[int64]bool, len(items)),
	}
	for _, it := range items {
		q.Putback(it)
	}
	return q
}

// Stage returns the stage this queue serves.
func (q *StageQueue) Stage() Stage {
	return q.stage
}

// HasNext reports whether an item is pending.
func (q *StageQueue) HasNext() bool {
	return len(q.items) > 0
}

// Len returns the number of pending items.
func (q *StageQueue) Len() int {
	return len(q.items)
}

// Next pops the front item. ok is false when the queue is empty.
func (q *StageQueue) Next() (item Item, ok bool) {
	if len(q.items) == 0 {
		return Item{}, false
	}
	item = q.items[0]
	q.items = q.items[1:]
	delete(q.queued, item.TopicID)
	return item, true
}

// Putback appends item unless it is already queued.
func (q *StageQueue) Putback(item Item) {
	if q.queued[item.TopicID] {
		return
	}
	q.queued[item.TopicID] = true
	q.items = append(q.items, item)
}
