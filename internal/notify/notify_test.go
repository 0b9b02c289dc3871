package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestList_NotifyInOrder(t *testing.T) {
	var l List[int]
	var got []string
	l.Add(func(v int) { got = append(got, "a") })
	l.Add(func(v int) { got = append(got, "b") })

	l.Notify(1)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 2, l.Len())
}

func TestList_Remove(t *testing.T) {
	var l List[string]
	var calls int
	remove := l.Add(func(string) { calls++ })

	l.Notify("x")
	remove()
	remove()
	l.Notify("y")

	assert.Equal(t, 1, calls)
	assert.Zero(t, l.Len())
}

func TestList_UnsubscribeDuringNotify(t *testing.T) {
	var l List[int]
	var calls int
	var remove func()
	remove = l.Add(func(int) {
		calls++
		remove()
	})

	l.Notify(1)
	l.Notify(2)
	assert.Equal(t, 1, calls)
}
