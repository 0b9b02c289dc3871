// Package notify holds the subscriber lists the engines use to push state
// to their views.
package notify

import "sync"

// Listener receives a view of the state after each change.
type Listener[V any] func(V)

// List is a set of listeners. The zero value is ready to use.
type List[V any] struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener[V]
	order     []int
}

// Add registers l and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (n *List[V]) Add(l Listener[V]) (remove func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.listeners == nil {
		n.listeners = make(map[int]Listener[V])
	}
	id := n.nextID
	n.nextID++
	n.listeners[id] = l
	n.order = append(n.order, id)

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if _, ok := n.listeners[id]; !ok {
			return
		}
		delete(n.listeners, id)
		for i, v := range n.order {
			if v == id {
				n.order = append(n.order[:i], n.order[i+1:]...)
				break
			}
		}
	}
}

// Len returns the number of registered listeners.
func (n *List[V]) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.order)
}

// Notify calls every listener with v, in registration order. The list is
// copied first so listeners may subscribe or unsubscribe while being called.
func (n *List[V]) Notify(v V) {
	n.mu.RLock()
	ls := make([]Listener[V], 0, len(n.order))
	for _, id := range n.order {
		ls = append(ls, n.listeners[id])
	}
	n.mu.RUnlock()

	for _, l := range ls {
		l(v)
	}
}
