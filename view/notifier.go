package view

import (
	"sync"

	lc "github.com/dreamware/largecollections"
)

// notifier implements the three-channel publish-subscribe contract of
// spec §9 ("Property/collection-changed events... model as three
// independent publish-subscribe channels") on the publishing side, for a
// View's own notification streams. Delivery is synchronous on the
// invalidating goroutine, matching lc.Observable's documented contract.
type notifier[T any] struct {
	mu       sync.Mutex
	nextID   int
	changed  map[int]func()
	property map[int]func(string)
	item     map[int]func(lc.Change[T])
}

func newNotifier[T any]() *notifier[T] {
	return &notifier[T]{
		changed:  make(map[int]func()),
		property: make(map[int]func(string)),
		item:     make(map[int]func(lc.Change[T])),
	}
}

func (n *notifier[T]) onChanged(cb func()) lc.Unsubscribe {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.changed[id] = cb
	n.mu.Unlock()
	return func() {
		n.mu.Lock()
		delete(n.changed, id)
		n.mu.Unlock()
	}
}

func (n *notifier[T]) onPropertyChanged(cb func(string)) lc.Unsubscribe {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.property[id] = cb
	n.mu.Unlock()
	return func() {
		n.mu.Lock()
		delete(n.property, id)
		n.mu.Unlock()
	}
}

func (n *notifier[T]) onItemChanged(cb func(lc.Change[T])) lc.Unsubscribe {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.item[id] = cb
	n.mu.Unlock()
	return func() {
		n.mu.Lock()
		delete(n.item, id)
		n.mu.Unlock()
	}
}

func (n *notifier[T]) emitChanged() {
	n.mu.Lock()
	cbs := make([]func(), 0, len(n.changed))
	for _, cb := range n.changed {
		cbs = append(cbs, cb)
	}
	n.mu.Unlock()
	for _, cb := range cbs {
		cb()
	}
}

func (n *notifier[T]) emitProperty(name string) {
	n.mu.Lock()
	cbs := make([]func(string), 0, len(n.property))
	for _, cb := range n.property {
		cbs = append(cbs, cb)
	}
	n.mu.Unlock()
	for _, cb := range cbs {
		cb(name)
	}
}

func (n *notifier[T]) emitItem(c lc.Change[T]) {
	n.mu.Lock()
	cbs := make([]func(lc.Change[T]), 0, len(n.item))
	for _, cb := range n.item {
		cbs = append(cbs, cb)
	}
	n.mu.Unlock()
	for _, cb := range cbs {
		cb(c)
	}
}
