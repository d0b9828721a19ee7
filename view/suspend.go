package view

import lc "github.com/dreamware/largecollections"

// Suspension is the scoped acquisition returned by
// View.SuspendNotifications. Release must be called exactly once,
// typically via defer, to resume notification delivery.
type Suspension[T any] struct {
	v        *View[T]
	released bool
}

// SuspendNotifications begins a suspended span: invalidating events that
// arrive before the matching Release are counted but not delivered.
// Nesting is supported — only the outermost Release flushes pending
// notifications. On first entry (depth 0 -> 1), the view's current count
// is recorded so Release can tell whether Count actually changed across
// the span.
func (v *View[T]) SuspendNotifications() *Suspension[T] {
	v.suspendMu.Lock()
	v.suspendDepth++
	if v.suspendDepth == 1 {
		v.pendingDuringSuspend = false
	}
	v.suspendMu.Unlock()

	if n, err := v.Len(); err == nil {
		v.suspendMu.Lock()
		if v.suspendDepth == 1 {
			v.countAtSuspendEntry = n
		}
		v.suspendMu.Unlock()
	}

	return &Suspension[T]{v: v}
}

// Release ends this suspension. On the outermost Release, if any
// invalidating event was observed during the suspended span, it emits
// exactly one Reset notification on the view's coarse and typed change
// streams, plus a Count property-changed notification if the view's
// length differs from what it was at acquisition. Calling Release more
// than once is a no-op.
func (s *Suspension[T]) Release() {
	if s.released {
		return
	}
	s.released = true

	v := s.v
	v.suspendMu.Lock()
	v.suspendDepth--
	outermost := v.suspendDepth == 0
	pending := v.pendingDuringSuspend
	if outermost {
		v.pendingDuringSuspend = false
	}
	baseline := v.countAtSuspendEntry
	v.suspendMu.Unlock()

	if !outermost || !pending {
		return
	}

	v.notifier.emitChanged()
	v.notifier.emitItem(lc.Change[T]{Action: lc.ActionReset})

	if n, err := v.Len(); err == nil && n != baseline {
		v.notifier.emitProperty("Count")
	}
}
