// Package view implements the Filtered/Sorted View (spec §3.5, §4.6): a
// read-only projection over an lc.Observable source, maintaining a
// view→source index map that is invalidated on source mutation and
// rebuilt lazily under a reader/writer lock.
//
// # State machine
//
//	clean ──(source change, predicate/comparator set)──► dirty
//	dirty ──(any read: upgrade lock, rebuild, downgrade)──► clean
//
// Readers take the shared lock first and only escalate to the exclusive
// lock when the map is actually dirty (double-checked locking), so a
// stream of reads against a clean view never contends on the writer
// path.
//
// # Identity predicate/comparator
//
// The source design gives the identity predicate and identity comparator
// distinct nominal types so a view can statically elide the unused
// filter or sort step. This package uses nil in their place: a nil
// Predicate[T] means "no filtering" and a nil Comparator[T] means "no
// sorting" — a zero-value sentinel that carries the same "statically
// distinguishable, never actually invoked" property without an extra
// type, and reads naturally at every call site (`if v.predicate != nil`).
//
// # Notification suspension
//
// SuspendNotifications returns a Suspension value that must be released
// (typically via defer) — Go's answer to the source's scoped
// using-block. Invalidating events observed between acquisition and
// release are counted, not delivered; release emits at most one Reset
// notification, plus a Count property-changed notification if the
// view's length actually changed across the suspended span.
package view
