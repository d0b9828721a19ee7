package view

import (
	"fmt"
	"sync"

	lc "github.com/dreamware/largecollections"
	"github.com/dreamware/largecollections/internal/fastsort"
)

// View is a read-only projection over a source lc.Observable[T], per spec
// §3.5. It holds a weak reference to source — the source's lifetime must
// strictly exceed the view's — a predicate, a comparator, and an index
// map of source indices.
type View[T any] struct {
	source lc.Observable[T]

	mu         sync.RWMutex
	predicate  Predicate[T]
	comparator Comparator[T]
	indexMap   []uint64
	dirty      bool

	suspendMu            sync.Mutex
	suspendDepth         int
	pendingDuringSuspend bool
	countAtSuspendEntry  uint64

	notifier *notifier[T]

	unsubChanged  lc.Unsubscribe
	unsubProperty lc.Unsubscribe
	unsubItem     lc.Unsubscribe
}

// New constructs a View over source with the given predicate and
// comparator. A nil predicate means no filtering; a nil comparator means
// no sorting (see doc.go). The view starts dirty: the first read builds
// the index map.
func New[T any](source lc.Observable[T], predicate Predicate[T], comparator Comparator[T]) *View[T] {
	v := &View[T]{
		source:     source,
		predicate:  predicate,
		comparator: comparator,
		dirty:      true,
		notifier:   newNotifier[T](),
	}
	v.unsubChanged = source.OnChanged(func() { v.invalidate() })
	v.unsubProperty = source.OnPropertyChanged(func(string) { v.invalidate() })
	v.unsubItem = source.OnItemChanged(v.onSourceItemChanged)
	return v
}

func (v *View[T]) onSourceItemChanged(c lc.Change[T]) {
	switch c.Action {
	case lc.ActionAdd, lc.ActionRemove, lc.ActionClear, lc.ActionRangeAdd, lc.ActionReset:
		v.invalidate()
	case lc.ActionReplace:
		// Replace does not change Count; per spec §4.6 only coarse or
		// count-affecting source events invalidate the map.
	}
}

// invalidate marks the map dirty and either emits a reset notification
// immediately or, if notifications are suspended, defers it.
func (v *View[T]) invalidate() {
	v.mu.Lock()
	v.dirty = true
	v.mu.Unlock()

	v.suspendMu.Lock()
	suspended := v.suspendDepth > 0
	if suspended {
		v.pendingDuringSuspend = true
	}
	v.suspendMu.Unlock()

	if !suspended {
		v.notifier.emitChanged()
		v.notifier.emitItem(lc.Change[T]{Action: lc.ActionReset})
	}
}

// SetPredicate replaces the view's predicate (nil for no filtering) and
// invalidates the map.
func (v *View[T]) SetPredicate(p Predicate[T]) {
	v.mu.Lock()
	v.predicate = p
	v.dirty = true
	v.mu.Unlock()
	v.notifyInvalidation()
}

// SetComparator replaces the view's comparator (nil for no sorting) and
// invalidates the map.
func (v *View[T]) SetComparator(c Comparator[T]) {
	v.mu.Lock()
	v.comparator = c
	v.dirty = true
	v.mu.Unlock()
	v.notifyInvalidation()
}

func (v *View[T]) notifyInvalidation() {
	v.suspendMu.Lock()
	suspended := v.suspendDepth > 0
	if suspended {
		v.pendingDuringSuspend = true
	}
	v.suspendMu.Unlock()

	if !suspended {
		v.notifier.emitChanged()
		v.notifier.emitItem(lc.Change[T]{Action: lc.ActionReset})
	}
}

// ensureClean implements the reader/writer double-checked dirty pattern
// of spec §4.6: take the shared lock, check dirty; if clean, return. If
// dirty, release, take the exclusive lock, check again (another reader
// may have rebuilt already), rebuild if still dirty.
func (v *View[T]) ensureClean() error {
	v.mu.RLock()
	clean := !v.dirty
	v.mu.RUnlock()
	if clean {
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.dirty {
		return nil
	}
	if err := v.rebuild(); err != nil {
		return err
	}
	v.dirty = false
	return nil
}

// rebuild implements spec §4.6's algorithm: clear the map, apply the
// filter (or pass every index through, unfiltered), then sort if a
// comparator is set and the map has at least two elements. Must be called
// with v.mu held exclusively.
func (v *View[T]) rebuild() error {
	n := v.source.Len()

	type entry struct {
		srcIdx uint64
		item   T
	}
	entries := make([]entry, 0, n)
	for i := uint64(0); i < n; i++ {
		item, err := v.source.Get(i)
		if err != nil {
			return fmt.Errorf("view: rebuild: reading source index %d: %w", i, err)
		}
		if v.predicate == nil || v.predicate(item) {
			entries = append(entries, entry{srcIdx: i, item: item})
		}
	}

	if v.comparator != nil && len(entries) >= 2 {
		cmp := func(a, b entry) int { return v.comparator(a.item, b.item) }
		fastsort.Sort[entry](fastsort.SliceIndexable[entry](entries), cmp, 0, uint64(len(entries)))
	}

	indexMap := make([]uint64, len(entries))
	for i, e := range entries {
		indexMap[i] = e.srcIdx
	}
	v.indexMap = indexMap
	return nil
}

// Len returns the view's current element count, rebuilding the index map
// first if dirty.
func (v *View[T]) Len() (uint64, error) {
	if err := v.ensureClean(); err != nil {
		return 0, err
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return uint64(len(v.indexMap)), nil
}

// Get returns the i'th element of the view (0 <= i < Len()), rebuilding
// the index map first if dirty.
func (v *View[T]) Get(i uint64) (T, error) {
	var zero T
	if err := v.ensureClean(); err != nil {
		return zero, err
	}
	v.mu.RLock()
	if i >= uint64(len(v.indexMap)) {
		v.mu.RUnlock()
		return zero, fmt.Errorf("view: get: index %d out of range [0, %d): %w", i, len(v.indexMap), lc.ErrOutOfRange)
	}
	srcIdx := v.indexMap[i]
	v.mu.RUnlock()
	return v.source.Get(srcIdx)
}

// ForEach rebuilds the index map if dirty, snapshots it into a freshly
// allocated slice under the shared lock, releases the lock, and then
// iterates the snapshot — the pattern spec §9 prescribes in place of
// holding a lock across iterator yields. The snapshot may be stale
// relative to the live source by the time ForEach returns; callers
// needing a fresher view should call ForEach again.
func (v *View[T]) ForEach(visit func(item T) (bool, error)) error {
	if err := v.ensureClean(); err != nil {
		return err
	}
	v.mu.RLock()
	snapshot := make([]uint64, len(v.indexMap))
	copy(snapshot, v.indexMap)
	v.mu.RUnlock()

	for _, srcIdx := range snapshot {
		item, err := v.source.Get(srcIdx)
		if err != nil {
			return err
		}
		cont, err := visit(item)
		if err != nil {
			return err
		}
		if !cont {
			break
		}
	}
	return nil
}

// OnChanged subscribes to the view's coarse change stream.
func (v *View[T]) OnChanged(cb func()) lc.Unsubscribe { return v.notifier.onChanged(cb) }

// OnPropertyChanged subscribes to the view's property-changed stream.
func (v *View[T]) OnPropertyChanged(cb func(string)) lc.Unsubscribe {
	return v.notifier.onPropertyChanged(cb)
}

// OnItemChanged subscribes to the view's fine-grained typed change stream.
func (v *View[T]) OnItemChanged(cb func(lc.Change[T])) lc.Unsubscribe {
	return v.notifier.onItemChanged(cb)
}

// Close unsubscribes the view from its source. A closed view's map no
// longer reacts to source mutations; further reads continue to serve the
// last-built map.
func (v *View[T]) Close() {
	v.unsubChanged()
	v.unsubProperty()
	v.unsubItem()
}

var _ lc.Observable[int] = (*View[int])(nil)
