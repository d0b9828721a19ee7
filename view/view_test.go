package view_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	lc "github.com/dreamware/largecollections"
	"github.com/dreamware/largecollections/view"
)

// testList is a minimal lc.Observable[int] fixture built only to drive
// View's tests; the observable wrapper around a plain list is explicitly
// out of scope as a library deliverable (spec §1).
type testList struct {
	mu       sync.Mutex
	items    []int
	notifier struct {
		changed  []func()
		property []func(string)
		item     []func(lc.Change[int])
	}
}

func newTestList(items ...int) *testList {
	return &testList{items: append([]int(nil), items...)}
}

func (l *testList) Len() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return uint64(len(l.items))
}

func (l *testList) Get(i uint64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i >= uint64(len(l.items)) {
		return 0, lc.ErrOutOfRange
	}
	return l.items[i], nil
}

func (l *testList) OnChanged(cb func()) lc.Unsubscribe {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notifier.changed = append(l.notifier.changed, cb)
	return func() {}
}

func (l *testList) OnPropertyChanged(cb func(string)) lc.Unsubscribe {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notifier.property = append(l.notifier.property, cb)
	return func() {}
}

func (l *testList) OnItemChanged(cb func(lc.Change[int])) lc.Unsubscribe {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notifier.item = append(l.notifier.item, cb)
	return func() {}
}

func (l *testList) Push(v int) {
	l.mu.Lock()
	l.items = append(l.items, v)
	changed := append([]func(){}, l.notifier.changed...)
	itemCbs := append([]func(lc.Change[int]){}, l.notifier.item...)
	idx := uint64(len(l.items) - 1)
	l.mu.Unlock()

	for _, cb := range changed {
		cb()
	}
	for _, cb := range itemCbs {
		cb(lc.Change[int]{Action: lc.ActionAdd, Index: idx, Count: 1, Item: v})
	}
}

func ascending(a, b int) int { return a - b }

func TestFilterAndSortOverObservableSource(t *testing.T) {
	src := newTestList(5, 3, 1, 4, 2)
	v := view.New[int](src, func(x int) bool { return x > 2 }, ascending)
	defer v.Close()

	assertViewEquals(t, v, 3, 4, 5)

	src.Push(10)
	assertViewEquals(t, v, 3, 4, 5, 10)

	src.Push(1)
	assertViewEquals(t, v, 3, 4, 5, 10)
}

func TestNoFilterNoSortIsIdentity(t *testing.T) {
	src := newTestList(5, 3, 1, 4, 2)
	v := view.New[int](src, nil, nil)
	defer v.Close()

	assertViewEquals(t, v, 5, 3, 1, 4, 2)
}

func TestFilterOnlyPreservesSourceOrder(t *testing.T) {
	src := newTestList(5, 3, 1, 4, 2)
	v := view.New[int](src, func(x int) bool { return x > 2 }, nil)
	defer v.Close()

	assertViewEquals(t, v, 5, 3, 4)
}

func TestSortOnlyKeepsEveryElement(t *testing.T) {
	src := newTestList(5, 3, 1, 4, 2)
	v := view.New[int](src, nil, ascending)
	defer v.Close()

	assertViewEquals(t, v, 1, 2, 3, 4, 5)
}

func TestSuspendedNotificationsFireOnceOnRelease(t *testing.T) {
	src := newTestList(5, 3, 1, 4, 2)
	v := view.New[int](src, func(x int) bool { return x > 2 }, ascending)
	defer v.Close()

	var fired int
	var lastAction lc.ChangeAction
	v.OnItemChanged(func(c lc.Change[int]) {
		fired++
		lastAction = c.Action
	})

	s := v.SuspendNotifications()
	src.Push(100)
	src.Push(1)
	require.Zero(t, fired, "expected no notifications while suspended")
	s.Release()

	require.Equal(t, 1, fired, "expected exactly one notification after release")
	require.Equal(t, lc.ActionReset, lastAction)
}

func TestOutOfRangeGet(t *testing.T) {
	src := newTestList(1, 2, 3)
	v := view.New[int](src, nil, nil)
	defer v.Close()

	_, err := v.Get(10)
	require.ErrorIs(t, err, lc.ErrOutOfRange)
}

func assertViewEquals(t *testing.T, v *view.View[int], want ...int) {
	t.Helper()
	n, err := v.Len()
	require.NoError(t, err)
	require.EqualValues(t, len(want), n)
	for i, w := range want {
		got, err := v.Get(uint64(i))
		require.NoError(t, err)
		require.Equal(t, w, got)
	}
}
