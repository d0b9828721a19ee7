package chunked_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	lc "github.com/dreamware/largecollections"
	"github.com/dreamware/largecollections/chunked"
)

func newTestList(t *testing.T, chunkSize uint64) *chunked.ChunkedList[uint64] {
	t.Helper()
	l, err := chunked.New[uint64](chunked.Config{ChunkSize: chunkSize})
	require.NoError(t, err)
	return l
}

func TestPushGetSort(t *testing.T) {
	l := newTestList(t, 4)

	for _, v := range []uint64{5, 3, 1, 4, 2} {
		require.NoError(t, l.Push(v))
	}
	require.EqualValues(t, 5, l.Len())
	first, err := l.Get(0)
	require.NoError(t, err)
	require.EqualValues(t, 5, first)

	cmp := chunked.Ascending[uint64]()
	require.NoError(t, l.Sort(cmp, 0, l.Len()))

	want := []uint64{1, 2, 3, 4, 5}
	for i, w := range want {
		got, err := l.Get(uint64(i))
		require.NoError(t, err)
		require.Equal(t, w, got)
	}

	idx, ok, err := l.BinarySearch(3, cmp, 0, l.Len())
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 2, idx)

	idx, ok, err = l.BinarySearch(0, cmp, 0, l.Len())
	require.NoError(t, err)
	require.False(t, ok)
	require.EqualValues(t, 0, idx)
}

func TestGetSetOutOfRange(t *testing.T) {
	l := newTestList(t, 4)
	_, err := l.Get(0)
	require.ErrorIs(t, err, lc.ErrOutOfRange)
	require.ErrorIs(t, l.Set(0, 1), lc.ErrOutOfRange)
}

func TestSwap(t *testing.T) {
	l := newTestList(t, 4)
	for _, v := range []uint64{10, 20, 30} {
		require.NoError(t, l.Push(v))
	}
	require.NoError(t, l.Swap(0, 2))
	a, _ := l.Get(0)
	b, _ := l.Get(2)
	require.EqualValues(t, 30, a)
	require.EqualValues(t, 10, b)
	c, _ := l.Get(1)
	require.EqualValues(t, 20, c)
}

func TestChunkBoundaries(t *testing.T) {
	const chunkSize = 4
	l := newTestList(t, chunkSize)

	for i := uint64(0); i < chunkSize; i++ {
		require.NoError(t, l.Push(i))
	}
	require.EqualValues(t, chunkSize, l.Len())
	require.EqualValues(t, chunkSize, l.Capacity())

	require.NoError(t, l.Push(99))
	require.EqualValues(t, chunkSize+1, l.Len())
	require.EqualValues(t, chunkSize*2, l.Capacity())

	v, err := l.Get(chunkSize)
	require.NoError(t, err)
	require.EqualValues(t, 99, v)
}

func TestExtendFromSlice(t *testing.T) {
	l := newTestList(t, 4)
	require.NoError(t, l.Push(1))
	require.NoError(t, l.Push(2))

	n := l.Len()
	xs := []uint64{10, 20, 30, 40, 50}
	require.NoError(t, l.ExtendFromSlice(xs))

	got := make([]uint64, len(xs))
	require.NoError(t, l.CopyToSlice(got, n, 0, uint64(len(xs))))
	require.Equal(t, xs, got)
}

func TestExtendFromChunkedSelfOverlap(t *testing.T) {
	l := newTestList(t, 4)
	require.NoError(t, l.ExtendFromSlice([]uint64{1, 2, 3, 4, 5}))

	require.NoError(t, l.ExtendFromChunked(l, 1, 3))
	require.EqualValues(t, 8, l.Len())

	got := make([]uint64, 3)
	require.NoError(t, l.CopyToSlice(got, 5, 0, 3))
	require.Equal(t, []uint64{2, 3, 4}, got)
}

func TestRemoveAtPreserveOrder(t *testing.T) {
	l := newTestList(t, 4)
	require.NoError(t, l.ExtendFromSlice([]uint64{1, 2, 3, 4, 5}))

	require.NoError(t, l.RemoveAt(1, true))
	require.EqualValues(t, 4, l.Len())

	got := make([]uint64, 4)
	require.NoError(t, l.CopyToSlice(got, 0, 0, 4))
	require.Equal(t, []uint64{1, 3, 4, 5}, got)
}

func TestRemoveAtSwapLast(t *testing.T) {
	l := newTestList(t, 4)
	require.NoError(t, l.ExtendFromSlice([]uint64{1, 2, 3, 4, 5}))

	require.NoError(t, l.RemoveAt(1, false))
	require.EqualValues(t, 4, l.Len())

	got := make([]uint64, 4)
	require.NoError(t, l.CopyToSlice(got, 0, 0, 4))
	require.Equal(t, []uint64{1, 5, 3, 4}, got)
}

func TestClearKeepsCapacity(t *testing.T) {
	l := newTestList(t, 4)
	require.NoError(t, l.ExtendFromSlice([]uint64{1, 2, 3, 4, 5}))
	cap0 := l.Capacity()

	l.Clear()
	require.EqualValues(t, 0, l.Len())
	require.Equal(t, cap0, l.Capacity())

	require.NoError(t, l.Push(42))
	require.Equal(t, cap0, l.Capacity())
}

func TestDoForEach(t *testing.T) {
	l := newTestList(t, 4)
	require.NoError(t, l.ExtendFromSlice([]uint64{1, 2, 3, 4, 5, 6, 7}))

	var sum uint64
	require.NoError(t, l.DoForEach(func(v uint64) { sum += v }, 0, l.Len()))
	require.EqualValues(t, 28, sum)

	err := chunked.DoForEachState(l, &sum, func(s *uint64, v uint64) { *s += v }, 0, l.Len())
	require.NoError(t, err)
	require.EqualValues(t, 56, sum)
}

func TestZeroCountNoOp(t *testing.T) {
	l := newTestList(t, 4)
	require.NoError(t, l.ExtendFromSlice([]uint64{1, 2, 3}))
	require.NoError(t, l.DoForEach(func(uint64) { t.Fatal("should not be called") }, 1, 0))
	require.NoError(t, l.CopyTo(l, 0, 1, 0))
}

func TestCapacityExceeded(t *testing.T) {
	_, err := chunked.New[uint64](chunked.Config{InitialCapacity: lc.MaxCount + 1})
	require.ErrorIs(t, err, lc.ErrInvalidConfiguration)
}

func TestStatsStringAndGoString(t *testing.T) {
	l := newTestList(t, 4)
	require.NoError(t, l.ExtendFromSlice([]uint64{1, 2, 3, 4, 5}))

	s := l.Stats().String()
	require.Contains(t, s, "5 elements")
	require.Contains(t, s, "chunk(s)")

	g := l.GoString()
	require.Contains(t, g, "chunked.ChunkedList{")
}
