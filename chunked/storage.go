package chunked

import (
	"fmt"
	"log"
	"unsafe"

	"github.com/dustin/go-humanize"
	"golang.org/x/exp/constraints"

	lc "github.com/dreamware/largecollections"
	"github.com/dreamware/largecollections/internal/fastsort"
)

// Ascending returns the natural ascending comparator for any built-in
// ordered type, for use with Sort/BinarySearch without writing the
// three-way comparison by hand.
func Ascending[T constraints.Ordered]() func(a, b T) int {
	return fastsort.Natural[T]()
}

// DefaultChunkSize is used when Config.ChunkSize is left at zero. It is
// tuned for reference-sized elements; large value types should pass a
// smaller explicit ChunkSize so a single chunk doesn't dominate the
// allocator's large-object heap.
const DefaultChunkSize = 1 << 20

// Config configures a new ChunkedList.
type Config struct {
	// ChunkSize is the fixed element count of every chunk but the last.
	// Zero means DefaultChunkSize.
	ChunkSize uint64
	// InitialCapacity preallocates chunks up front so the first
	// InitialCapacity pushes never grow the chunk list.
	InitialCapacity uint64
}

func (c Config) withDefaults() Config {
	if c.ChunkSize == 0 {
		c.ChunkSize = DefaultChunkSize
	}
	return c
}

// ChunkedList is a mutable, 64-bit-indexed sequence of T backed by an
// ordered slice of fixed-size chunks. See the package doc for the layout
// and spec §3.2/§4.1 for the full contract. The zero value is not usable;
// construct with New.
type ChunkedList[T any] struct {
	chunks    [][]T
	chunkSize uint64
	count     uint64
}

// New constructs an empty ChunkedList per cfg. It fails with
// lc.ErrInvalidConfiguration if cfg.InitialCapacity exceeds lc.MaxCount.
func New[T any](cfg Config) (*ChunkedList[T], error) {
	cfg = cfg.withDefaults()
	if cfg.InitialCapacity > lc.MaxCount {
		return nil, fmt.Errorf("chunked: initial capacity %d exceeds MaxCount: %w", cfg.InitialCapacity, lc.ErrInvalidConfiguration)
	}

	l := &ChunkedList[T]{chunkSize: cfg.ChunkSize}
	if cfg.InitialCapacity > 0 {
		l.growTo(cfg.InitialCapacity)
	}
	return l, nil
}

// Len returns Count, the number of logically present elements.
func (l *ChunkedList[T]) Len() uint64 { return l.count }

// Capacity returns the number of elements currently allocated across all
// chunks (I-A1: Count <= Capacity <= MaxCount).
func (l *ChunkedList[T]) Capacity() uint64 { return uint64(len(l.chunks)) * l.chunkSize }

// ChunkSize returns the fixed per-chunk element count this list was
// constructed with.
func (l *ChunkedList[T]) ChunkSize() uint64 { return l.chunkSize }

func (l *ChunkedList[T]) chunkAndOffset(i uint64) (uint64, uint64) {
	return i / l.chunkSize, i % l.chunkSize
}

func (l *ChunkedList[T]) checkIndex(i uint64) error {
	if i >= l.count {
		return fmt.Errorf("chunked: index %d out of range [0, %d): %w", i, l.count, lc.ErrOutOfRange)
	}
	return nil
}

// Get returns the element at logical index i. It fails with
// lc.ErrOutOfRange if i >= Len().
func (l *ChunkedList[T]) Get(i uint64) (T, error) {
	var zero T
	if err := l.checkIndex(i); err != nil {
		return zero, err
	}
	c, o := l.chunkAndOffset(i)
	return l.chunks[c][o], nil
}

// Set overwrites the element at logical index i. It fails with
// lc.ErrOutOfRange if i >= Len().
func (l *ChunkedList[T]) Set(i uint64, v T) error {
	if err := l.checkIndex(i); err != nil {
		return err
	}
	c, o := l.chunkAndOffset(i)
	l.chunks[c][o] = v
	return nil
}

// Ref returns a pointer to the element at logical index i. The pointer is
// valid only until the next structural mutation (Push that grows, Clear,
// RemoveAt, ExtendFrom*) — those operations may reallocate or relocate
// chunks. It fails with lc.ErrOutOfRange if i >= Len().
func (l *ChunkedList[T]) Ref(i uint64) (*T, error) {
	if err := l.checkIndex(i); err != nil {
		return nil, err
	}
	c, o := l.chunkAndOffset(i)
	return &l.chunks[c][o], nil
}

// growTo ensures Capacity() >= n by appending whole chunks, never doubling
// (see package doc).
func (l *ChunkedList[T]) growTo(n uint64) {
	for l.Capacity() < n {
		l.chunks = append(l.chunks, make([]T, l.chunkSize))
		log.Printf("chunked: allocated chunk %d (%s elements, chunk size %d)", len(l.chunks)-1, humanize.Comma(int64(l.chunkSize)), l.chunkSize)
	}
}

// Push appends v, growing the chunk list by one chunk if the list is at
// capacity. It fails with lc.ErrCapacityExceeded if Len() == MaxCount.
func (l *ChunkedList[T]) Push(v T) error {
	if l.count >= lc.MaxCount {
		return fmt.Errorf("chunked: push would exceed MaxCount: %w", lc.ErrCapacityExceeded)
	}
	if l.count == l.Capacity() {
		l.chunks = append(l.chunks, make([]T, l.chunkSize))
	}
	c, o := l.chunkAndOffset(l.count)
	l.chunks[c][o] = v
	l.count++
	return nil
}

// ExtendFromSlice appends every element of xs in order. It is a bulk
// operator: it grows capacity once for the whole slice rather than once
// per element, and copies each destination chunk's run with copy()
// instead of looping element-by-element.
func (l *ChunkedList[T]) ExtendFromSlice(xs []T) error {
	if uint64(len(xs)) > lc.MaxCount-l.count {
		return fmt.Errorf("chunked: extend by %d would exceed MaxCount: %w", len(xs), lc.ErrCapacityExceeded)
	}
	l.growTo(l.count + uint64(len(xs)))

	remaining := xs
	pos := l.count
	for len(remaining) > 0 {
		c, o := l.chunkAndOffset(pos)
		n := copy(l.chunks[c][o:], remaining)
		remaining = remaining[n:]
		pos += uint64(n)
	}
	l.count = pos
	return nil
}

// ExtendFromChunked appends count elements of other starting at offset.
// Both storages may be the same list; the read is logically snapshotted
// before any write lands, matching memmove semantics for overlapping
// ranges within a single list (spec §4.2).
func (l *ChunkedList[T]) ExtendFromChunked(other *ChunkedList[T], offset, count uint64) error {
	if offset+count < offset || offset+count > other.count {
		return fmt.Errorf("chunked: range [%d, %d) out of range [0, %d): %w", offset, offset+count, other.count, lc.ErrOutOfRange)
	}
	if other == l {
		buf := make([]T, count)
		if err := other.CopyToSlice(buf, offset, 0, count); err != nil {
			return err
		}
		return l.ExtendFromSlice(buf)
	}

	if count > lc.MaxCount-l.count {
		return fmt.Errorf("chunked: extend by %d would exceed MaxCount: %w", count, lc.ErrCapacityExceeded)
	}
	insertAt := l.count
	l.growTo(l.count + count)
	l.count = insertAt + count
	return l.CopyFromChunked(other, offset, insertAt, count)
}

// ExtendFromSeq appends every value produced by an iterator in the style
// introduced by Go 1.23's range-over-func (iter.Seq[T]), without
// materializing an intermediate slice first.
func (l *ChunkedList[T]) ExtendFromSeq(seq func(yield func(T) bool)) error {
	var extendErr error
	seq(func(v T) bool {
		if err := l.Push(v); err != nil {
			extendErr = err
			return false
		}
		return true
	})
	return extendErr
}

// Clear resets Count to 0 without deallocating chunks, so a subsequent
// burst of Push calls up to the prior high-water mark allocates nothing.
func (l *ChunkedList[T]) Clear() {
	l.count = 0
}

// Swap exchanges the elements at i and j. Both must be < Len().
func (l *ChunkedList[T]) Swap(i, j uint64) error {
	if err := l.checkIndex(i); err != nil {
		return err
	}
	if err := l.checkIndex(j); err != nil {
		return err
	}
	ci, oi := l.chunkAndOffset(i)
	cj, oj := l.chunkAndOffset(j)
	l.chunks[ci][oi], l.chunks[cj][oj] = l.chunks[cj][oj], l.chunks[ci][oi]
	return nil
}

// RemoveAt removes the element at logical index i, decrementing Count.
// When preserveOrder is true the tail is shifted left by one, an O(Count -
// i) bulk copy; when false the last element is swapped into position i, an
// O(1) operation that does not preserve relative order.
func (l *ChunkedList[T]) RemoveAt(i uint64, preserveOrder bool) error {
	if err := l.checkIndex(i); err != nil {
		return err
	}
	if preserveOrder {
		if i+1 < l.count {
			if err := l.copyWithin(i+1, i, l.count-i-1); err != nil {
				return err
			}
		}
	} else if i != l.count-1 {
		last, _ := l.Get(l.count - 1)
		_ = l.Set(i, last)
	}
	l.count--
	return nil
}

// Stats is a point-in-time snapshot of a ChunkedList's size, mirroring the
// StoreStats/ShardStats snapshot convention used across this module's
// disk-backed components.
type Stats struct {
	Count     uint64
	Capacity  uint64
	ChunkSize uint64
	Chunks    int
}

// Stats returns a snapshot of l's current size.
func (l *ChunkedList[T]) Stats() Stats {
	return Stats{
		Count:     l.count,
		Capacity:  l.Capacity(),
		ChunkSize: l.chunkSize,
		Chunks:    len(l.chunks),
	}
}

// String renders a human-readable summary, e.g. "1,204 elements (1,048,576
// capacity) across 1 chunk(s) of 1,048,576".
func (s Stats) String() string {
	return fmt.Sprintf("%s elements (%s capacity) across %d chunk(s) of %s",
		humanize.Comma(int64(s.Count)), humanize.Comma(int64(s.Capacity)), s.Chunks, humanize.Comma(int64(s.ChunkSize)))
}

// byteSizeEstimate estimates the backing memory for n elements of T as
// n * unsafe.Sizeof(T), for GoString's human-readable size hint. Memory
// reachable through pointers inside T is not counted.
func byteSizeEstimate[T any](n uint64) uint64 {
	var zero T
	return n * uint64(unsafe.Sizeof(zero))
}

// GoString renders a debug representation including an estimated memory
// footprint, formatted with go-humanize.
func (l *ChunkedList[T]) GoString() string {
	s := l.Stats()
	bytes := byteSizeEstimate[T](s.Capacity)
	return fmt.Sprintf("chunked.ChunkedList{%s, ~%s}", s.String(), humanize.Bytes(bytes))
}

// indexable adapts *ChunkedList[T] to fastsort.Indexable so Sort and
// BinarySearch can share the chunk-aware quicksort with the view package's
// slice-backed index maps.
type indexable[T any] struct{ l *ChunkedList[T] }

func (x indexable[T]) At(i uint64) T     { v, _ := x.l.Get(i); return v }
func (x indexable[T]) Set(i uint64, v T) { _ = x.l.Set(i, v) }
func (x indexable[T]) Swap(i, j uint64)  { _ = x.l.Swap(i, j) }
