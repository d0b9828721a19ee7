package chunked

import (
	"fmt"

	lc "github.com/dreamware/largecollections"
	"github.com/dreamware/largecollections/internal/fastsort"
)

// CopyTo copies count elements starting at srcOff in l into target
// starting at tgtOff, overwriting target's existing elements in that
// range. Both offsets and offset+count must stay within each list's
// current Len(); CopyTo never grows target. The walk is chunk-aware: it
// issues one Go copy() per pair of overlapping chunk runs rather than one
// Get/Set pair per element. If l == target and the ranges overlap, the
// source is read into a temporary buffer first, matching memmove
// semantics.
func (l *ChunkedList[T]) CopyTo(target *ChunkedList[T], srcOff, tgtOff, count uint64) error {
	if count == 0 {
		return nil
	}
	if err := checkRange(srcOff, count, l.count); err != nil {
		return err
	}
	if err := checkRange(tgtOff, count, target.count); err != nil {
		return err
	}

	if target == l && rangesOverlap(srcOff, tgtOff, count) {
		buf := make([]T, count)
		if err := l.CopyToSlice(buf, srcOff, 0, count); err != nil {
			return err
		}
		return target.CopyFromSlice(buf, 0, tgtOff, count)
	}

	remaining := count
	sp, tp := srcOff, tgtOff
	for remaining > 0 {
		sc, so := l.chunkAndOffset(sp)
		tc, to := target.chunkAndOffset(tp)
		n := min(l.chunkSize-so, target.chunkSize-to, remaining)
		copy(target.chunks[tc][to:to+n], l.chunks[sc][so:so+n])
		sp += n
		tp += n
		remaining -= n
	}
	return nil
}

// CopyToSlice copies count elements starting at srcOff in l into dst
// starting at tgtOff. dst must have at least tgtOff+count elements.
func (l *ChunkedList[T]) CopyToSlice(dst []T, srcOff, tgtOff, count uint64) error {
	if count == 0 {
		return nil
	}
	if err := checkRange(srcOff, count, l.count); err != nil {
		return err
	}
	if tgtOff+count < tgtOff || tgtOff+count > uint64(len(dst)) {
		return fmt.Errorf("chunked: destination slice too short for %d elements at offset %d: %w", count, tgtOff, lc.ErrOutOfRange)
	}

	remaining := count
	sp, tp := srcOff, tgtOff
	for remaining > 0 {
		sc, so := l.chunkAndOffset(sp)
		n := min(l.chunkSize-so, remaining)
		copy(dst[tp:tp+n], l.chunks[sc][so:so+n])
		sp += n
		tp += n
		remaining -= n
	}
	return nil
}

// CopyFromSlice copies count elements of src starting at srcOff into l
// starting at tgtOff, overwriting l's existing elements in that range. It
// does not grow l; use ExtendFromSlice to append new elements.
func (l *ChunkedList[T]) CopyFromSlice(src []T, srcOff, tgtOff, count uint64) error {
	if count == 0 {
		return nil
	}
	if srcOff+count < srcOff || srcOff+count > uint64(len(src)) {
		return fmt.Errorf("chunked: source slice too short for %d elements at offset %d: %w", count, srcOff, lc.ErrOutOfRange)
	}
	if err := checkRange(tgtOff, count, l.count); err != nil {
		return err
	}

	remaining := count
	sp, tp := srcOff, tgtOff
	for remaining > 0 {
		tc, to := l.chunkAndOffset(tp)
		n := min(l.chunkSize-to, remaining)
		copy(l.chunks[tc][to:to+n], src[sp:sp+n])
		sp += n
		tp += n
		remaining -= n
	}
	return nil
}

// CopyFromChunked is CopyTo called on the other side: it copies count
// elements of src starting at srcOff into l starting at tgtOff.
func (l *ChunkedList[T]) CopyFromChunked(src *ChunkedList[T], srcOff, tgtOff, count uint64) error {
	return src.CopyTo(l, srcOff, tgtOff, count)
}

// copyWithin shifts count elements starting at srcOff down to tgtOff
// within the same list, used by RemoveAt(preserveOrder=true). It always
// goes through the overlap-safe CopyTo path.
func (l *ChunkedList[T]) copyWithin(srcOff, tgtOff, count uint64) error {
	return l.CopyTo(l, srcOff, tgtOff, count)
}

func checkRange(offset, count, length uint64) error {
	if offset > length {
		return fmt.Errorf("chunked: offset %d out of range [0, %d]: %w", offset, length, lc.ErrOutOfRange)
	}
	end := offset + count
	if end < offset || end > length {
		return fmt.Errorf("chunked: range [%d, %d) out of range [0, %d): %w", offset, end, length, lc.ErrOutOfRange)
	}
	return nil
}

func rangesOverlap(a, b, count uint64) bool {
	if a == b {
		return true
	}
	if a < b {
		return b < a+count
	}
	return a < b+count
}

func min(xs ...uint64) uint64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

// DoForEach invokes action once per element in [offset, offset+count),
// traversing chunk-by-chunk so chunk/offset arithmetic is hoisted once per
// chunk instead of recomputed on every index — the preferred alternative
// to a Get(i) loop (spec §4.1).
func (l *ChunkedList[T]) DoForEach(action func(T), offset, count uint64) error {
	if err := checkRange(offset, count, l.count); err != nil {
		return err
	}
	remaining := count
	pos := offset
	for remaining > 0 {
		c, o := l.chunkAndOffset(pos)
		n := min(l.chunkSize-o, remaining)
		for _, v := range l.chunks[c][o : o+n] {
			action(v)
		}
		pos += n
		remaining -= n
	}
	return nil
}

// DoForEachState is the allocation-free variant of DoForEach: it threads a
// caller-owned state value through action by pointer instead of requiring
// a heap-allocated closure over captured variables.
func DoForEachState[T, S any](l *ChunkedList[T], state *S, action func(*S, T), offset, count uint64) error {
	if err := checkRange(offset, count, l.count); err != nil {
		return err
	}
	remaining := count
	pos := offset
	for remaining > 0 {
		c, o := l.chunkAndOffset(pos)
		n := min(l.chunkSize-o, remaining)
		for _, v := range l.chunks[c][o : o+n] {
			action(state, v)
		}
		pos += n
		remaining -= n
	}
	return nil
}

// Sort sorts the sub-range [offset, offset+count) in place using a
// chunk-aware median-of-three quicksort with an insertion-sort fallback
// for small partitions (internal/fastsort). cmp must be a strict weak
// order; a misbehaving comparator yields undefined ordering but the range
// remains a permutation of its original contents.
func (l *ChunkedList[T]) Sort(cmp func(a, b T) int, offset, count uint64) error {
	if err := checkRange(offset, count, l.count); err != nil {
		return err
	}
	fastsort.Sort[T](indexable[T]{l}, fastsort.Comparator[T](cmp), offset, count)
	return nil
}

// BinarySearch searches the pre-sorted sub-range [offset, offset+count)
// for target. It returns (index, true) on an exact match, or (insertion
// point, false) when target is absent — the index at which target could
// be inserted while keeping the range sorted.
func (l *ChunkedList[T]) BinarySearch(target T, cmp func(a, b T) int, offset, count uint64) (uint64, bool, error) {
	if err := checkRange(offset, count, l.count); err != nil {
		return 0, false, err
	}
	i, ok := fastsort.BinarySearch[T](indexable[T]{l}, target, fastsort.Comparator[T](cmp), offset, count)
	return i, ok, nil
}
