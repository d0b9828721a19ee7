// Package fastsort implements the chunk-aware quicksort and binary search
// shared by the chunked and view packages. It is unexported because its
// Indexable abstraction is plumbing, not part of the library's public
// surface — callers use chunked.ChunkedList.Sort or view's index-map
// rebuild, not this package directly.
package fastsort

import "golang.org/x/exp/constraints"

// Natural returns the ascending Comparator for any of Go's built-in
// ordered types, saving callers from writing `func(a, b T) int { ... }` by
// hand for the common ascending-over-an-ordered-type case.
func Natural[T constraints.Ordered]() Comparator[T] {
	return func(a, b T) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}
}

// Indexable is the minimal random-access surface fastsort needs: logical
// get/set/swap by a 64-bit index. The chunked package adapts
// ChunkedList to it with a small unexported wrapper that addresses its
// chunk layout directly; a plain []T satisfies it via SliceIndexable.
type Indexable[T any] interface {
	At(i uint64) T
	Set(i uint64, v T)
	Swap(i, j uint64)
}

// Comparator is a strict weak order: negative if a < b, zero if equivalent,
// positive if a > b. A comparator that violates strict weak ordering
// yields undefined ordering but must not corrupt the collection — Sort
// only ever calls Swap/Set on positions inside [offset, offset+count), so
// the range remains a permutation of its original contents regardless of
// comparator behavior.
type Comparator[T any] func(a, b T) int

// insertionSortThreshold is the partition size at or below which Sort
// falls back to insertion sort instead of recursing further.
const insertionSortThreshold = 16

// Sort sorts the sub-range [offset, offset+count) of x in place using a
// median-of-three quicksort with an insertion-sort fallback for small
// partitions. count == 0 and count == 1 are no-ops.
func Sort[T any](x Indexable[T], cmp Comparator[T], offset, count uint64) {
	if count < 2 {
		return
	}
	quicksort(x, cmp, offset, offset+count-1)
}

func quicksort[T any](x Indexable[T], cmp Comparator[T], lo, hi uint64) {
	for lo < hi {
		n := hi - lo + 1
		if n <= insertionSortThreshold {
			insertionSort(x, cmp, lo, hi)
			return
		}

		p := medianOfThreePivot(x, cmp, lo, hi)
		p = partition(x, cmp, lo, hi, p)

		// Recurse into the smaller side, loop on the larger side, to keep
		// the stack depth at O(log n) even on adversarial inputs.
		leftSmaller := p-lo < hi-p
		if leftSmaller {
			if p > lo {
				quicksort(x, cmp, lo, p-1)
			}
			if p == hi {
				return
			}
			lo = p + 1
		} else {
			if p < hi {
				quicksort(x, cmp, p+1, hi)
			}
			if p == lo {
				return
			}
			hi = p - 1
		}
	}
}

// medianOfThreePivot picks the median of x[lo], x[mid], x[hi] as the pivot
// index and moves it to lo, where partition expects it.
func medianOfThreePivot[T any](x Indexable[T], cmp Comparator[T], lo, hi uint64) uint64 {
	mid := lo + (hi-lo)/2

	if cmp(x.At(mid), x.At(lo)) < 0 {
		x.Swap(mid, lo)
	}
	if cmp(x.At(hi), x.At(lo)) < 0 {
		x.Swap(hi, lo)
	}
	if cmp(x.At(hi), x.At(mid)) < 0 {
		x.Swap(hi, mid)
	}
	x.Swap(mid, lo)
	return lo
}

// partition performs a Hoare-style partition around x[pivotIdx] (already
// moved to lo by medianOfThreePivot) and returns the pivot's final index.
func partition[T any](x Indexable[T], cmp Comparator[T], lo, hi, pivotIdx uint64) uint64 {
	pivot := x.At(pivotIdx)
	i := lo + 1
	j := hi
	for {
		for i <= hi && cmp(x.At(i), pivot) < 0 {
			i++
		}
		for j > lo && cmp(x.At(j), pivot) > 0 {
			j--
		}
		if i >= j {
			break
		}
		x.Swap(i, j)
		i++
		if j > lo {
			j--
		}
	}
	x.Swap(lo, j)
	return j
}

// insertionSort sorts [lo, hi] in place. Used directly for small ranges and
// as quicksort's base case.
func insertionSort[T any](x Indexable[T], cmp Comparator[T], lo, hi uint64) {
	for i := lo + 1; i <= hi; i++ {
		v := x.At(i)
		j := i
		for j > lo && cmp(x.At(j-1), v) > 0 {
			x.Set(j, x.At(j-1))
			j--
		}
		x.Set(j, v)
	}
}

// BinarySearch searches the pre-sorted sub-range [offset, offset+count) of
// x for target, returning (index, true) on an exact match or (insertion
// point, false) when absent. The insertion point is the index at which
// target could be inserted while keeping the range sorted.
func BinarySearch[T any](x Indexable[T], target T, cmp Comparator[T], offset, count uint64) (uint64, bool) {
	lo, hi := offset, offset+count
	for lo < hi {
		mid := lo + (hi-lo)/2
		c := cmp(x.At(mid), target)
		switch {
		case c == 0:
			return mid, true
		case c < 0:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return lo, false
}

// SliceIndexable adapts a plain []T to Indexable, letting fastsort.Sort and
// fastsort.BinarySearch operate on ordinary slices (used by the view
// package to sort its index map, and by tests).
type SliceIndexable[T any] []T

func (s SliceIndexable[T]) At(i uint64) T      { return s[i] }
func (s SliceIndexable[T]) Set(i uint64, v T)  { s[i] = v }
func (s SliceIndexable[T]) Swap(i, j uint64)   { s[i], s[j] = s[j], s[i] }
