package fastsort

import (
	"math/rand"
	"testing"
)

func TestSortSmallPartitionUsesInsertionSort(t *testing.T) {
	data := SliceIndexable[int]{5, 3, 1, 4, 2}
	Sort[int](data, Natural[int](), 0, uint64(len(data)))
	want := []int{1, 2, 3, 4, 5}
	for i, w := range want {
		if data[i] != w {
			t.Fatalf("data[%d] = %d, want %d", i, data[i], w)
		}
	}
}

func TestSortLargerThanThreshold(t *testing.T) {
	n := 500
	data := make(SliceIndexable[int], n)
	r := rand.New(rand.NewSource(1))
	for i := range data {
		data[i] = r.Intn(10000)
	}
	Sort[int](data, Natural[int](), 0, uint64(n))
	for i := 1; i < n; i++ {
		if data[i-1] > data[i] {
			t.Fatalf("not sorted at %d: %d > %d", i, data[i-1], data[i])
		}
	}
}

func TestSortSubRange(t *testing.T) {
	data := SliceIndexable[int]{9, 5, 3, 1, 8}
	Sort[int](data, Natural[int](), 1, 3)
	want := []int{9, 1, 3, 5, 8}
	for i, w := range want {
		if data[i] != w {
			t.Fatalf("data[%d] = %d, want %d", i, data[i], w)
		}
	}
}

func TestSortNoOpOnZeroOrOneCount(t *testing.T) {
	data := SliceIndexable[int]{3, 1, 2}
	Sort[int](data, Natural[int](), 0, 0)
	Sort[int](data, Natural[int](), 1, 1)
	want := []int{3, 1, 2}
	for i, w := range want {
		if data[i] != w {
			t.Fatalf("data[%d] = %d, want %d", i, data[i], w)
		}
	}
}

func TestBinarySearchFoundAndInsertionPoint(t *testing.T) {
	data := SliceIndexable[int]{1, 2, 3, 4, 5}
	idx, ok := BinarySearch[int](data, 3, Natural[int](), 0, uint64(len(data)))
	if !ok || idx != 2 {
		t.Fatalf("BinarySearch(3) = (%d, %v), want (2, true)", idx, ok)
	}

	idx, ok = BinarySearch[int](data, 0, Natural[int](), 0, uint64(len(data)))
	if ok || idx != 0 {
		t.Fatalf("BinarySearch(0) = (%d, %v), want (0, false)", idx, ok)
	}

	idx, ok = BinarySearch[int](data, 10, Natural[int](), 0, uint64(len(data)))
	if ok || idx != 5 {
		t.Fatalf("BinarySearch(10) = (%d, %v), want (5, false)", idx, ok)
	}
}

func TestBinarySearchEmptyRange(t *testing.T) {
	data := SliceIndexable[int]{}
	idx, ok := BinarySearch[int](data, 1, Natural[int](), 0, 0)
	if ok || idx != 0 {
		t.Fatalf("BinarySearch on empty range = (%d, %v), want (0, false)", idx, ok)
	}
}

func TestNaturalIsAscendingStrictWeakOrder(t *testing.T) {
	cmp := Natural[uint64]()
	if cmp(1, 2) >= 0 || cmp(2, 1) <= 0 || cmp(2, 2) != 0 {
		t.Fatal("Natural comparator does not implement ascending strict weak order")
	}
}
