// Package chunked implements a 64-bit-indexed, chunk-backed mutable
// sequence capable of holding up to largecollections.MaxCount elements —
// three orders of magnitude beyond what a signed 32-bit length permits.
//
// # Overview
//
// A ChunkedList never allocates one giant contiguous backing array. It
// holds an ordered slice of fixed-size chunks instead, so growth never
// requires copying everything that came before it:
//
//	┌─────────────────────────────────────────────┐
//	│                 ChunkedList[T]                 │
//	├─────────────────────────────────────────────┤
//	│  chunks: [][]T                                 │
//	│                                                 │
//	│   chunk 0        chunk 1        chunk 2         │
//	│  ┌────────┐    ┌────────┐    ┌────────┐         │
//	│  │ full   │    │ full   │    │ partial│         │
//	│  └────────┘    └────────┘    └────────┘         │
//	│   (ChunkSize)   (ChunkSize)   (Count mod        │
//	│                                ChunkSize)        │
//	└─────────────────────────────────────────────┘
//
// Logical index i lives in chunk i/ChunkSize at offset i mod ChunkSize
// (invariant I-A3). Growth allocates one additional chunk at a time
// instead of doubling: chunk-sized growth is already amortized O(1) per
// element, and doubling would waste memory at the scale this type targets.
//
// # Bulk operators
//
// Three operations are contractually chunk-aware instead of looping
// element-by-element through Get/Set: CopyTo walks chunk boundaries and
// issues a Go slice copy() per overlapping chunk run; Sort and
// BinarySearch delegate to internal/fastsort against the ChunkedList's own
// chunk layout, so comparator calls never pay more than one division/
// modulo per access; DoForEach traverses chunk-by-chunk with a single tight
// inner loop per chunk rather than recomputing chunk/offset on every index.
//
// # Concurrency
//
// ChunkedList is not internally synchronized (spec §5): callers must
// serialize writers against readers and other writers themselves. Ref
// returns a pointer into the live backing chunk; it is invalidated by the
// next structural mutation (Push that grows, RemoveAt, Clear).
package chunked
