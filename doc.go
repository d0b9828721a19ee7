// Package largecollections provides the shared vocabulary — error taxonomy,
// size limits, and in-process interfaces — used by every subpackage of the
// library: chunked (large chunked sequences), diskcache/shardedcache/
// spatialcache (sharded, disk-backed key/value storage) and view (observable
// filtered/sorted projections).
//
// # Overview
//
// None of these collections fit in a plain Go slice or map once they grow
// past what a signed int can index, or past what fits comfortably in
// process memory. This module splits the problem into independent,
// composable pieces:
//
//	┌───────────────────────────────────────────────┐
//	│                 largecollections                │
//	│   (error taxonomy, MaxCount, Serializer, the    │
//	│    Observable source contract)                  │
//	└───────────────────────────────────────────────┘
//	        ▲                 ▲                ▲
//	        │                 │                │
//	┌───────────────┐ ┌───────────────┐ ┌───────────────┐
//	│    chunked    │ │  diskcache /  │ │     view      │
//	│ (component A) │ │ shardedcache /│ │ (component F) │
//	│               │ │ spatialcache  │ │               │
//	│               │ │ (C, D, E)     │ │               │
//	└───────────────┘ └───────────────┘ └───────────────┘
//
// # Error handling
//
// Every package in this module returns errors that satisfy errors.Is
// against one of the sentinel values declared below. Component packages
// wrap these with additional context via fmt.Errorf("...: %w", ...); they
// never return an undecorated error that callers can't classify. Errors
// returned by caller-supplied callbacks or by an Observable source, and
// context cancellation errors from the ...Context variants, are passed
// through as they are.
package largecollections
