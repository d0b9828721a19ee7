// Package spatialcache implements the Spatial Disk Cache: a
// shardedcache.Cache augmented, per shard, with an SQLite R-tree virtual
// table recording each entry's 2-D bounding box (spec §4.5).
//
// Composition, not inheritance (spec §9): Cache owns a
// *shardedcache.Cache[int64, V] for the primary dictionary surface and
// layers a parallel set of per-shard prepared statements against the same
// shard's long-running transaction (diskcache.Shard.WithTx) to maintain
// items_rtree alongside items. The dictionary surface is provided by
// delegating to the embedded cache; the spatial surface — Set with a
// bbox, Query, QueryParallel — is additive.
//
// # Layout
//
//	┌───────────────────────────────────────────┐
//	│                  shard N                      │
//	│  ┌─────────────┐      ┌───────────────────┐  │
//	│  │ items        │      │ items_rtree         │  │
//	│  │ id, item     │◄────►│ id, min_x, max_x,   │  │
//	│  │              │ same │ min_y, max_y        │  │
//	│  └─────────────┘  id  └───────────────────┘  │
//	└───────────────────────────────────────────┘
//
// Keys are fixed to int64: SQLite's rtree module indexes by a 64-bit
// rowid, and the R-tree row's id must match the items row's id (spec
// §4.5, §6.1) — so a spatial cache's key type is int64 by construction
// rather than a type parameter, which elides an entire class of
// configuration error the general Sharded Disk Cache must validate at
// runtime (KeyKind != Integer).
//
// Building this package's SQL requires an SQLite driver compiled with the
// rtree virtual table; github.com/mattn/go-sqlite3 provides it only under
// the "sqlite_rtree" build tag, which is not on by default for a plain go
// build/go test. Use `make build` / `make test` (see the repo-root
// Makefile) rather than invoking the go tool directly on this package, or
// pass -tags sqlite_rtree yourself.
package spatialcache
