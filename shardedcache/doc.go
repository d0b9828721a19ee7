// Package shardedcache implements the Sharded Disk Cache: a memory-bounded
// dictionary that fans keys out across N independent diskcache.Shard
// files by a fixed, deterministic hash of the serialized key.
//
// # Overview
//
//	┌─────────────────────────────────────────────────────┐
//	│                       Cache[K, V]                        │
//	├─────────────────────────────────────────────────────┤
//	│  ShardIndex(key) — fixed, deterministic, part of the     │
//	│    cache's on-disk identity (spec §4.4)                  │
//	│                                                            │
//	│   shard 0        shard 1        shard N-1                 │
//	│  ┌─────────┐    ┌─────────┐    ┌─────────┐                │
//	│  │<base>_0 │    │<base>_1 │ …  │<base>_N-1│                │
//	│  │.<ext>   │    │.<ext>   │    │.<ext>    │                │
//	│  └─────────┘    └─────────┘    └─────────┘                │
//	└─────────────────────────────────────────────────────┘
//
// Every operation computes ShardIndex(key) and delegates to exactly that
// shard's lock; there is no cache-wide lock. Count and Clear each acquire
// every shard's lock serially — never all at once — so they are not
// atomic across shards (spec §4.4, §9's open question: a concurrent Count
// may observe a value no single instant of the cache exhibited).
//
// # Key-to-shard hash
//
// The mapping in hash.go must be reproduced byte-for-byte by any
// compatible implementation: it is part of the cache's on-disk identity,
// because file names encode shard index and a cache opened with a
// different N cannot read files written with another N. See spec §4.4 and
// the open question in spec §9 about its coarse, single-byte folding.
package shardedcache
