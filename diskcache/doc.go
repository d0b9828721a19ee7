// Package diskcache implements a single Disk Cache Shard: a
// prepared-statement wrapper around one embedded SQLite database file
// holding exactly one table, (id KEY_TYPE PRIMARY KEY, item VALUE_TYPE).
//
// # Overview
//
// A Shard is the unit the shardedcache package fans requests out to. It
// owns everything needed to serve one partition of a larger key space on
// its own file, connection, and long-running transaction:
//
//	┌───────────────────────────────────────────┐
//	│                    Shard                     │
//	├───────────────────────────────────────────┤
//	│  *sql.DB (pooling disabled: MaxOpenConns=1)  │
//	│  *sql.Tx   (one long-running transaction)    │
//	│  prepared statements: upsert, delete-        │
//	│    returning, select, count, clear, scan      │
//	│  sync.Mutex (held for every public call,     │
//	│    including scan-cursor consumption)         │
//	└───────────────────────────────────────────┘
//
// # Lifecycle
//
// Construction opens (optionally recreating) the file, applies the pragmas
// in spec §4.3 step 3 (page_size, cache_size, journal_mode=OFF,
// synchronous=OFF — these trade crash durability for throughput, an
// explicit non-goal of this library), ensures the schema exists, and opens
// the shard's one long-running transaction. Close commits that transaction
// (unless the shard is being deleted or is read-only, in which case it is
// rolled back instead) before releasing the prepared statements and the
// connection.
//
// # Concurrency
//
// The embedded engine is not safe for concurrent use on one connection, so
// every public method acquires the shard's mutex for its full duration —
// including while a Scan cursor is being drained, per spec §5.
package diskcache
