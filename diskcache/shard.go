package diskcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	lc "github.com/dreamware/largecollections"
)

// DefaultPageSize is the page size, in bytes, pragma'd on every shard
// unless Config.PageSize overrides it (spec §4.3: "typically 4096").
const DefaultPageSize = 4096

// Config configures a single Shard. Callers building a Sharded Disk Cache
// compute CacheSizePages as MaxMemorySize / DegreeOfParallelism / PageSize
// per spec §3.4 before constructing each shard.
type Config struct {
	// Path is the SQLite file path for this shard.
	Path string
	// Overwrite deletes an existing file at Path before opening.
	Overwrite bool
	// ReadOnly opens the shard read-only and rejects every mutation with
	// lc.ErrNotSupported.
	ReadOnly bool
	// DeleteOnClose removes the file when Close is called, skipping the
	// final commit.
	DeleteOnClose bool
	// PageSize is the SQLite page size in bytes. Zero means
	// DefaultPageSize.
	PageSize int
	// CacheSizePages is the page-cache budget for this shard's
	// connection, in pages.
	CacheSizePages int
	// KeyKind and ValueKind select the column types for the shard's one
	// table. KeyKind must not be KindReal (spec §9's intentional
	// asymmetry).
	KeyKind, ValueKind ColumnKind
}

func (c Config) withDefaults() Config {
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	return c
}

// Shard is a single embedded-SQL-database partition, schema
// items(id KEY_TYPE PRIMARY KEY, item VALUE_TYPE). All public methods hold
// mu for their full duration, including while a Scan cursor is consumed
// (spec §5).
type Shard struct {
	cfg Config
	id  uuid.UUID
	mu  sync.Mutex

	db *sql.DB
	tx *sql.Tx

	upsertStmt *sql.Stmt
	deleteStmt *sql.Stmt
	selectStmt *sql.Stmt
	countStmt  *sql.Stmt
	clearStmt  *sql.Stmt
	scanStmt   *sql.Stmt

	scanning bool // a Scan cursor is currently open and unconsumed
	closed   bool

	// Cumulative operation counters, read by Stats. Incremented with
	// sync/atomic so Stats can be called without taking mu.
	gets, sets, removes, scans uint64
}

// Open constructs a Shard per cfg, applying the pragmas and preparing the
// statements listed in spec §4.3. Schema/prepare failures at construction
// are fatal and returned directly.
func Open(cfg Config) (*Shard, error) {
	cfg = cfg.withDefaults()
	if cfg.KeyKind == KindReal {
		return nil, fmt.Errorf("diskcache: real keys are not supported: %w", lc.ErrInvalidConfiguration)
	}

	if cfg.Overwrite {
		if cfg.ReadOnly {
			return nil, fmt.Errorf("diskcache: read-only shard cannot overwrite: %w", lc.ErrInvalidConfiguration)
		}
		if err := os.Remove(cfg.Path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("diskcache: removing %s before overwrite: %w", cfg.Path, errors.Join(lc.ErrStorageIO, err))
		}
	}

	dsn := cfg.Path
	if cfg.ReadOnly {
		dsn = "file:" + cfg.Path + "?mode=ro"
	} else {
		dsn = "file:" + cfg.Path + "?mode=rwc"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("diskcache: opening %s: %w", cfg.Path, errors.Join(lc.ErrStorageIO, err))
	}
	// One connection only: the embedded engine is not safe for concurrent
	// use on a single connection, and this Shard's mutex is the only
	// enforcement point (spec §5).
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Shard{cfg: cfg, id: uuid.New(), db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	log.Printf("diskcache: shard %s opened at %s", s.id, cfg.Path)
	return s, nil
}

// ID returns a process-lifetime-scoped identifier for this shard, used to
// correlate log lines and Scan diagnostics across shards without leaking
// the file path into every message.
func (s *Shard) ID() uuid.UUID { return s.id }

// Stats is a point-in-time snapshot of a Shard's cumulative operation
// counts, mirroring the count/get/set/remove/scan breakdown a caller would
// otherwise have to infer from logs.
type Stats struct {
	ID      uuid.UUID
	Gets    uint64
	Sets    uint64
	Removes uint64
	Scans   uint64
}

// String renders a human-readable summary with go-humanize-formatted
// counts, e.g. "shard 1b4e...: 1,024 gets, 512 sets, 3 removes, 1 scan(s)".
func (s Stats) String() string {
	return fmt.Sprintf("shard %s: %s gets, %s sets, %s removes, %s scan(s)",
		s.ID, humanize.Comma(int64(s.Gets)), humanize.Comma(int64(s.Sets)),
		humanize.Comma(int64(s.Removes)), humanize.Comma(int64(s.Scans)))
}

// Stats returns a snapshot of s's cumulative operation counters. It does
// not take s.mu: the counters are updated with sync/atomic specifically so
// Stats can be read without contending with an in-flight Scan.
func (s *Shard) Stats() Stats {
	return Stats{
		ID:      s.id,
		Gets:    atomic.LoadUint64(&s.gets),
		Sets:    atomic.LoadUint64(&s.sets),
		Removes: atomic.LoadUint64(&s.removes),
		Scans:   atomic.LoadUint64(&s.scans),
	}
}

func (s *Shard) init() error {
	ctx := context.Background()

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA page_size = %d", s.cfg.PageSize)); err != nil {
		return fmt.Errorf("diskcache: setting page_size: %w", errors.Join(lc.ErrStorageIO, err))
	}
	if s.cfg.CacheSizePages > 0 {
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA cache_size = %d", s.cfg.CacheSizePages)); err != nil {
			return fmt.Errorf("diskcache: setting cache_size: %w", errors.Join(lc.ErrStorageIO, err))
		}
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = OFF"); err != nil {
		return fmt.Errorf("diskcache: setting journal_mode: %w", errors.Join(lc.ErrStorageIO, err))
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA synchronous = OFF"); err != nil {
		return fmt.Errorf("diskcache: setting synchronous: %w", errors.Join(lc.ErrStorageIO, err))
	}

	if !s.cfg.ReadOnly {
		if s.cfg.Overwrite {
			if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS items"); err != nil {
				return fmt.Errorf("diskcache: dropping items: %w", errors.Join(lc.ErrStorageIO, err))
			}
		}
		keyType, err := s.cfg.KeyKind.sqlType()
		if err != nil {
			return err
		}
		valueType, err := s.cfg.ValueKind.sqlType()
		if err != nil {
			return err
		}
		ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS items (id %s PRIMARY KEY, item %s)", keyType, valueType)
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("diskcache: creating items table: %w", errors.Join(lc.ErrStorageIO, err))
		}
	}

	txOpts := &sql.TxOptions{}
	if s.cfg.ReadOnly {
		txOpts = &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelReadUncommitted}
	}
	tx, err := s.db.BeginTx(ctx, txOpts)
	if err != nil {
		return fmt.Errorf("diskcache: beginning long-running transaction: %w", errors.Join(lc.ErrStorageIO, err))
	}
	s.tx = tx

	if err := s.prepareStatements(); err != nil {
		return err
	}
	return nil
}

func (s *Shard) prepareStatements() error {
	var err error
	if !s.cfg.ReadOnly {
		s.upsertStmt, err = s.tx.Prepare("INSERT INTO items (id, item) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET item = excluded.item")
		if err != nil {
			return fmt.Errorf("diskcache: preparing upsert: %w", errors.Join(lc.ErrStorageIO, err))
		}
		s.deleteStmt, err = s.tx.Prepare("DELETE FROM items WHERE id = ? RETURNING item")
		if err != nil {
			return fmt.Errorf("diskcache: preparing delete: %w", errors.Join(lc.ErrStorageIO, err))
		}
		s.clearStmt, err = s.tx.Prepare("DELETE FROM items")
		if err != nil {
			return fmt.Errorf("diskcache: preparing clear: %w", errors.Join(lc.ErrStorageIO, err))
		}
	}
	s.selectStmt, err = s.tx.Prepare("SELECT item FROM items WHERE id = ?")
	if err != nil {
		return fmt.Errorf("diskcache: preparing select: %w", errors.Join(lc.ErrStorageIO, err))
	}
	s.countStmt, err = s.tx.Prepare("SELECT COUNT(id) FROM items")
	if err != nil {
		return fmt.Errorf("diskcache: preparing count: %w", errors.Join(lc.ErrStorageIO, err))
	}
	s.scanStmt, err = s.tx.Prepare("SELECT id, item FROM items")
	if err != nil {
		return fmt.Errorf("diskcache: preparing scan: %w", errors.Join(lc.ErrStorageIO, err))
	}
	return nil
}

// Set upserts key -> item. It fails with lc.ErrNotSupported on a read-only
// shard and with lc.ErrInvalidArgument if key or item violate the bit-level
// constraints of spec §4.3.
func (s *Shard) Set(key, item any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.ReadOnly {
		return fmt.Errorf("diskcache: Set on read-only shard: %w", lc.ErrNotSupported)
	}
	if s.scanning {
		return fmt.Errorf("diskcache: Set while a scan cursor is open: %w", lc.ErrInvalidArgument)
	}
	if err := validateKey(s.cfg.KeyKind, key); err != nil {
		return err
	}
	if err := validateValue(s.cfg.ValueKind, item); err != nil {
		return err
	}

	if _, err := s.upsertStmt.Exec(key, item); err != nil {
		return fmt.Errorf("diskcache: set: %w", errors.Join(lc.ErrStorageIO, err))
	}
	atomic.AddUint64(&s.sets, 1)
	return nil
}

// TryGet returns (item, true, nil) if key is present, (zero, false, nil)
// if absent, or a non-nil error on storage failure.
func (s *Shard) TryGet(key any) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateKey(s.cfg.KeyKind, key); err != nil {
		return nil, false, err
	}

	var item any
	err := s.selectStmt.QueryRow(key).Scan(&item)
	atomic.AddUint64(&s.gets, 1)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("diskcache: try_get: %w", errors.Join(lc.ErrStorageIO, err))
	default:
		return item, true, nil
	}
}

// Remove deletes key, returning (item, true, nil) if it was present,
// (zero, false, nil) if it was already absent.
func (s *Shard) Remove(key any) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.ReadOnly {
		return nil, false, fmt.Errorf("diskcache: Remove on read-only shard: %w", lc.ErrNotSupported)
	}
	if err := validateKey(s.cfg.KeyKind, key); err != nil {
		return nil, false, err
	}

	var item any
	err := s.deleteStmt.QueryRow(key).Scan(&item)
	atomic.AddUint64(&s.removes, 1)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("diskcache: remove: %w", errors.Join(lc.ErrStorageIO, err))
	default:
		return item, true, nil
	}
}

// Count returns the number of entries currently in the shard.
func (s *Shard) Count() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n uint64
	if err := s.countStmt.QueryRow().Scan(&n); err != nil {
		return 0, fmt.Errorf("diskcache: count: %w", errors.Join(lc.ErrStorageIO, err))
	}
	return n, nil
}

// Clear deletes every entry in the shard.
func (s *Shard) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.ReadOnly {
		return fmt.Errorf("diskcache: Clear on read-only shard: %w", lc.ErrNotSupported)
	}
	if _, err := s.clearStmt.Exec(); err != nil {
		return fmt.Errorf("diskcache: clear: %w", errors.Join(lc.ErrStorageIO, err))
	}
	return nil
}

// Entry is one (id, item) row yielded by Scan.
type Entry struct {
	Key  any
	Item any
}

// Scan opens a forward-only cursor over every entry in the shard and
// drains it into a callback, holding the shard's mutex for the whole
// operation (spec §5: "including iterator consumption"). The cursor sees a
// snapshot consistent with the shard's long-running transaction at the
// moment it was opened; it is single-use and must run to completion before
// any mutating call on the same shard, which this signature enforces by
// construction — there is no way to call Set/Remove from inside visit
// without deadlocking on s.mu, by design.
func (s *Shard) Scan(visit func(Entry) (bool, error)) error {
	return s.ScanContext(context.Background(), visit)
}

// ScanContext is Scan with cancellation: ctx is checked between rows so a
// caller can bound an otherwise-unbounded scan.
func (s *Shard) ScanContext(ctx context.Context, visit func(Entry) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.scanStmt.QueryContext(ctx)
	if err != nil {
		return fmt.Errorf("diskcache: scan: %w", errors.Join(lc.ErrStorageIO, err))
	}
	defer rows.Close()

	cursorID := uuid.New()
	log.Printf("diskcache: shard %s opened scan cursor %s", s.id, cursorID)
	atomic.AddUint64(&s.scans, 1)

	s.scanning = true
	defer func() { s.scanning = false }()

	var rowsVisited uint64
	defer func() { log.Printf("diskcache: shard %s scan cursor %s visited %d row(s)", s.id, cursorID, rowsVisited) }()

	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var e Entry
		if err := rows.Scan(&e.Key, &e.Item); err != nil {
			return fmt.Errorf("diskcache: scanning row: %w", errors.Join(lc.ErrStorageIO, err))
		}
		rowsVisited++
		cont, err := visit(e)
		if err != nil {
			return err
		}
		if !cont {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("diskcache: scan: %w", errors.Join(lc.ErrStorageIO, err))
	}
	return nil
}

// Close commits the shard's long-running transaction (unless the shard was
// opened for deletion or read-only, in which case the transaction is
// rolled back instead of committed), releases the
// prepared statements and the connection, and — if DeleteOnClose is set —
// removes the backing file.
func (s *Shard) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if !s.cfg.DeleteOnClose && !s.cfg.ReadOnly {
		record(s.tx.Commit())
	} else {
		record(s.tx.Rollback())
	}
	record(s.db.Close())

	if s.cfg.DeleteOnClose {
		if err := os.Remove(s.cfg.Path); err != nil && !os.IsNotExist(err) {
			record(err)
		}
	}

	if firstErr != nil {
		log.Printf("diskcache: shard %s close failed: %v", s.id, firstErr)
		return fmt.Errorf("diskcache: close: %w", errors.Join(lc.ErrStorageIO, firstErr))
	}
	log.Printf("diskcache: shard %s closed (deleted=%t)", s.id, s.cfg.DeleteOnClose)
	return nil
}

// WithTx runs fn against the shard's long-running transaction under the
// shard's mutex, letting a caller built on top of Shard (spatialcache's
// auxiliary R-tree table) extend the schema and issue statements within
// the same concurrency discipline as every other Shard method — there is
// no separate connection or lock to coordinate.
func (s *Shard) WithTx(fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.tx)
}

// Path returns the filesystem path this shard was opened against.
func (s *Shard) Path() string { return s.cfg.Path }

// ReadOnly reports whether this shard rejects mutations.
func (s *Shard) ReadOnly() bool { return s.cfg.ReadOnly }
