package spatialcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	lc "github.com/dreamware/largecollections"
	"github.com/dreamware/largecollections/diskcache"
	"github.com/dreamware/largecollections/shardedcache"
)

// Config configures a Cache. It mirrors shardedcache.Config[int64, V]
// minus KeyKind, which is always diskcache.KindInteger (see doc.go).
type Config[V any] struct {
	BasePath  string
	Extension string

	DegreeOfParallelism int
	MaxMemorySizeMB     int

	OverwriteExisting bool
	DeleteOnClose     bool
	ReadOnly          bool

	ValueKind diskcache.ColumnKind

	SerializeValue   lc.Serializer[V]
	DeserializeValue lc.Deserializer[V]
}

func (c Config[V]) toShardedConfig() shardedcache.Config[int64, V] {
	return shardedcache.Config[int64, V]{
		BasePath:            c.BasePath,
		Extension:           c.Extension,
		DegreeOfParallelism: c.DegreeOfParallelism,
		MaxMemorySizeMB:     c.MaxMemorySizeMB,
		OverwriteExisting:   c.OverwriteExisting,
		DeleteOnClose:       c.DeleteOnClose,
		ReadOnly:            c.ReadOnly,
		KeyKind:             diskcache.KindInteger,
		ValueKind:           c.ValueKind,
		SerializeValue:      c.SerializeValue,
		DeserializeValue:    c.DeserializeValue,
	}
}

// Entry is one (id, value) row yielded by Query and QueryParallel. Box is
// left at its zero value: queries do not read the stored bounding box
// back from items_rtree.
type Entry[V any] struct {
	ID    int64
	Value V
	Box   BoundingBox
}

// Cache is a Spatial Disk Cache: a shardedcache.Cache[int64, V] with a
// per-shard R-tree table for range queries (spec §4.5).
type Cache[V any] struct {
	cfg  Config[V]
	base *shardedcache.Cache[int64, V]

	rtreeUpsert []*sql.Stmt
	rtreeDelete []*sql.Stmt
	rtreeQuery  []*sql.Stmt
	itemSelect  []*sql.Stmt
}

// Open constructs or opens a Cache per cfg, opening the base
// shardedcache.Cache and then, on each shard, creating the items_rtree
// virtual table (if not already present) and preparing the statements
// this package needs against that shard's long-running transaction.
func Open[V any](cfg Config[V]) (*Cache[V], error) {
	base, err := shardedcache.Open(cfg.toShardedConfig())
	if err != nil {
		return nil, err
	}

	n := base.ShardCount()
	c := &Cache[V]{
		cfg:         cfg,
		base:        base,
		rtreeUpsert: make([]*sql.Stmt, n),
		rtreeDelete: make([]*sql.Stmt, n),
		rtreeQuery:  make([]*sql.Stmt, n),
		itemSelect:  make([]*sql.Stmt, n),
	}

	for i := 0; i < n; i++ {
		if err := c.prepareShard(i); err != nil {
			_ = base.Close()
			return nil, fmt.Errorf("spatialcache: preparing shard %d: %w", i, err)
		}
	}
	return c, nil
}

func (c *Cache[V]) prepareShard(i int) error {
	return c.base.Shard(i).WithTx(func(tx *sql.Tx) error {
		if !c.cfg.ReadOnly {
			if _, err := tx.Exec("CREATE VIRTUAL TABLE IF NOT EXISTS items_rtree USING rtree(id, min_x, max_x, min_y, max_y)"); err != nil {
				return fmt.Errorf("creating items_rtree: %w", errors.Join(lc.ErrStorageIO, err))
			}
			var err error
			c.rtreeUpsert[i], err = tx.Prepare("INSERT OR REPLACE INTO items_rtree (id, min_x, max_x, min_y, max_y) VALUES (?, ?, ?, ?, ?)")
			if err != nil {
				return fmt.Errorf("preparing rtree upsert: %w", errors.Join(lc.ErrStorageIO, err))
			}
			c.rtreeDelete[i], err = tx.Prepare("DELETE FROM items_rtree WHERE id = ?")
			if err != nil {
				return fmt.Errorf("preparing rtree delete: %w", errors.Join(lc.ErrStorageIO, err))
			}
		}
		var err error
		c.rtreeQuery[i], err = tx.Prepare("SELECT id FROM items_rtree WHERE max_x >= ? AND min_x <= ? AND max_y >= ? AND min_y <= ?")
		if err != nil {
			return fmt.Errorf("preparing rtree query: %w", errors.Join(lc.ErrStorageIO, err))
		}
		c.itemSelect[i], err = tx.Prepare("SELECT item FROM items WHERE id = ?")
		if err != nil {
			return fmt.Errorf("preparing item select: %w", errors.Join(lc.ErrStorageIO, err))
		}
		return nil
	})
}

func (c *Cache[V]) fromDriverValue(driverValue any) (V, error) {
	var zero V
	if c.cfg.DeserializeValue != nil {
		b, ok := driverValue.([]byte)
		if !ok {
			return zero, fmt.Errorf("spatialcache: custom value deserializer needs []byte, got %T: %w", driverValue, lc.ErrSerializerContract)
		}
		v, err := c.cfg.DeserializeValue(b)
		if err != nil {
			return zero, fmt.Errorf("spatialcache: deserializing value: %w", errors.Join(lc.ErrSerializerContract, err))
		}
		return v, nil
	}
	v, ok := driverValue.(V)
	if !ok {
		return zero, fmt.Errorf("spatialcache: value of driver type %T does not match V: %w", driverValue, lc.ErrSerializerContract)
	}
	return v, nil
}

// Set upserts id -> (value, bbox) into both the items table (via the base
// cache) and items_rtree, in that order — not atomically across the two
// (spec §9 disclaims cross-table atomicity as part of the cache's
// unjournaled, crash-unsafe non-goal).
func (c *Cache[V]) Set(id int64, value V, box BoundingBox) error {
	if err := box.validate(); err != nil {
		return err
	}
	if err := c.base.Set(id, value); err != nil {
		return err
	}
	idx, err := c.base.ShardIndex(id)
	if err != nil {
		return err
	}
	if _, err := c.rtreeUpsert[idx].Exec(id, box.MinX, box.MaxX, box.MinY, box.MaxY); err != nil {
		return fmt.Errorf("spatialcache: set: updating items_rtree: %w", errors.Join(lc.ErrStorageIO, err))
	}
	return nil
}

// Remove deletes id from both tables, returning (value, true, nil) if it
// was present, (zero, false, nil) otherwise.
func (c *Cache[V]) Remove(id int64) (V, bool, error) {
	value, ok, err := c.base.RemoveReturn(id)
	if err != nil {
		return value, false, err
	}
	idx, idxErr := c.base.ShardIndex(id)
	if idxErr != nil {
		return value, ok, idxErr
	}
	if _, err := c.rtreeDelete[idx].Exec(id); err != nil {
		return value, ok, fmt.Errorf("spatialcache: remove: deleting from items_rtree: %w", errors.Join(lc.ErrStorageIO, err))
	}
	return value, ok, nil
}

// Query yields every entry whose stored bbox intersects box, shard-index
// ascending — the lazy stream of spec §4.5. There are no false negatives;
// visit returning false stops the scan early.
func (c *Cache[V]) Query(box BoundingBox, visit func(Entry[V]) (bool, error)) error {
	return c.QueryContext(context.Background(), box, visit)
}

// QueryContext is Query with cancellation checked between shards and rows.
func (c *Cache[V]) QueryContext(ctx context.Context, box BoundingBox, visit func(Entry[V]) (bool, error)) error {
	if err := box.validate(); err != nil {
		return err
	}
	for i := 0; i < c.base.ShardCount(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		stop, err := c.queryShard(ctx, i, box, visit)
		if err != nil {
			return fmt.Errorf("spatialcache: query: shard %d: %w", i, err)
		}
		if stop {
			break
		}
	}
	return nil
}

func (c *Cache[V]) queryShard(ctx context.Context, i int, box BoundingBox, visit func(Entry[V]) (bool, error)) (bool, error) {
	stop := false
	err := c.base.Shard(i).WithTx(func(tx *sql.Tx) error {
		rows, err := c.rtreeQuery[i].QueryContext(ctx, box.MinX, box.MaxX, box.MinY, box.MaxY)
		if err != nil {
			return fmt.Errorf("rtree query: %w", errors.Join(lc.ErrStorageIO, err))
		}
		defer rows.Close()

		var ids []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return fmt.Errorf("scanning rtree row: %w", errors.Join(lc.ErrStorageIO, err))
			}
			ids = append(ids, id)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("rtree query: %w", errors.Join(lc.ErrStorageIO, err))
		}

		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			var driverValue any
			if err := c.itemSelect[i].QueryRowContext(ctx, id).Scan(&driverValue); err != nil {
				return fmt.Errorf("fetching item %d: %w", id, errors.Join(lc.ErrStorageIO, err))
			}
			v, err := c.fromDriverValue(driverValue)
			if err != nil {
				return err
			}
			cont, err := visit(Entry[V]{ID: id, Value: v})
			if err != nil {
				return err
			}
			if !cont {
				stop = true
				return nil
			}
		}
		return nil
	})
	return stop, err
}

// ShardQuery is one shard's lazy query stream, returned by
// QueryParallelStreams.
type ShardQuery[V any] func(visit func(Entry[V]) (bool, error)) error

// QueryParallelStreams returns one query stream per shard (spec §4.5's
// query_parallel), letting the caller fan out across them itself.
func (c *Cache[V]) QueryParallelStreams(box BoundingBox) []ShardQuery[V] {
	streams := make([]ShardQuery[V], c.base.ShardCount())
	for i := range streams {
		i := i
		streams[i] = func(visit func(Entry[V]) (bool, error)) error {
			_, err := c.queryShard(context.Background(), i, box, visit)
			return err
		}
	}
	return streams
}

// QueryParallel drains every shard's query stream concurrently via
// errgroup. visit is called from whichever shard's goroutine produced the
// entry, so it must be safe for concurrent use.
func (c *Cache[V]) QueryParallel(box BoundingBox, visit func(Entry[V]) (bool, error)) error {
	if err := box.validate(); err != nil {
		return err
	}
	g := new(errgroup.Group)
	for _, stream := range c.QueryParallelStreams(box) {
		stream := stream
		g.Go(func() error { return stream(visit) })
	}
	return g.Wait()
}

// Count, Contains, and Close delegate straight to the base cache: the
// rtree table's row count always matches the items table's by
// construction (every Set/Remove touches both), so there is nothing
// spatial-specific for these to do. Clear additionally empties
// items_rtree on every shard before clearing the base cache.

// Count sums every shard's item count.
func (c *Cache[V]) Count() (uint64, error) { return c.base.Count() }

// Contains reports whether id is present.
func (c *Cache[V]) Contains(id int64) (bool, error) { return c.base.Contains(id) }

// Clear empties every shard's items and items_rtree tables.
func (c *Cache[V]) Clear() error {
	if c.cfg.ReadOnly {
		return fmt.Errorf("spatialcache: clear on read-only cache: %w", lc.ErrNotSupported)
	}
	for i := 0; i < c.base.ShardCount(); i++ {
		if err := c.base.Shard(i).WithTx(func(tx *sql.Tx) error {
			_, err := tx.Exec("DELETE FROM items_rtree")
			return err
		}); err != nil {
			return fmt.Errorf("spatialcache: clear: shard %d: %w", i, errors.Join(lc.ErrStorageIO, err))
		}
	}
	return c.base.Clear()
}

// Close closes every underlying shard.
func (c *Cache[V]) Close() error { return c.base.Close() }

// ShardCount returns N, the number of shards.
func (c *Cache[V]) ShardCount() int { return c.base.ShardCount() }
