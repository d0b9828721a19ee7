package shardedcache

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	lc "github.com/dreamware/largecollections"
	"github.com/dreamware/largecollections/diskcache"
)

// Entry is one (key, value) pair, used by Scan, ParallelScan, and the
// bulk mutators.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// Cache is a Sharded Disk Cache: N diskcache.Shard files addressed by a
// fixed, deterministic hash of the key (spec §3.4, §4.4).
type Cache[K comparable, V any] struct {
	cfg    Config[K, V]
	shards []*diskcache.Shard
}

// Open constructs or opens a Cache per cfg, opening all N shards. If any
// shard fails to open, the shards already opened are closed before Open
// returns the error.
func Open[K comparable, V any](cfg Config[K, V]) (*Cache[K, V], error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	n := cfg.DegreeOfParallelism
	perShardCacheMB := cfg.MaxMemorySizeMB / n
	shards := make([]*diskcache.Shard, 0, n)

	for i := 0; i < n; i++ {
		shardCfg := diskcache.Config{
			Path:           shardPath(cfg.BasePath, cfg.Extension, i),
			Overwrite:      cfg.OverwriteExisting,
			ReadOnly:       cfg.ReadOnly,
			DeleteOnClose:  cfg.DeleteOnClose,
			CacheSizePages: perShardCacheMB * 1024 * 1024 / diskcache.DefaultPageSize,
			KeyKind:        cfg.KeyKind,
			ValueKind:      cfg.ValueKind,
		}
		s, err := diskcache.Open(shardCfg)
		if err != nil {
			for _, opened := range shards {
				_ = opened.Close()
			}
			return nil, fmt.Errorf("shardedcache: opening shard %d: %w", i, err)
		}
		shards = append(shards, s)
	}

	return &Cache[K, V]{cfg: cfg, shards: shards}, nil
}

// ShardIndex returns the shard a given key is routed to, per the
// deterministic hash in spec §4.4. It is exposed so callers can build
// correctly pre-partitioned batches for SetManyPartitioned /
// RemoveManyPartitioned.
func (c *Cache[K, V]) ShardIndex(key K) (int, error) {
	n := len(c.shards)
	if n == 1 {
		return 0, nil
	}
	driverKey, err := c.toDriverKey(key)
	if err != nil {
		return 0, err
	}
	return shardForDriverKey(driverKey, n), nil
}

func (c *Cache[K, V]) toDriverKey(key K) (any, error) {
	if c.cfg.SerializeKey != nil {
		b, err := c.cfg.SerializeKey(key)
		if err != nil {
			return nil, fmt.Errorf("shardedcache: serializing key: %w", errors.Join(lc.ErrSerializerContract, err))
		}
		if len(b) == 0 || len(b) > lc.MaxItemLength {
			return nil, fmt.Errorf("shardedcache: serialized key length %d out of [1, %d]: %w", len(b), lc.MaxItemLength, lc.ErrSerializerContract)
		}
		return b, nil
	}
	switch v := any(key).(type) {
	case int64:
		return v, nil
	case string:
		return v, nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("shardedcache: no native encoding for key type %T and no SerializeKey provided: %w", key, lc.ErrInvalidConfiguration)
	}
}

func (c *Cache[K, V]) fromDriverKey(driverKey any) (K, error) {
	var zero K
	if c.cfg.DeserializeKey != nil {
		b, ok := driverKey.([]byte)
		if !ok {
			return zero, fmt.Errorf("shardedcache: custom key deserializer needs []byte, got %T: %w", driverKey, lc.ErrSerializerContract)
		}
		k, err := c.cfg.DeserializeKey(b)
		if err != nil {
			return zero, fmt.Errorf("shardedcache: deserializing key: %w", errors.Join(lc.ErrSerializerContract, err))
		}
		return k, nil
	}
	k, ok := driverKey.(K)
	if !ok {
		return zero, fmt.Errorf("shardedcache: key of driver type %T does not match K: %w", driverKey, lc.ErrSerializerContract)
	}
	return k, nil
}

func (c *Cache[K, V]) toDriverValue(value V) (any, error) {
	if c.cfg.SerializeValue != nil {
		b, err := c.cfg.SerializeValue(value)
		if err != nil {
			return nil, fmt.Errorf("shardedcache: serializing value: %w", errors.Join(lc.ErrSerializerContract, err))
		}
		if len(b) == 0 || len(b) > lc.MaxItemLength {
			return nil, fmt.Errorf("shardedcache: serialized value length %d out of [1, %d]: %w", len(b), lc.MaxItemLength, lc.ErrSerializerContract)
		}
		return b, nil
	}
	switch v := any(value).(type) {
	case int64, string, []byte, float64:
		return v, nil
	default:
		return nil, fmt.Errorf("shardedcache: no native encoding for value type %T and no SerializeValue provided: %w", value, lc.ErrInvalidConfiguration)
	}
}

func (c *Cache[K, V]) fromDriverValue(driverValue any) (V, error) {
	var zero V
	if c.cfg.DeserializeValue != nil {
		b, ok := driverValue.([]byte)
		if !ok {
			return zero, fmt.Errorf("shardedcache: custom value deserializer needs []byte, got %T: %w", driverValue, lc.ErrSerializerContract)
		}
		v, err := c.cfg.DeserializeValue(b)
		if err != nil {
			return zero, fmt.Errorf("shardedcache: deserializing value: %w", errors.Join(lc.ErrSerializerContract, err))
		}
		return v, nil
	}
	v, ok := driverValue.(V)
	if !ok {
		return zero, fmt.Errorf("shardedcache: value of driver type %T does not match V: %w", driverValue, lc.ErrSerializerContract)
	}
	return v, nil
}

// Set upserts key -> value, routing to the one shard key maps to.
func (c *Cache[K, V]) Set(key K, value V) error {
	idx, err := c.ShardIndex(key)
	if err != nil {
		return err
	}
	driverKey, err := c.toDriverKey(key)
	if err != nil {
		return err
	}
	driverValue, err := c.toDriverValue(value)
	if err != nil {
		return err
	}
	return c.shards[idx].Set(driverKey, driverValue)
}

// TryGet returns (value, true, nil) if key is present, (zero, false, nil)
// if absent.
func (c *Cache[K, V]) TryGet(key K) (V, bool, error) {
	var zero V
	idx, err := c.ShardIndex(key)
	if err != nil {
		return zero, false, err
	}
	driverKey, err := c.toDriverKey(key)
	if err != nil {
		return zero, false, err
	}
	driverValue, ok, err := c.shards[idx].TryGet(driverKey)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := c.fromDriverValue(driverValue)
	return v, err == nil, err
}

// Get returns value for key, or lc.ErrNotFound if key is absent — the
// strict counterpart to TryGet (spec §7's NotFound kind).
func (c *Cache[K, V]) Get(key K) (V, error) {
	v, ok, err := c.TryGet(key)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, fmt.Errorf("shardedcache: get: %w", lc.ErrNotFound)
	}
	return v, nil
}

// Contains reports whether key is present.
func (c *Cache[K, V]) Contains(key K) (bool, error) {
	_, ok, err := c.TryGet(key)
	return ok, err
}

// Remove deletes key if present; it is a no-op, not an error, if key was
// already absent.
func (c *Cache[K, V]) Remove(key K) error {
	_, _, err := c.RemoveReturn(key)
	return err
}

// RemoveReturn deletes key, returning (value, true, nil) if it was
// present, (zero, false, nil) otherwise.
func (c *Cache[K, V]) RemoveReturn(key K) (V, bool, error) {
	var zero V
	idx, err := c.ShardIndex(key)
	if err != nil {
		return zero, false, err
	}
	driverKey, err := c.toDriverKey(key)
	if err != nil {
		return zero, false, err
	}
	driverValue, ok, err := c.shards[idx].Remove(driverKey)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := c.fromDriverValue(driverValue)
	return v, err == nil, err
}

// Count sums every shard's count, acquiring each shard's lock serially —
// never all at once (spec §4.4, §5). The result is a snapshot that may not
// reflect any single atomic moment across shards.
func (c *Cache[K, V]) Count() (uint64, error) {
	var total uint64
	for i, s := range c.shards {
		n, err := s.Count()
		if err != nil {
			return total, fmt.Errorf("shardedcache: count: shard %d: %w", i, err)
		}
		total += n
	}
	return total, nil
}

// Clear empties every shard, each under its own lock, with no global
// atomicity: a failure on shard s may leave shards < s cleared and shards
// >= s untouched (spec §7).
func (c *Cache[K, V]) Clear() error {
	for i, s := range c.shards {
		if err := s.Clear(); err != nil {
			return fmt.Errorf("shardedcache: clear: shard %d: %w", i, err)
		}
	}
	return nil
}

// Scan yields a lazy concatenation of every shard's scan, shard-index
// ascending, shard-internal order as the engine's index order (spec
// §4.4). visit returning false stops the scan early, skipping remaining
// shards.
func (c *Cache[K, V]) Scan(visit func(Entry[K, V]) (bool, error)) error {
	return c.ScanContext(context.Background(), visit)
}

// ScanContext is Scan with cancellation checked between rows and shards.
func (c *Cache[K, V]) ScanContext(ctx context.Context, visit func(Entry[K, V]) (bool, error)) error {
	for i, s := range c.shards {
		if err := ctx.Err(); err != nil {
			return err
		}
		stop := false
		err := s.ScanContext(ctx, func(e diskcache.Entry) (bool, error) {
			k, err := c.fromDriverKey(e.Key)
			if err != nil {
				return false, err
			}
			v, err := c.fromDriverValue(e.Item)
			if err != nil {
				return false, err
			}
			cont, err := visit(Entry[K, V]{Key: k, Value: v})
			if !cont {
				stop = true
			}
			return cont, err
		})
		if err != nil {
			return fmt.Errorf("shardedcache: scan: shard %d: %w", i, err)
		}
		if stop {
			break
		}
	}
	return nil
}

// ShardScan is one shard's lazy scan stream, returned by
// ParallelScanStreams so a caller can fan out across goroutines itself.
type ShardScan[K comparable, V any] func(visit func(Entry[K, V]) (bool, error)) error

// ParallelScanStreams returns one lazy stream per shard (spec §4.4's
// parallel_scan), letting the caller decide how to fan out across them.
func (c *Cache[K, V]) ParallelScanStreams() []ShardScan[K, V] {
	streams := make([]ShardScan[K, V], len(c.shards))
	for i, s := range c.shards {
		s := s
		streams[i] = func(visit func(Entry[K, V]) (bool, error)) error {
			return s.Scan(func(e diskcache.Entry) (bool, error) {
				k, err := c.fromDriverKey(e.Key)
				if err != nil {
					return false, err
				}
				v, err := c.fromDriverValue(e.Item)
				if err != nil {
					return false, err
				}
				return visit(Entry[K, V]{Key: k, Value: v})
			})
		}
	}
	return streams
}

// ParallelScan drains every shard's stream concurrently via errgroup,
// calling visit from whichever shard's goroutine produced the entry — so
// visit must be safe for concurrent use.
func (c *Cache[K, V]) ParallelScan(visit func(Entry[K, V]) (bool, error)) error {
	g := new(errgroup.Group)
	for _, stream := range c.ParallelScanStreams() {
		stream := stream
		g.Go(func() error { return stream(visit) })
	}
	return g.Wait()
}

// SetMany applies each pair sequentially, delegating to its shard in turn.
// A failure mid-sequence leaves already-applied items applied (spec §7).
func (c *Cache[K, V]) SetMany(pairs []Entry[K, V]) error {
	for i, p := range pairs {
		if err := c.Set(p.Key, p.Value); err != nil {
			return fmt.Errorf("shardedcache: set_many: item %d: %w", i, err)
		}
	}
	return nil
}

// SetManyPartitioned accepts one slice per shard and drains each partition
// concurrently via errgroup, one goroutine per shard. Callers must
// pre-partition with ShardIndex; partitions are not re-routed.
func (c *Cache[K, V]) SetManyPartitioned(partitions [][]Entry[K, V]) error {
	if len(partitions) != len(c.shards) {
		return fmt.Errorf("shardedcache: set_many_partitioned: got %d partitions, want %d: %w", len(partitions), len(c.shards), lc.ErrInvalidArgument)
	}
	g := new(errgroup.Group)
	for i, partition := range partitions {
		i, partition := i, partition
		g.Go(func() error {
			for _, p := range partition {
				driverKey, err := c.toDriverKey(p.Key)
				if err != nil {
					return err
				}
				driverValue, err := c.toDriverValue(p.Value)
				if err != nil {
					return err
				}
				if err := c.shards[i].Set(driverKey, driverValue); err != nil {
					return fmt.Errorf("shard %d: %w", i, err)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// RemoveMany removes each key sequentially.
func (c *Cache[K, V]) RemoveMany(keys []K) error {
	for i, k := range keys {
		if err := c.Remove(k); err != nil {
			return fmt.Errorf("shardedcache: remove_many: item %d: %w", i, err)
		}
	}
	return nil
}

// RemoveManyPartitioned accepts one slice of keys per shard and drains
// each partition concurrently. Callers must pre-partition with
// ShardIndex.
func (c *Cache[K, V]) RemoveManyPartitioned(partitions [][]K) error {
	if len(partitions) != len(c.shards) {
		return fmt.Errorf("shardedcache: remove_many_partitioned: got %d partitions, want %d: %w", len(partitions), len(c.shards), lc.ErrInvalidArgument)
	}
	g := new(errgroup.Group)
	for i, partition := range partitions {
		i, partition := i, partition
		g.Go(func() error {
			for _, k := range partition {
				driverKey, err := c.toDriverKey(k)
				if err != nil {
					return err
				}
				if _, _, err := c.shards[i].Remove(driverKey); err != nil {
					return fmt.Errorf("shard %d: %w", i, err)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// Close commits (or, for a deleted/read-only shard, skips committing) and
// closes every shard, joining any errors encountered.
func (c *Cache[K, V]) Close() error {
	var errs []error
	for _, s := range c.shards {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stats aggregates every shard's cumulative operation counters, plus the
// per-shard breakdown, mirroring the shard-level Stats snapshot one level
// up.
type Stats struct {
	Gets, Sets, Removes, Scans uint64
	PerShard                   []diskcache.Stats
}

// String renders a human-readable summary of the aggregate counters.
func (s Stats) String() string {
	return fmt.Sprintf("%d shard(s): %d gets, %d sets, %d removes, %d scan(s)",
		len(s.PerShard), s.Gets, s.Sets, s.Removes, s.Scans)
}

// Stats returns a snapshot of every shard's cumulative operation counters,
// summed, plus the per-shard breakdown (spec-adjacent supplement mirroring
// Shard.Stats one level up).
func (c *Cache[K, V]) Stats() Stats {
	per := make([]diskcache.Stats, len(c.shards))
	var agg Stats
	for i, s := range c.shards {
		st := s.Stats()
		per[i] = st
		agg.Gets += st.Gets
		agg.Sets += st.Sets
		agg.Removes += st.Removes
		agg.Scans += st.Scans
	}
	agg.PerShard = per
	return agg
}

// ShardCount returns N, the number of shards this cache was opened with.
func (c *Cache[K, V]) ShardCount() int { return len(c.shards) }

// Shard exposes the underlying diskcache.Shard for shard i, for packages
// built on top of Cache (spatialcache augments each shard with an
// additional spatial-index table).
func (c *Cache[K, V]) Shard(i int) *diskcache.Shard { return c.shards[i] }
