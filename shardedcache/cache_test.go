package shardedcache_test

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	lc "github.com/dreamware/largecollections"
	"github.com/dreamware/largecollections/diskcache"
	"github.com/dreamware/largecollections/shardedcache"
)

func openTestCache(t *testing.T, n int) *shardedcache.Cache[int64, string] {
	t.Helper()
	cfg := shardedcache.Config[int64, string]{
		BasePath:            filepath.Join(t.TempDir(), "t"),
		Extension:           "db",
		DegreeOfParallelism: n,
		MaxMemorySizeMB:     8,
		OverwriteExisting:   true,
		KeyKind:             diskcache.KindInteger,
		ValueKind:           diskcache.KindText,
	}
	c, err := shardedcache.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSetCountTryGetRemove(t *testing.T) {
	c := openTestCache(t, 4)

	for i := int64(1); i <= 100; i++ {
		require.NoError(t, c.Set(i, "v"))
	}

	n, err := c.Count()
	require.NoError(t, err)
	require.EqualValues(t, 100, n)

	v, ok, err := c.TryGet(42)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", v)

	require.NoError(t, c.Remove(42))

	n, err = c.Count()
	require.NoError(t, err)
	require.EqualValues(t, 99, n)

	_, ok, err = c.TryGet(42)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	c := openTestCache(t, 2)
	_, err := c.Get(7)
	require.ErrorIs(t, err, lc.ErrNotFound)
}

func TestScanYieldsEveryEntryAcrossShards(t *testing.T) {
	c := openTestCache(t, 4)
	for i := int64(0); i < 20; i++ {
		require.NoError(t, c.Set(i, "v"))
	}

	seen := map[int64]bool{}
	err := c.Scan(func(e shardedcache.Entry[int64, string]) (bool, error) {
		seen[e.Key] = true
		return true, nil
	})
	require.NoError(t, err)
	require.Len(t, seen, 20)
}

func TestParallelScanYieldsEveryEntry(t *testing.T) {
	c := openTestCache(t, 4)
	for i := int64(0); i < 40; i++ {
		require.NoError(t, c.Set(i, "v"))
	}

	var mu lockedSet
	mu.m = map[int64]bool{}
	err := c.ParallelScan(func(e shardedcache.Entry[int64, string]) (bool, error) {
		mu.add(e.Key)
		return true, nil
	})
	require.NoError(t, err)
	require.Len(t, mu.m, 40)
}

func TestClearEmptiesAllShards(t *testing.T) {
	c := openTestCache(t, 3)
	for i := int64(0); i < 10; i++ {
		require.NoError(t, c.Set(i, "v"))
	}
	require.NoError(t, c.Clear())

	n, err := c.Count()
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
}

func TestStatsAggregatesAcrossShards(t *testing.T) {
	c := openTestCache(t, 3)
	for i := int64(0); i < 6; i++ {
		require.NoError(t, c.Set(i, "v"))
	}
	for i := int64(0); i < 6; i++ {
		_, _, _ = c.TryGet(i)
	}

	stats := c.Stats()
	require.EqualValues(t, 6, stats.Sets)
	require.EqualValues(t, 6, stats.Gets)
	require.Len(t, stats.PerShard, 3)
}

func TestShardIndexIsDeterministic(t *testing.T) {
	c := openTestCache(t, 8)
	a, err := c.ShardIndex(123)
	require.NoError(t, err)
	b, err := c.ShardIndex(123)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestDegreeOfParallelismOutOfRangeRejected(t *testing.T) {
	_, err := shardedcache.Open(shardedcache.Config[int64, string]{
		BasePath:            filepath.Join(t.TempDir(), "t"),
		DegreeOfParallelism: 0,
		KeyKind:             diskcache.KindInteger,
		ValueKind:           diskcache.KindText,
	})
	require.ErrorIs(t, err, lc.ErrInvalidConfiguration)
}

func TestRealKeyKindRejected(t *testing.T) {
	_, err := shardedcache.Open(shardedcache.Config[int64, string]{
		BasePath:            filepath.Join(t.TempDir(), "t"),
		DegreeOfParallelism: 2,
		KeyKind:             diskcache.KindReal,
		ValueKind:           diskcache.KindText,
	})
	require.ErrorIs(t, err, lc.ErrInvalidConfiguration)
}

// lockedSet is a tiny concurrency-safe set used only to observe
// ParallelScan's visit callback being invoked from multiple goroutines.
type lockedSet struct {
	mu sync.Mutex
	m  map[int64]bool
}

func (s *lockedSet) add(k int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[k] = true
}
