package spatialcache_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	lc "github.com/dreamware/largecollections"
	"github.com/dreamware/largecollections/diskcache"
	"github.com/dreamware/largecollections/spatialcache"
)

func openTestCache(t *testing.T, n int) *spatialcache.Cache[string] {
	t.Helper()
	cfg := spatialcache.Config[string]{
		BasePath:            filepath.Join(t.TempDir(), "s"),
		Extension:           "db",
		DegreeOfParallelism: n,
		MaxMemorySizeMB:     8,
		OverwriteExisting:   true,
		ValueKind:           diskcache.KindText,
	}
	c, err := spatialcache.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestQueryYieldsIntersectingEntries(t *testing.T) {
	c := openTestCache(t, 2)

	require.NoError(t, c.Set(1, "x", spatialcache.BoundingBox{MinX: 0, MaxX: 1, MinY: 0, MaxY: 1}))
	require.NoError(t, c.Set(2, "y", spatialcache.BoundingBox{MinX: 10, MaxX: 11, MinY: 10, MaxY: 11}))
	require.NoError(t, c.Set(3, "z", spatialcache.BoundingBox{MinX: 0.5, MaxX: 0.8, MinY: 0.5, MaxY: 0.8}))

	seen := map[int64]bool{}
	err := c.Query(spatialcache.BoundingBox{MinX: 0, MaxX: 2, MinY: 0, MaxY: 2}, func(e spatialcache.Entry[string]) (bool, error) {
		seen[e.ID] = true
		return true, nil
	})
	require.NoError(t, err)
	require.Equal(t, map[int64]bool{1: true, 3: true}, seen)

	seen = map[int64]bool{}
	err = c.Query(spatialcache.BoundingBox{MinX: 5, MaxX: 6, MinY: 5, MaxY: 6}, func(e spatialcache.Entry[string]) (bool, error) {
		seen[e.ID] = true
		return true, nil
	})
	require.NoError(t, err)
	require.Empty(t, seen)
}

func TestRemoveDeletesFromBothTables(t *testing.T) {
	c := openTestCache(t, 1)
	require.NoError(t, c.Set(1, "x", spatialcache.BoundingBox{MinX: 0, MaxX: 1, MinY: 0, MaxY: 1}))

	v, ok, err := c.Remove(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "x", v)

	n, err := c.Count()
	require.NoError(t, err)
	require.EqualValues(t, 0, n)

	var hits int
	err = c.Query(spatialcache.BoundingBox{MinX: -100, MaxX: 100, MinY: -100, MaxY: 100}, func(e spatialcache.Entry[string]) (bool, error) {
		hits++
		return true, nil
	})
	require.NoError(t, err)
	require.Zero(t, hits)
}

func TestInvalidBoundingBoxRejected(t *testing.T) {
	c := openTestCache(t, 1)
	err := c.Set(1, "x", spatialcache.BoundingBox{MinX: 5, MaxX: 1, MinY: 0, MaxY: 1})
	require.ErrorIs(t, err, lc.ErrInvalidArgument)
}

func TestQueryParallelYieldsEveryIntersectingEntry(t *testing.T) {
	c := openTestCache(t, 4)
	for i := int64(0); i < 20; i++ {
		require.NoError(t, c.Set(i, "v", spatialcache.BoundingBox{MinX: float64(i), MaxX: float64(i) + 1, MinY: 0, MaxY: 1}))
	}

	seen := make(chan int64, 20)
	err := c.QueryParallel(spatialcache.BoundingBox{MinX: -1, MaxX: 100, MinY: -1, MaxY: 2}, func(e spatialcache.Entry[string]) (bool, error) {
		seen <- e.ID
		return true, nil
	})
	require.NoError(t, err)
	close(seen)

	count := 0
	for range seen {
		count++
	}
	require.Equal(t, 20, count)
}

func TestClearEmptiesBothTables(t *testing.T) {
	c := openTestCache(t, 2)
	require.NoError(t, c.Set(1, "x", spatialcache.BoundingBox{MinX: 0, MaxX: 1, MinY: 0, MaxY: 1}))
	require.NoError(t, c.Clear())

	n, err := c.Count()
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
}
