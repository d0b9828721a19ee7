package shardedcache

import (
	"fmt"

	lc "github.com/dreamware/largecollections"
	"github.com/dreamware/largecollections/diskcache"
)

// DefaultExtension is used when Config.Extension is left empty.
const DefaultExtension = "db"

// Config configures a Cache. See spec §4.4's configuration table.
type Config[K comparable, V any] struct {
	// BasePath and Extension together name each shard file:
	// "<BasePath>_<i>.<Extension>".
	BasePath  string
	Extension string

	// DegreeOfParallelism is N, the shard count, in [1, 255].
	DegreeOfParallelism int
	// MaxMemorySizeMB is the total page-cache budget, divided evenly
	// across shards.
	MaxMemorySizeMB int

	OverwriteExisting bool
	DeleteOnClose     bool
	ReadOnly          bool

	// KeyKind and ValueKind select the native column types. KeyKind must
	// be KindInteger, KindText, or KindBlob (never KindReal — spec §9's
	// intentional asymmetry). Set KeyKind/ValueKind to KindBlob and supply
	// SerializeKey/DeserializeKey or SerializeValue/DeserializeValue for
	// any K that isn't already int64, string, or []byte, or any V that
	// isn't already int64, string, []byte, or float64.
	KeyKind, ValueKind diskcache.ColumnKind

	SerializeKey     lc.Serializer[K]
	DeserializeKey   lc.Deserializer[K]
	SerializeValue   lc.Serializer[V]
	DeserializeValue lc.Deserializer[V]
}

func (c Config[K, V]) withDefaults() Config[K, V] {
	if c.Extension == "" {
		c.Extension = DefaultExtension
	}
	return c
}

func (c Config[K, V]) validate() error {
	if c.DegreeOfParallelism <= 0 || c.DegreeOfParallelism > 255 {
		return fmt.Errorf("shardedcache: degree_of_parallelism %d out of [1, 255]: %w", c.DegreeOfParallelism, lc.ErrInvalidConfiguration)
	}
	if c.ReadOnly && c.OverwriteExisting {
		return fmt.Errorf("shardedcache: read_only with overwrite_existing: %w", lc.ErrInvalidConfiguration)
	}
	if c.ReadOnly && c.DeleteOnClose {
		return fmt.Errorf("shardedcache: read_only with delete_on_close: %w", lc.ErrInvalidConfiguration)
	}
	if c.KeyKind == diskcache.KindReal {
		return fmt.Errorf("shardedcache: real keys are not supported: %w", lc.ErrInvalidConfiguration)
	}
	return nil
}

// shardPath names one shard's file per spec §6.1: "<base>_<shard_index>.<ext>".
func shardPath(basePath, ext string, i int) string {
	return fmt.Sprintf("%s_%d.%s", basePath, i, ext)
}
