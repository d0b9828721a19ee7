package largecollections

import "errors"

// Sentinel errors shared across chunked, diskcache, shardedcache,
// spatialcache and view. Component packages wrap these with fmt.Errorf's
// %w verb so callers can classify failures with errors.Is regardless of
// which package produced them.
var (
	// ErrOutOfRange is returned when an index, or an (offset, count) pair,
	// falls outside the valid domain of the collection it was given to.
	ErrOutOfRange = errors.New("largecollections: index out of range")

	// ErrCapacityExceeded is returned when a mutation would grow a
	// collection's logical length past MaxCount.
	ErrCapacityExceeded = errors.New("largecollections: capacity exceeded")

	// ErrInvalidArgument is returned for a null-but-required input,
	// mismatched parallel slices, a zero-length key, a length exceeding
	// MaxItemLength, or an invalid bounding box.
	ErrInvalidArgument = errors.New("largecollections: invalid argument")

	// ErrNotFound is returned by a strict "get" on a missing dictionary
	// key. The "try" form of the same operation returns (zero, false, nil)
	// instead of this error.
	ErrNotFound = errors.New("largecollections: key not found")

	// ErrNotSupported is returned when a mutation is attempted against a
	// read-only cache, or an unsupported operation is attempted against a
	// stream view.
	ErrNotSupported = errors.New("largecollections: operation not supported")

	// ErrInvalidConfiguration is returned by a constructor when its Config
	// is internally inconsistent (e.g. ReadOnly with OverwriteExisting, or
	// DegreeOfParallelism == 0).
	ErrInvalidConfiguration = errors.New("largecollections: invalid configuration")

	// ErrStorageIO is returned when the underlying SQL engine or file
	// system fails in a way the caller cannot recover from locally.
	ErrStorageIO = errors.New("largecollections: storage I/O failure")

	// ErrSerializerContract is returned when a user-supplied serializer
	// returns an empty byte slice, a slice longer than MaxItemLength, or a
	// deserializer returns an error on bytes the serializer itself
	// produced.
	ErrSerializerContract = errors.New("largecollections: serializer contract violation")
)
