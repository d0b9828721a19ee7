package largecollections

// MaxCount is the upper bound on the logical length of any collection in
// this module: 2^60, three orders of magnitude beyond what a signed 32-bit
// length permits. Every mutation that would push a collection's Count
// above MaxCount fails with ErrCapacityExceeded instead of succeeding.
const MaxCount uint64 = 1 << 60

// MaxItemLength is the per-blob upper bound, in bytes, on a serialized key
// or value: 1 GiB. Keys and values above this size are rejected with
// ErrInvalidArgument (keys) or ErrSerializerContract (serializer output).
const MaxItemLength = 1 << 30

// Serializer converts a value of type T into its wire representation. A
// conforming Serializer always returns a non-empty slice no longer than
// MaxItemLength for any valid x, and must round-trip through the paired
// Deserializer: Deserializer(Serializer(x)) == x.
type Serializer[T any] func(v T) ([]byte, error)

// Deserializer is the inverse of a Serializer. It must be total on every
// byte slice its paired Serializer can produce.
type Deserializer[T any] func(data []byte) (T, error)
