package shardedcache

import (
	"encoding/binary"
	"unicode/utf16"
)

// foldXOR XORs every byte of data into a single byte.
func foldXOR(data []byte) byte {
	var b byte
	for _, x := range data {
		b ^= x
	}
	return b
}

// nibbleFold additionally XORs b's high nibble into its low nibble when n
// <= 16, per spec §4.4. For n > 16 it is a no-op: the mapping folds to a
// full byte and relies on mod n for the residue, which is why spec §9
// flags it as brittle (at most 256 distinct residues) but correct for the
// supported range n in [1, 255].
func nibbleFold(b byte, n int) byte {
	if n <= 16 {
		return (b & 0x0F) ^ (b >> 4)
	}
	return b
}

func shardFromByte(b byte, n int) int {
	if n <= 1 {
		return 0
	}
	return int(b) % n
}

// shardForInt64 implements spec §4.4's integer-key rule: fold the key's 8
// bytes by XOR into a single byte, nibble-fold it when n <= 16, then mod n.
func shardForInt64(k int64, n int) int {
	if n <= 1 {
		return 0
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(k))
	return shardFromByte(nibbleFold(foldXOR(buf[:]), n), n)
}

// shardForString implements spec §4.4's string-key rule: each character is
// treated as two bytes (low byte, then high byte — UTF-16 code units, as
// in the source design's native string representation), XORed together,
// nibble-folded, and modded by n.
func shardForString(s string, n int) int {
	if n <= 1 {
		return 0
	}
	units := utf16.Encode([]rune(s))
	buf := make([]byte, 0, len(units)*2)
	for _, u := range units {
		buf = append(buf, byte(u), byte(u>>8))
	}
	return shardFromByte(nibbleFold(foldXOR(buf), n), n)
}

// shardForBytes implements spec §4.4's blob-key rule: XOR every byte
// together, nibble-fold, mod n.
func shardForBytes(data []byte, n int) int {
	if n <= 1 {
		return 0
	}
	return shardFromByte(nibbleFold(foldXOR(data), n), n)
}

// shardForDriverKey dispatches on the native driver representation of a
// key — the same any produced by toDriverKey — to the matching rule above.
// Arbitrary T reaches this through its serializer, which produces a blob
// and therefore always takes the shardForBytes path (spec §4.4: "apply
// the caller-supplied serializer to produce a blob, then use the blob
// rule").
func shardForDriverKey(key any, n int) int {
	switch v := key.(type) {
	case int64:
		return shardForInt64(v, n)
	case string:
		return shardForString(v, n)
	case []byte:
		return shardForBytes(v, n)
	default:
		return 0
	}
}
