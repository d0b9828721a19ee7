package shardedcache

import "testing"

func TestShardForInt64SingleShard(t *testing.T) {
	for _, k := range []int64{0, 1, -1, 1 << 40} {
		if got := shardForInt64(k, 1); got != 0 {
			t.Errorf("shardForInt64(%d, 1) = %d, want 0", k, got)
		}
	}
}

func TestNibbleFoldBoundary(t *testing.T) {
	// n == 16 folds the high nibble into the low nibble.
	if got, want := nibbleFold(0xAB, 16), byte(0xAB&0x0F)^(0xAB>>4); got != want {
		t.Errorf("nibbleFold(0xAB, 16) = %#x, want %#x", got, want)
	}
	// n == 17 is past the boundary: the byte passes through untouched.
	if got := nibbleFold(0xAB, 17); got != 0xAB {
		t.Errorf("nibbleFold(0xAB, 17) = %#x, want 0xAB (no-op)", got)
	}
}

func TestShardForInt64Deterministic(t *testing.T) {
	for _, n := range []int{2, 4, 16, 17, 255} {
		a := shardForInt64(12345, n)
		b := shardForInt64(12345, n)
		if a != b {
			t.Fatalf("shardForInt64 not deterministic for n=%d: %d != %d", n, a, b)
		}
		if a < 0 || a >= n {
			t.Fatalf("shardForInt64(12345, %d) = %d out of range", n, a)
		}
	}
}

func TestShardForStringUsesUTF16CodeUnits(t *testing.T) {
	// "a" is a single UTF-16 code unit 0x0061: low byte 0x61, high byte 0x00.
	got := foldXOR([]byte{0x61, 0x00})
	want := byte(0x61)
	if got != want {
		t.Fatalf("foldXOR low/high byte of 'a' = %#x, want %#x", got, want)
	}
	idx := shardForString("a", 4)
	if idx < 0 || idx >= 4 {
		t.Fatalf("shardForString(\"a\", 4) = %d out of range", idx)
	}
}

func TestShardForBytesDeterministic(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	a := shardForBytes(data, 7)
	b := shardForBytes(data, 7)
	if a != b {
		t.Fatalf("shardForBytes not deterministic: %d != %d", a, b)
	}
}

func TestShardForDriverKeyDispatch(t *testing.T) {
	if shardForDriverKey(int64(5), 4) != shardForInt64(5, 4) {
		t.Fatal("shardForDriverKey int64 dispatch mismatch")
	}
	if shardForDriverKey("hello", 4) != shardForString("hello", 4) {
		t.Fatal("shardForDriverKey string dispatch mismatch")
	}
	data := []byte{9, 9, 9}
	if shardForDriverKey(data, 4) != shardForBytes(data, 4) {
		t.Fatal("shardForDriverKey []byte dispatch mismatch")
	}
}
