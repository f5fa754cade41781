package wordutil

import (
	"math/bits"
	"testing"
)

func TestBitsOf(t *testing.T) {
	if got := BitsOf[uint32](); got != 32 {
		t.Fatalf("BitsOf[uint32]() = %d, want 32", got)
	}
	if got := BitsOf[uint64](); got != 64 {
		t.Fatalf("BitsOf[uint64]() = %d, want 64", got)
	}
}

func TestRotateLeftMatchesStdlib(t *testing.T) {
	for _, k := range []int{0, 1, 7, 31, 32, 63} {
		if got, want := RotateLeft(uint32(0x9e3779b9), k), bits.RotateLeft32(0x9e3779b9, k); got != want {
			t.Fatalf("RotateLeft(uint32, %d) = %#x, want %#x", k, got, want)
		}
		if got, want := RotateLeft(uint64(0x9e3779b97f4a7c15), k), bits.RotateLeft64(0x9e3779b97f4a7c15, k); got != want {
			t.Fatalf("RotateLeft(uint64, %d) = %#x, want %#x", k, got, want)
		}
	}
}

func TestWideMul64KnownProduct(t *testing.T) {
	hi, lo := WideMul64(^uint64(0), 2)
	if hi != 1 || lo != ^uint64(0)-1 {
		t.Fatalf("WideMul64(maxuint64, 2) = (%#x, %#x)", hi, lo)
	}
}

func TestWideMul32KnownProduct(t *testing.T) {
	hi, lo := WideMul32(^uint32(0), 2)
	if hi != 1 || lo != ^uint32(0)-1 {
		t.Fatalf("WideMul32(maxuint32, 2) = (%#x, %#x)", hi, lo)
	}
}

func TestWideMul32MatchesWideMul64(t *testing.T) {
	a, b := uint32(0xD2511F53), uint32(0xdeadbeef)
	hi, lo := WideMul32(a, b)
	full := uint64(a) * uint64(b)
	if uint64(hi)<<32|uint64(lo) != full {
		t.Fatalf("WideMul32 mismatch: got %#x:%#x, want %#x", hi, lo, full)
	}
}
