// Package wordutil provides the fixed-width word operations shared by the
// threefry and philox pseudo-random functions: rotation, wide multiplication,
// and bit-width introspection. None of it is specific to either PRF; both
// import it for the primitives their round functions are built from.
package wordutil

import "math/bits"

// Word is the set of unsigned integer types the counter-based engine and its
// PRFs operate on. It is deliberately not underlying-type (~) constrained:
// ToU32/ToU64/FromU32/FromU64 and bitSize below dispatch on the exact dynamic
// type of a Word value, which only ever matches uint32 or uint64 themselves,
// never a defined type sharing one of those underlying types. Widening the
// constraint back to ~uint32 | ~uint64 without rewriting those conversions
// would make them panic for any named word type.
type Word interface {
	uint32 | uint64
}

// BitsOf returns the bit width of W: 32 or 64.
func BitsOf[W Word]() int {
	var z W
	return bitSize(z)
}

func bitSize(v any) int {
	switch v.(type) {
	case uint32:
		return 32
	case uint64:
		return 64
	default:
		panic("wordutil: unsupported word type")
	}
}

// RotateLeft rotates x left by k bits within its own width, matching
// math/bits.RotateLeft32/64 for the two concrete widths this package
// supports. k may be any non-negative int; it is reduced modulo the word
// width.
func RotateLeft[W Word](x W, k int) W {
	switch v := any(x).(type) {
	case uint32:
		return any(bits.RotateLeft32(v, k)).(W)
	case uint64:
		return any(bits.RotateLeft64(v, k)).(W)
	default:
		panic("wordutil: unsupported word type")
	}
}
