package wordutil

import "math/bits"

// WideMul64 returns the 128-bit product of a and b as (high, low).
func WideMul64(a, b uint64) (hi, lo uint64) {
	return bits.Mul64(a, b)
}

// WideMul32 returns the 64-bit product of a and b as (high, low), computed
// via a native 64-bit intermediate since Go has no uint32 wide-multiply
// intrinsic.
func WideMul32(a, b uint32) (hi, lo uint32) {
	p := uint64(a) * uint64(b)
	return uint32(p >> 32), uint32(p)
}
