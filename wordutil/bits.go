package wordutil

import "errors"

// ErrUnsupportedWord is returned by code that type-switches on a Word type
// parameter and encounters a type outside {uint32, uint64}.
var ErrUnsupportedWord = errors.New("wordutil: unsupported word type")

// CeilLog2 returns ceil(log2(n)) for n > 0.
func CeilLog2(n int) int {
	if n <= 1 {
		return 0
	}
	bitLen := 0
	v := n - 1
	for v > 0 {
		bitLen++
		v >>= 1
	}
	return bitLen
}

// TopBitsMask returns a W-sized mask with the top n bits set, given the full
// bit width of W. Used to isolate/validate the reserved high bits of a key or
// base-counter word.
func TopBitsMask[W Word](n, width int) W {
	if n <= 0 {
		return 0
	}
	if n >= width {
		return ^W(0)
	}
	return ^W(0) << (width - n)
}

// ToU32 and ToU64 convert a slice of a generic Word type to its concrete
// backing slice, and the From variants convert back. They exist so PRF round
// functions can be written once per concrete width (uint32 or uint64) and
// reused across both New2/New4 instantiations without duplicating the round
// logic.
func ToU32[W Word](in []W) []uint32 {
	out := make([]uint32, len(in))
	for i, v := range in {
		out[i] = any(v).(uint32)
	}
	return out
}

func ToU64[W Word](in []W) []uint64 {
	out := make([]uint64, len(in))
	for i, v := range in {
		out[i] = any(v).(uint64)
	}
	return out
}

func FromU32[W Word](in []uint32) []W {
	out := make([]W, len(in))
	for i, v := range in {
		out[i] = any(v).(W)
	}
	return out
}

func FromU64[W Word](in []uint64) []W {
	out := make([]W, len(in))
	for i, v := range in {
		out[i] = any(v).(W)
	}
	return out
}
