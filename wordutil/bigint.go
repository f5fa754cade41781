package wordutil

import "math/big"

// WordsToBigInt combines words into a single unsigned integer, treating the
// slice as little-endian (index 0 least significant), matching the domain
// layout the engine's sequence-counter packing relies on.
func WordsToBigInt[W Word](words []W) *big.Int {
	bitWidth := uint(BitsOf[W]())
	result := new(big.Int)
	for i := len(words) - 1; i >= 0; i-- {
		result.Lsh(result, bitWidth)
		result.Or(result, new(big.Int).SetUint64(uint64(words[i])))
	}
	return result
}

// BigIntToWords splits v into n words of W, little-endian (index 0 least
// significant). Bits of v above n*bits(W) are discarded.
func BigIntToWords[W Word](v *big.Int, n int) []W {
	bitWidth := uint(BitsOf[W]())
	mask := new(big.Int).Lsh(big.NewInt(1), bitWidth)
	mask.Sub(mask, big.NewInt(1))
	tmp := new(big.Int).Set(v)
	out := make([]W, n)
	word := new(big.Int)
	for i := 0; i < n; i++ {
		word.And(tmp, mask)
		out[i] = W(word.Uint64())
		tmp.Rsh(tmp, bitWidth)
	}
	return out
}
