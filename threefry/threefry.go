// Package threefry implements the Threefry pseudo-random function from the
// Salmon-Moraes-Dror-Shaw counter-based RNG construction (SC'11): an
// add-rotate-xor block mix over 2 or 4 words of width 32 or 64 bits.
package threefry

import (
	"errors"
	"fmt"

	"pkt.systems/cbrng/prf"
	"pkt.systems/cbrng/wordutil"
)

// DefaultRounds is the round count used unless overridden.
const DefaultRounds = 20

// MaxRounds is the largest round count this implementation accepts. The
// specification only requires accepting up to 72; the rotation tables below
// are defined for any round count since they cycle modulo 8.
const MaxRounds = 1 << 16

// ErrElementCount indicates N was not 2 or 4.
var ErrElementCount = errors.New("threefry: element count must be 2 or 4")

// ErrKeyLength indicates a key or input slice had the wrong length.
var ErrKeyLength = errors.New("threefry: wrong key length")

// ErrRounds indicates an out-of-range round count.
var ErrRounds = errors.New("threefry: rounds must be in [0, MaxRounds]")

// ErrReservedKeyBits indicates the key's reserved high bits are nonzero.
var ErrReservedKeyBits = errors.New("threefry: key has nonzero reserved bits")

// parity32/parity64 are the fixed Skein key-schedule parity constants.
const (
	parity32 uint32 = 0x1BD11BDA
	parity64 uint64 = 0x1BD11BDAA9FC1A22
)

// Rotation tables, one row consumed per round, cycling modulo 8 (or modulo
// len(table) generally, but the reference always defines exactly 8 rows).
// N=2 has one rotation constant per row; N=4 has two, one per parallel pair.
var (
	rot2x32 = [8]int{13, 15, 26, 6, 17, 29, 16, 24}
	rot2x64 = [8]int{16, 42, 12, 31, 16, 32, 24, 21}
	rot4x32 = [8][2]int{{10, 26}, {11, 21}, {13, 27}, {23, 5}, {6, 20}, {17, 11}, {25, 10}, {18, 20}}
	rot4x64 = [8][2]int{{14, 16}, {52, 57}, {23, 40}, {5, 37}, {25, 33}, {46, 12}, {58, 22}, {32, 32}}
)

// State is a Threefry PRF instance: a value type that owns its own key and
// round count. Copy it to get an independent instance with the same key.
type State[W wordutil.Word] struct {
	n      int
	rounds int
	key    []W
}

var _ prf.PRF[uint64] = (*State[uint64])(nil)

// New2 constructs a Threefry-2xW instance with the given key (length 2) and
// round count. Passing rounds < 0 selects DefaultRounds.
func New2[W wordutil.Word](key []W, rounds int) (*State[W], error) {
	return newState(2, key, rounds)
}

// New4 constructs a Threefry-4xW instance with the given key (length 4) and
// round count. Passing rounds < 0 selects DefaultRounds.
func New4[W wordutil.Word](key []W, rounds int) (*State[W], error) {
	return newState(4, key, rounds)
}

func newState[W wordutil.Word](n int, key []W, rounds int) (*State[W], error) {
	if n != 2 && n != 4 {
		return nil, ErrElementCount
	}
	if rounds < 0 {
		rounds = DefaultRounds
	}
	if rounds > MaxRounds {
		return nil, ErrRounds
	}
	if len(key) != n {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrKeyLength, n, len(key))
	}
	s := &State[W]{n: n, rounds: rounds}
	if err := checkReservedKeyBits(n, key); err != nil {
		return nil, err
	}
	s.key = append([]W(nil), key...)
	return s, nil
}

func (s *State[W]) N() int      { return s.n }
func (s *State[W]) Rounds() int { return s.rounds }
func (s *State[W]) KeyLen() int { return s.n }

func (s *State[W]) Key() []W {
	return append([]W(nil), s.key...)
}

// ReservedKeyBits returns ceil(log2(N*bits(W))).
func (s *State[W]) ReservedKeyBits() int {
	return wordutil.CeilLog2(s.n * wordutil.BitsOf[W]())
}

func (s *State[W]) WithKey(key []W) (prf.PRF[W], error) {
	return newState[W](s.n, key, s.rounds)
}

func checkReservedKeyBits[W wordutil.Word](n int, key []W) error {
	reserved := wordutil.CeilLog2(n * wordutil.BitsOf[W]())
	bitWidth := wordutil.BitsOf[W]()
	mask := wordutil.TopBitsMask[W](reserved, bitWidth)
	if key[n-1]&mask != 0 {
		return ErrReservedKeyBits
	}
	return nil
}

// Apply evaluates the PRF on input (length N), returning a fresh output
// tuple of length N.
func (s *State[W]) Apply(input []W) ([]W, error) {
	if len(input) != s.n {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrKeyLength, s.n, len(input))
	}
	switch s.n {
	case 2:
		return apply2(s.key, s.rounds, input)
	case 4:
		return apply4(s.key, s.rounds, input)
	default:
		return nil, ErrElementCount
	}
}

// extendedKey appends the parity word to the caller's key: ks[N] = parity ^
// XOR of all key words.
func extendedKey32(key []uint32) []uint32 {
	ext := make([]uint32, len(key)+1)
	copy(ext, key)
	p := parity32
	for _, k := range key {
		p ^= k
	}
	ext[len(key)] = p
	return ext
}

func extendedKey64(key []uint64) []uint64 {
	ext := make([]uint64, len(key)+1)
	copy(ext, key)
	p := parity64
	for _, k := range key {
		p ^= k
	}
	ext[len(key)] = p
	return ext
}

func apply2[W wordutil.Word](key []W, rounds int, input []W) ([]W, error) {
	switch any(key[0]).(type) {
	case uint32:
		out := threefry2x32(wordutil.ToU32(key), rounds, wordutil.ToU32(input))
		return wordutil.FromU32[W](out), nil
	case uint64:
		out := threefry2x64(wordutil.ToU64(key), rounds, wordutil.ToU64(input))
		return wordutil.FromU64[W](out), nil
	default:
		return nil, wordutil.ErrUnsupportedWord
	}
}

func apply4[W wordutil.Word](key []W, rounds int, input []W) ([]W, error) {
	switch any(key[0]).(type) {
	case uint32:
		out := threefry4x32(wordutil.ToU32(key), rounds, wordutil.ToU32(input))
		return wordutil.FromU32[W](out), nil
	case uint64:
		out := threefry4x64(wordutil.ToU64(key), rounds, wordutil.ToU64(input))
		return wordutil.FromU64[W](out), nil
	default:
		return nil, wordutil.ErrUnsupportedWord
	}
}

func threefry2x32(key []uint32, rounds int, input []uint32) []uint32 {
	ks := extendedKey32(key)
	x := [2]uint32{input[0] + ks[0], input[1] + ks[1]}
	for d := 0; d < rounds; d++ {
		r := rot2x32[d%8]
		x[0] += x[1]
		x[1] = wordutil.RotateLeft(x[1], r)
		x[1] ^= x[0]
		if (d+1)%4 == 0 {
			s := (d + 1) / 4
			x[0] += ks[s%3]
			x[1] += ks[(s+1)%3]
			x[1] += uint32(s)
		}
	}
	return x[:]
}

func threefry2x64(key []uint64, rounds int, input []uint64) []uint64 {
	ks := extendedKey64(key)
	x := [2]uint64{input[0] + ks[0], input[1] + ks[1]}
	for d := 0; d < rounds; d++ {
		r := rot2x64[d%8]
		x[0] += x[1]
		x[1] = wordutil.RotateLeft(x[1], r)
		x[1] ^= x[0]
		if (d+1)%4 == 0 {
			s := (d + 1) / 4
			x[0] += ks[s%3]
			x[1] += ks[(s+1)%3]
			x[1] += uint64(s)
		}
	}
	return x[:]
}

func threefry4x32(key []uint32, rounds int, input []uint32) []uint32 {
	ks := extendedKey32(key)
	x := [4]uint32{input[0] + ks[0], input[1] + ks[1], input[2] + ks[2], input[3] + ks[3]}
	for d := 0; d < rounds; d++ {
		r := rot4x32[d%8]
		x[0] += x[1]
		x[1] = wordutil.RotateLeft(x[1], r[0])
		x[1] ^= x[0]
		x[2] += x[3]
		x[3] = wordutil.RotateLeft(x[3], r[1])
		x[3] ^= x[2]
		x[1], x[3] = x[3], x[1]
		if (d+1)%4 == 0 {
			s := (d + 1) / 4
			x[0] += ks[s%5]
			x[1] += ks[(s+1)%5]
			x[2] += ks[(s+2)%5]
			x[3] += ks[(s+3)%5]
			x[3] += uint32(s)
		}
	}
	return x[:]
}

func threefry4x64(key []uint64, rounds int, input []uint64) []uint64 {
	ks := extendedKey64(key)
	x := [4]uint64{input[0] + ks[0], input[1] + ks[1], input[2] + ks[2], input[3] + ks[3]}
	for d := 0; d < rounds; d++ {
		r := rot4x64[d%8]
		x[0] += x[1]
		x[1] = wordutil.RotateLeft(x[1], r[0])
		x[1] ^= x[0]
		x[2] += x[3]
		x[3] = wordutil.RotateLeft(x[3], r[1])
		x[3] ^= x[2]
		x[1], x[3] = x[3], x[1]
		if (d+1)%4 == 0 {
			s := (d + 1) / 4
			x[0] += ks[s%5]
			x[1] += ks[(s+1)%5]
			x[2] += ks[(s+2)%5]
			x[3] += ks[(s+3)%5]
			x[3] += uint64(s)
		}
	}
	return x[:]
}
