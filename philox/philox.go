// Package philox implements the Philox pseudo-random function from the
// Salmon-Moraes-Dror-Shaw counter-based RNG construction (SC'11): a block
// mix built from wide (double-width) unsigned multiplication rather than
// add-rotate-xor.
package philox

import (
	"errors"
	"fmt"

	"pkt.systems/cbrng/prf"
	"pkt.systems/cbrng/wordutil"
)

// DefaultRounds is the round count used unless overridden.
const DefaultRounds = 10

// MaxRounds bounds the accepted round count; the specification only
// requires accepting up to 16.
const MaxRounds = 1 << 16

// ErrElementCount indicates N was not 2 or 4.
var ErrElementCount = errors.New("philox: element count must be 2 or 4")

// ErrKeyLength indicates a key or input slice had the wrong length.
var ErrKeyLength = errors.New("philox: wrong key length")

// ErrRounds indicates an out-of-range round count.
var ErrRounds = errors.New("philox: rounds must be in [0, MaxRounds]")

// ErrReservedKeyBits indicates the key's reserved high bits are nonzero.
var ErrReservedKeyBits = errors.New("philox: key has nonzero reserved bits")

const (
	m0_2x64 uint64 = 0xD2B74407B1CE6E93
	c0_2x64 uint64 = 0x9E3779B97F4A7C15

	m0_4x64 uint64 = 0xD2E7470EE14C6C93
	m1_4x64 uint64 = 0xCA5A826395121157
	c0_4x64 uint64 = 0x9E3779B97F4A7C15
	c1_4x64 uint64 = 0xBB67AE8584CAA73B

	m0_2x32 uint32 = 0xD256D193
	c0_2x32 uint32 = 0x9E3779B9

	m0_4x32 uint32 = 0xD2511F53
	m1_4x32 uint32 = 0xCD9E8D57
	c0_4x32 uint32 = 0x9E3779B9
	c1_4x32 uint32 = 0xBB67AE85
)

// State is a Philox PRF instance: a value type that owns its own key and
// round count.
type State[W wordutil.Word] struct {
	n      int
	rounds int
	key    []W // length n/2
}

var _ prf.PRF[uint64] = (*State[uint64])(nil)

// New2 constructs a Philox-2xW instance with the given key (length 1).
func New2[W wordutil.Word](key []W, rounds int) (*State[W], error) {
	return newState(2, key, rounds)
}

// New4 constructs a Philox-4xW instance with the given key (length 2).
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
	keyLen := n / 2
	if len(key) != keyLen {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrKeyLength, keyLen, len(key))
	}
	if err := checkReservedKeyBits(n, key); err != nil {
		return nil, err
	}
	return &State[W]{n: n, rounds: rounds, key: append([]W(nil), key...)}, nil
}

func (s *State[W]) N() int      { return s.n }
func (s *State[W]) Rounds() int { return s.rounds }
func (s *State[W]) KeyLen() int { return s.n / 2 }

func (s *State[W]) Key() []W {
	return append([]W(nil), s.key...)
}

// ReservedKeyBits returns ceil(log2(N*bits(W))), the number of top bits of
// the highest-index key word that must be zero.
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
	if key[len(key)-1]&mask != 0 {
		return ErrReservedKeyBits
	}
	return nil
}

// Apply evaluates the PRF on input (length N).
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

func apply2[W wordutil.Word](key []W, rounds int, input []W) ([]W, error) {
	switch any(key[0]).(type) {
	case uint32:
		out := philox2x32(wordutil.ToU32(key)[0], rounds, wordutil.ToU32(input))
		return wordutil.FromU32[W](out), nil
	case uint64:
		out := philox2x64(wordutil.ToU64(key)[0], rounds, wordutil.ToU64(input))
		return wordutil.FromU64[W](out), nil
	default:
		return nil, wordutil.ErrUnsupportedWord
	}
}

func apply4[W wordutil.Word](key []W, rounds int, input []W) ([]W, error) {
	switch any(key[0]).(type) {
	case uint32:
		k := wordutil.ToU32(key)
		out := philox4x32(k[0], k[1], rounds, wordutil.ToU32(input))
		return wordutil.FromU32[W](out), nil
	case uint64:
		k := wordutil.ToU64(key)
		out := philox4x64(k[0], k[1], rounds, wordutil.ToU64(input))
		return wordutil.FromU64[W](out), nil
	default:
		return nil, wordutil.ErrUnsupportedWord
	}
}

func philox2x32(k0 uint32, rounds int, input []uint32) []uint32 {
	l, r := input[0], input[1]
	for i := 0; i < rounds; i++ {
		hi, lo := wordutil.WideMul32(m0_2x32, l)
		l, r = hi^r^k0, lo
		k0 += c0_2x32
	}
	return []uint32{l, r}
}

func philox2x64(k0 uint64, rounds int, input []uint64) []uint64 {
	l, r := input[0], input[1]
	for i := 0; i < rounds; i++ {
		hi, lo := wordutil.WideMul64(m0_2x64, l)
		l, r = hi^r^k0, lo
		k0 += c0_2x64
	}
	return []uint64{l, r}
}

func philox4x32(k0, k1 uint32, rounds int, input []uint32) []uint32 {
	x0, x1, x2, x3 := input[0], input[1], input[2], input[3]
	for i := 0; i < rounds; i++ {
		hi0, lo0 := wordutil.WideMul32(m0_4x32, x0)
		hi1, lo1 := wordutil.WideMul32(m1_4x32, x2)
		x0, x1, x2, x3 = hi1^x1^k0, lo1, hi0^x3^k1, lo0
		k0 += c0_4x32
		k1 += c1_4x32
	}
	return []uint32{x0, x1, x2, x3}
}

func philox4x64(k0, k1 uint64, rounds int, input []uint64) []uint64 {
	x0, x1, x2, x3 := input[0], input[1], input[2], input[3]
	for i := 0; i < rounds; i++ {
		hi0, lo0 := wordutil.WideMul64(m0_4x64, x0)
		hi1, lo1 := wordutil.WideMul64(m1_4x64, x2)
		x0, x1, x2, x3 = hi1^x1^k0, lo1, hi0^x3^k1, lo0
		k0 += c0_4x64
		k1 += c1_4x64
	}
	return []uint64{x0, x1, x2, x3}
}
