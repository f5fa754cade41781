package threefry

import (
	"math/bits"
	"testing"

	"pkt.systems/cbrng/internal/pkg/crand"
	"pkt.systems/cbrng/wordutil"
)

// TestKnownAnswerVectors reproduces the Random123 reference vectors for all
// four Threefry variants (2x32, 2x64, 4x32, 4x64), each at the all-zero and
// all-ones inputs plus a third, non-degenerate mixed-bit-pattern input, per
// spec.md §6's normative compatibility contract.
func TestKnownAnswerVectors(t *testing.T) {
	t.Run("2x32", func(t *testing.T) {
		for _, c := range []struct {
			name        string
			key, in, ok []uint32
		}{
			{"zero", []uint32{0, 0}, []uint32{0, 0}, []uint32{0x6b200159, 0x99ba4efe}},
			{"ones", []uint32{0xffffffff, 0xffffffff}, []uint32{0xffffffff, 0xffffffff}, []uint32{0x1cb996fc, 0xbb002be7}},
			{"mixed", []uint32{0x178bbbcb, 0x98443fdc}, []uint32{0x50a33397, 0xd17db7a8}, []uint32{0x10e3b5e0, 0x374e8fdf}},
		} {
			t.Run(c.name, func(t *testing.T) {
				checkKAT2[uint32](t, c.key, c.in, c.ok)
			})
		}
	})
	t.Run("2x64", func(t *testing.T) {
		for _, c := range []struct {
			name        string
			key, in, ok []uint64
		}{
			{"zero", []uint64{0, 0}, []uint64{0, 0}, []uint64{0xc2b6e3a8c2c69865, 0x6f81ed42f350084d}},
			{"ones", []uint64{0xffffffffffffffff, 0xffffffffffffffff}, []uint64{0xffffffffffffffff, 0xffffffffffffffff}, []uint64{0xe02cb7c4d95d277a, 0xd06633d0893b8b68}},
			{"mixed", []uint64{0x7825e918178bbbcb, 0x19dc90df98443fdc}, []uint64{0x8df1968e50a33397, 0x2fa81c45d17db7a8}, []uint64{0x8673cdc1a3eb0ee6, 0x8140320f00c51554}},
		} {
			t.Run(c.name, func(t *testing.T) {
				checkKAT2[uint64](t, c.key, c.in, c.ok)
			})
		}
	})
	t.Run("4x32", func(t *testing.T) {
		for _, c := range []struct {
			name        string
			key, in, ok []uint32
		}{
			{"zero", []uint32{0, 0, 0, 0}, []uint32{0, 0, 0, 0}, []uint32{0x9c6ca96a, 0xe17eae66, 0xfc10ecd4, 0x5256a7d8}},
			{"ones", []uint32{0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff}, []uint32{0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff}, []uint32{0x2a881696, 0x57012287, 0xf6c7446e, 0xa16a6732}},
			{"mixed", []uint32{0x178bbbcb, 0x98443fdc, 0x191ea3f1, 0x99ab270a}, []uint32{0x50a33397, 0xd17db7a8, 0x52363bbd, 0xd2c0bfd6}, []uint32{0xf53ef146, 0x018d1cbc, 0xd33b77d1, 0xa0aabaa6}},
		} {
			t.Run(c.name, func(t *testing.T) {
				checkKAT4[uint32](t, c.key, c.in, c.ok)
			})
		}
	})
	t.Run("4x64", func(t *testing.T) {
		for _, c := range []struct {
			name        string
			key, in, ok []uint64
		}{
			{"zero", []uint64{0, 0, 0, 0}, []uint64{0, 0, 0, 0}, []uint64{0x09218EBDE6C85537, 0x55941F5266D86105, 0x4BD25E16282434DC, 0xEE29EC846BD2E40B}},
			{"ones", []uint64{0xffffffffffffffff, 0xffffffffffffffff, 0xffffffffffffffff, 0xffffffffffffffff}, []uint64{0xffffffffffffffff, 0xffffffffffffffff, 0xffffffffffffffff, 0xffffffffffffffff}, []uint64{0x29c24097942bba1b, 0x0371bbfb0f6f4e11, 0x3c231ffa33f83a1c, 0xcd29113fde32d168}},
			{"mixed", []uint64{0x7825e918178bbbcb, 0x19dc90df98443fdc, 0xbb971695191ea3f1, 0x554f9c6c99ab270a}, []uint64{0x8df1968e50a33397, 0x2fa81c45d17db7a8, 0xc960821b52363bbd, 0x6b1b09d2d2c0bfd6}, []uint64{0x57c54f5cb1ed4a54, 0xbfaab832020620f0, 0x61f7ddcc02b1f0b9, 0xef2ff74d65859055}},
		} {
			t.Run(c.name, func(t *testing.T) {
				checkKAT4[uint64](t, c.key, c.in, c.ok)
			})
		}
	})
}

func checkKAT2[W wordutil.Word](t *testing.T, key, in, want []W) {
	t.Helper()
	s, err := New2[W](key, DefaultRounds)
	if err != nil {
		t.Fatalf("New2: %v", err)
	}
	got, err := s.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("output[%d] = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func checkKAT4[W wordutil.Word](t *testing.T, key, in, want []W) {
	t.Helper()
	s, err := New4[W](key, DefaultRounds)
	if err != nil {
		t.Fatalf("New4: %v", err)
	}
	got, err := s.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("output[%d] = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestDeterminism(t *testing.T) {
	s, err := New4[uint64]([]uint64{1, 2, 3, 4}, DefaultRounds)
	if err != nil {
		t.Fatalf("New4: %v", err)
	}
	in := []uint64{9, 8, 7, 6}
	a, err := s.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	b, err := s.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Apply not deterministic at index %d: %#x != %#x", i, a[i], b[i])
		}
	}
}

// TestInjectivitySampled checks spec.md §8 property 2 (per-key injectivity)
// by sampling 2^20 random inputs at production width and verifying no two
// distinct inputs mapped to the same output. The property also calls for
// an exhaustive check at a W=8-scaled analogue; this implementation's
// Word constraint only admits uint32/uint64, so that exhaustive variant
// has no expression here and is covered only by this sampled form.
func TestInjectivitySampled(t *testing.T) {
	s, err := New4[uint64]([]uint64{0xdead, 0xbeef, 0, 0}, DefaultRounds)
	if err != nil {
		t.Fatalf("New4: %v", err)
	}
	const trials = 1 << 20
	seen := make(map[[4]uint64][4]uint64, trials)
	for i := 0; i < trials; i++ {
		in := []uint64{crand.Uint64(), crand.Uint64(), crand.Uint64(), crand.Uint64()}
		out, err := s.Apply(in)
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		var key [4]uint64
		copy(key[:], out)
		var val [4]uint64
		copy(val[:], in)
		if prev, ok := seen[key]; ok && prev != val {
			t.Fatalf("collision: distinct inputs %v and %v mapped to same output", prev, val)
		}
		seen[key] = val
	}
}

func TestKeySensitivityHammingDistance(t *testing.T) {
	const trials = 256
	const outputBits = 4 * 64
	var totalDist int
	for i := 0; i < trials; i++ {
		key := []uint64{crand.Uint64(), crand.Uint64(), 0, 0}
		s1, err := New4[uint64](key, DefaultRounds)
		if err != nil {
			t.Fatalf("New4: %v", err)
		}
		flipped := append([]uint64(nil), key...)
		bitIndex := crand.Intn(64)
		flipped[0] ^= 1 << uint(bitIndex)
		s2, err := New4[uint64](flipped, DefaultRounds)
		if err != nil {
			t.Fatalf("New4: %v", err)
		}
		in := []uint64{crand.Uint64(), crand.Uint64(), crand.Uint64(), crand.Uint64()}
		out1, _ := s1.Apply(in)
		out2, _ := s2.Apply(in)
		for j := range out1 {
			totalDist += bits.OnesCount64(out1[j] ^ out2[j])
		}
	}
	frac := float64(totalDist) / float64(trials*outputBits)
	if frac < 0.45 || frac > 0.55 {
		t.Fatalf("key sensitivity Hamming fraction = %f, want in [0.45, 0.55]", frac)
	}
}

func TestRoundsAcceptsWideRange(t *testing.T) {
	for _, r := range []int{0, 1, 20, 72} {
		if _, err := New4[uint64]([]uint64{0, 0, 0, 0}, r); err != nil {
			t.Fatalf("New4 with rounds=%d: %v", r, err)
		}
	}
}

func TestZeroRoundsIsIdentityPlusKeyInjection(t *testing.T) {
	s, err := New4[uint64]([]uint64{1, 2, 3, 4}, 0)
	if err != nil {
		t.Fatalf("New4: %v", err)
	}
	out, err := s.Apply([]uint64{10, 20, 30, 40})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := []uint64{11, 22, 33, 44}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("output[%d] = %d, want %d", i, out[i], want[i])
		}
	}
}

func TestReservedKeyBitsRejected(t *testing.T) {
	bad := []uint64{0, 0, 0, 1 << 63}
	if _, err := New4[uint64](bad, DefaultRounds); err == nil {
		t.Fatalf("expected reserved-bit rejection")
	}
}

func TestWrongKeyLengthRejected(t *testing.T) {
	if _, err := New4[uint64]([]uint64{1, 2, 3}, DefaultRounds); err == nil {
		t.Fatalf("expected key-length error")
	}
	if _, err := New2[uint32]([]uint32{1, 2, 3}, DefaultRounds); err == nil {
		t.Fatalf("expected key-length error")
	}
}

func TestWithKeyProducesIndependentValue(t *testing.T) {
	s, err := New4[uint64]([]uint64{1, 2, 3, 4}, DefaultRounds)
	if err != nil {
		t.Fatalf("New4: %v", err)
	}
	other, err := s.WithKey([]uint64{5, 6, 7, 8})
	if err != nil {
		t.Fatalf("WithKey: %v", err)
	}
	if got := s.Key(); got[0] != 1 {
		t.Fatalf("original key mutated: %v", got)
	}
	if got := other.Key(); got[0] != 5 {
		t.Fatalf("WithKey did not apply new key: %v", got)
	}
}
