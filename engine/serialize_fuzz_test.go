package engine

import (
	"bytes"
	"math/big"
	"testing"

	"pkt.systems/cbrng/threefry"
)

// FuzzReadFrom fuzzes ReadFrom's textual parser, the one place in this
// package that parses untrusted input. It only checks that ReadFrom never
// panics and never mutates state on a rejected input; it does not check
// round-tripping (see TestSerializationRoundTrip for that).
func FuzzReadFrom(f *testing.F) {
	seedEngine := func() *Engine[uint64] {
		p, err := threefry.New2[uint64]([]uint64{1, 2}, threefry.DefaultRounds)
		if err != nil {
			f.Fatalf("New2: %v", err)
		}
		e, err := New[uint64](p, WithCounterBits[uint64](64))
		if err != nil {
			f.Fatalf("New: %v", err)
		}
		return e
	}

	var validSnapshot bytes.Buffer
	if _, err := seedEngine().WriteTo(&validSnapshot); err != nil {
		f.Fatalf("WriteTo: %v", err)
	}
	f.Add(validSnapshot.String())
	f.Add("")
	f.Add("not enough fields")
	f.Add("1 2 0 4")
	f.Add("18446744073709551616 0 0 0 -1 0")

	f.Fuzz(func(t *testing.T, input string) {
		e := seedEngine()
		snapshotSeq := new(big.Int).Set(e.seq)
		snapshotIndex := e.index
		_, err := e.ReadFrom(bytes.NewBufferString(input))
		if err != nil {
			if e.seq.Cmp(snapshotSeq) != 0 || e.index != snapshotIndex {
				t.Fatalf("state mutated on rejected input %q", input)
			}
		}
	})
}
