// Package engine adapts a pseudo-random function (threefry, philox, or any
// type implementing prf.PRF) into a conventional uniform random number
// engine: a stream of fixed-width words produced by partitioning the PRF's
// input space into a caller-controlled base counter and an engine-managed
// sequence counter, buffering one PRF output block at a time.
package engine

import (
	"math/big"

	"pkt.systems/cbrng/prf"
	"pkt.systems/cbrng/wordutil"
)

var bigOne = big.NewInt(1)

// Engine is a counter-based uniform random number engine over PRF P. It is
// a value-owning type with no shared state; copy it only via its
// constructors, never by struct assignment, since it holds a *big.Int.
type Engine[W wordutil.Word] struct {
	prf         prf.PRF[W]
	n           int
	bitWidth    int
	counterBits int
	baseCounter []W
	seq         *big.Int // next sequence-counter value to be used by the PRF
	maxSeq      *big.Int // 2^CounterBits
	buffer      []W
	index       int  // next unread word in buffer, in [0, n]
	dirty       bool // buffer does not hold the block implied by (seq, index)
}

// N returns the PRF's element count.
func (e *Engine[W]) N() int { return e.n }

// CounterBits returns the number of most-significant domain bits dedicated
// to the sequence counter.
func (e *Engine[W]) CounterBits() int { return e.counterBits }

// BaseCounter returns a copy of the current base counter.
func (e *Engine[W]) BaseCounter() []W {
	return append([]W(nil), e.baseCounter...)
}

// Min returns the smallest value Next can produce.
func (e *Engine[W]) Min() W { return 0 }

// Max returns the largest value Next can produce.
func (e *Engine[W]) Max() W {
	var zero W
	return zero - 1
}

// Next draws the next word from the stream, regenerating the PRF output
// block when the buffer is exhausted. Returns ErrExhausted once the
// sequence counter has reached its maximum and the buffer is empty.
func (e *Engine[W]) Next() (W, error) {
	if e.dirty {
		if err := e.regenerate(); err != nil {
			var zero W
			return zero, err
		}
	}
	w := e.buffer[e.index]
	e.index++
	if e.index == e.n {
		e.dirty = true
	}
	return w, nil
}

// regenerate invokes the PRF to refill the buffer. When index is 0 or n,
// the pending block is the one at the current seq, and seq advances past
// it. Otherwise the pending block is the one at seq-1 (already advanced
// past on a previous regeneration or a Discard), and seq is left alone.
func (e *Engine[W]) regenerate() error {
	advance := e.index == 0 || e.index == e.n
	var genSeq *big.Int
	if advance {
		if e.seq.Cmp(e.maxSeq) >= 0 {
			return ErrExhausted
		}
		genSeq = e.seq
	} else {
		genSeq = new(big.Int).Sub(e.seq, bigOne)
	}
	out, err := e.prf.Apply(e.combinedInput(genSeq))
	if err != nil {
		return err
	}
	e.buffer = out
	if advance {
		e.seq = new(big.Int).Add(e.seq, bigOne)
		e.index = 0
	}
	e.dirty = false
	return nil
}

// combinedInput packs seq into the top CounterBits of the domain, treating
// the domain as a little-endian multi-word integer, and ORs in the base
// counter (whose reserved bits are always zero).
func (e *Engine[W]) combinedInput(seq *big.Int) []W {
	baseInt := wordutil.WordsToBigInt(e.baseCounter)
	shift := uint(e.n*e.bitWidth - e.counterBits)
	seqShifted := new(big.Int).Lsh(seq, shift)
	combined := new(big.Int).Or(baseInt, seqShifted)
	return wordutil.BigIntToWords[W](combined, e.n)
}

// Discard advances the logical stream position by d draws in time
// independent of d. It never fails; a discard that reaches or passes the
// exhaustion boundary leaves the engine Exhausted, surfaced on the next
// Next call.
func (e *Engine[W]) Discard(d *big.Int) {
	nBig := big.NewInt(int64(e.n))
	p := new(big.Int).Mul(e.seq, nBig)
	if e.index != 0 {
		// index 0 (left by a Discard landing on a block boundary) means
		// block seq is pending with nothing consumed: position seq*N.
		p.Sub(p, big.NewInt(int64(e.n-e.index)))
	}
	p.Add(p, d)
	newSeq := new(big.Int)
	newI := new(big.Int)
	newSeq.DivMod(p, nBig, newI)
	if newSeq.Cmp(e.maxSeq) >= 0 {
		e.seq = new(big.Int).Set(e.maxSeq)
		e.index = e.n
	} else if newI.Sign() == 0 {
		e.seq = newSeq
		e.index = 0
	} else {
		// regenerate treats a mid-block index as "the pending block is
		// seq-1"; landing strictly inside block newSeq means seq must
		// point one past it.
		e.seq = newSeq.Add(newSeq, bigOne)
		e.index = int(newI.Int64())
	}
	e.dirty = true
}

// DiscardUint64 is a convenience wrapper around Discard for step counts
// that fit in a uint64.
func (e *Engine[W]) DiscardUint64(d uint64) {
	e.Discard(new(big.Int).SetUint64(d))
}

// Restart replaces the base counter, resets the sequence counter to 0 and
// the buffer index to N. The key is unchanged. Fails with ErrOutOfRange
// (state unchanged) if baseCounter has nonzero reserved bits.
func (e *Engine[W]) Restart(baseCounter []W) error {
	if len(baseCounter) != e.n {
		return ErrOutOfRange
	}
	if err := checkBaseCounterReservedBits(baseCounter, e.n, e.bitWidth, e.counterBits); err != nil {
		return err
	}
	e.baseCounter = append([]W(nil), baseCounter...)
	e.seq = big.NewInt(0)
	e.index = e.n
	e.dirty = true
	return nil
}

// Seed replaces the PRF's key, resetting the base counter to zero, the
// sequence counter to 0 and the buffer index to N. Fails with
// ErrOutOfRange (state unchanged) if key has nonzero reserved bits.
func (e *Engine[W]) Seed(key []W) error {
	rekeyed, err := e.prf.WithKey(key)
	if err != nil {
		return ErrOutOfRange
	}
	e.prf = rekeyed
	e.baseCounter = make([]W, e.n)
	e.seq = big.NewInt(0)
	e.index = e.n
	e.dirty = true
	return nil
}

// SeedScalar places seed in the lowest-order key word and zeroes the rest,
// then behaves as Seed.
func (e *Engine[W]) SeedScalar(seed W) error {
	key := make([]W, e.prf.KeyLen())
	key[0] = seed
	return e.Seed(key)
}

// Equal reports whether e and other hold the same PRF key, round count, the
// same base counter, sequence counter, and buffer index. Buffer contents
// are not compared, since they are a function of the other fields.
func (e *Engine[W]) Equal(other *Engine[W]) bool {
	if other == nil {
		return false
	}
	if e.n != other.n || e.prf.Rounds() != other.prf.Rounds() {
		return false
	}
	if !wordSlicesEqual(e.prf.Key(), other.prf.Key()) {
		return false
	}
	if !wordSlicesEqual(e.baseCounter, other.baseCounter) {
		return false
	}
	if e.seq.Cmp(other.seq) != 0 {
		return false
	}
	return e.index == other.index
}

func wordSlicesEqual[W wordutil.Word](a, b []W) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
