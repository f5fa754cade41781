// Package prf defines the abstraction the counter-based engine adapts into a
// stream: a deterministic, keyed block function over fixed-width integer
// tuples. threefry and philox both implement it; the engine package only
// ever depends on this interface, never on either concrete PRF.
package prf

import "pkt.systems/cbrng/wordutil"

// PRF is a keyed block function on N-word tuples of W.
type PRF[W wordutil.Word] interface {
	// N returns the element count of the domain/range tuples (2 or 4).
	N() int

	// Rounds returns the configured round count.
	Rounds() int

	// KeyLen returns the number of words in the key tuple: N for threefry,
	// N/2 for philox.
	KeyLen() int

	// Key returns a copy of the current key words.
	Key() []W

	// WithKey returns a copy of the PRF with its key replaced by key, whose
	// length must equal KeyLen(). Returns ErrReservedKeyBits if key has
	// nonzero bits in the reserved region of its highest-index word.
	WithKey(key []W) (PRF[W], error)

	// ReservedKeyBits returns the number of most-significant bits reserved
	// in the highest-index key word: ceil(log2(N*bits(W))).
	ReservedKeyBits() int

	// Apply evaluates the PRF on input, which must have length N, and
	// returns a freshly allocated output tuple of length N.
	Apply(input []W) ([]W, error)
}
