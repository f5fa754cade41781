package engine

import (
	"fmt"
	"math/big"

	"pkt.systems/cbrng/prf"
	"pkt.systems/cbrng/wordutil"
)

type config[W wordutil.Word] struct {
	baseCounter []W
	counterBits int
}

// Option configures Engine construction.
type Option[W wordutil.Word] func(*config[W])

// WithBaseCounter sets the caller-visible base counter. Its length must
// equal the PRF's N; its top CounterBits (of the combined multi-word
// integer) must be zero, checked at construction time.
func WithBaseCounter[W wordutil.Word](counter []W) Option[W] {
	return func(cfg *config[W]) {
		cfg.baseCounter = append([]W(nil), counter...)
	}
}

// WithCounterBits overrides the number of most-significant bits of the
// domain dedicated to the engine-managed sequence counter. Must be in
// [1, N*bits(W)].
func WithCounterBits[W wordutil.Word](bits int) Option[W] {
	return func(cfg *config[W]) {
		cfg.counterBits = bits
	}
}

func defaultCounterBits[W wordutil.Word](p prf.PRF[W]) int {
	return p.N() * wordutil.BitsOf[W]()
}

func applyOptions[W wordutil.Word](p prf.PRF[W], opts []Option[W]) config[W] {
	cfg := config[W]{
		baseCounter: make([]W, p.N()),
		counterBits: defaultCounterBits(p),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// New constructs an Engine wrapping p, an output buffer index forced to N
// (so the first Next call regenerates), a zero sequence counter, and the
// base counter and CounterBits given by opts.
func New[W wordutil.Word](p prf.PRF[W], opts ...Option[W]) (*Engine[W], error) {
	cfg := applyOptions(p, opts)
	if len(cfg.baseCounter) != p.N() {
		return nil, fmt.Errorf("%w: base counter length %d, want %d", ErrOutOfRange, len(cfg.baseCounter), p.N())
	}
	n := p.N()
	bitWidth := wordutil.BitsOf[W]()
	if cfg.counterBits < 1 || cfg.counterBits > n*bitWidth {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrCounterBits, cfg.counterBits, n*bitWidth)
	}
	if err := checkBaseCounterReservedBits(cfg.baseCounter, n, bitWidth, cfg.counterBits); err != nil {
		return nil, err
	}
	e := &Engine[W]{
		prf:         p,
		n:           n,
		bitWidth:    bitWidth,
		counterBits: cfg.counterBits,
		baseCounter: append([]W(nil), cfg.baseCounter...),
		seq:         big.NewInt(0),
		maxSeq:      new(big.Int).Lsh(big.NewInt(1), uint(cfg.counterBits)),
		index:       n,
		dirty:       true,
	}
	return e, nil
}

// NewFromKey rekeys p with key and constructs an Engine from the result.
func NewFromKey[W wordutil.Word](p prf.PRF[W], key []W, opts ...Option[W]) (*Engine[W], error) {
	rekeyed, err := p.WithKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutOfRange, err)
	}
	return New(rekeyed, opts...)
}

// NewFromSeed forms a key by placing seed in the lowest-order word of p's
// key tuple, zeroing the rest, and constructs an Engine from the result.
// Base counter defaults to zero unless overridden by opts.
func NewFromSeed[W wordutil.Word](p prf.PRF[W], seed W, opts ...Option[W]) (*Engine[W], error) {
	key := make([]W, p.KeyLen())
	key[0] = seed
	return NewFromKey(p, key, opts...)
}

func checkBaseCounterReservedBits[W wordutil.Word](baseCounter []W, n, bitWidth, counterBits int) error {
	baseInt := wordutil.WordsToBigInt(baseCounter)
	totalBits := n * bitWidth
	shift := uint(totalBits - counterBits)
	mask := new(big.Int).Lsh(big.NewInt(1), uint(counterBits))
	mask.Sub(mask, big.NewInt(1))
	mask.Lsh(mask, shift)
	if new(big.Int).And(baseInt, mask).Sign() != 0 {
		return fmt.Errorf("%w: base counter has nonzero reserved bits", ErrOutOfRange)
	}
	return nil
}
