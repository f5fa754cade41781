// Package keyspace mints and encodes the key and base-counter material
// consumed by threefry, philox and engine: random word tuples with a given
// PRF or engine's reserved high bits pre-cleared, plus hex/base64 codecs for
// storing or transmitting them.
package keyspace

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"pkt.systems/cbrng/wordutil"
)

// ErrInvalidWordCount indicates a decoded byte string did not contain
// exactly n words of the expected width.
var ErrInvalidWordCount = errors.New("keyspace: invalid word count")

// Generate produces n cryptographically random words of width bits(W), with
// the top reservedBits of the highest-index word cleared. The result is
// ready to hand to a PRF constructor or engine.WithBaseCounter without
// tripping the reserved-bit check.
func Generate[W wordutil.Word](n, reservedBits int) ([]W, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n must be positive", ErrInvalidWordCount)
	}
	bitWidth := wordutil.BitsOf[W]()
	raw := make([]byte, n*bitWidth/8)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("keyspace: generate: %w", err)
	}
	words := bytesToWords[W](raw, n, bitWidth)
	ClearReservedBits(words, reservedBits, bitWidth)
	return words, nil
}

// ClearReservedBits zeroes the top reservedBits bits of the highest-index
// word in place. Use this for PRF keys, whose reservation is always
// confined to a single word.
func ClearReservedBits[W wordutil.Word](words []W, reservedBits, bitWidth int) {
	if len(words) == 0 {
		return
	}
	mask := wordutil.TopBitsMask[W](reservedBits, bitWidth)
	words[len(words)-1] &^= mask
}

// GenerateBaseCounter mints an n-word base counter with its top
// counterBits bits cleared, treating the words as a little-endian
// multi-word integer the way the engine's sequence-counter packing does.
// Unlike a PRF key's reservation, a base counter's reserved region can span
// more than one word once counterBits exceeds bits(W).
func GenerateBaseCounter[W wordutil.Word](n, counterBits int) ([]W, error) {
	words, err := Generate[W](n, 0)
	if err != nil {
		return nil, err
	}
	bitWidth := wordutil.BitsOf[W]()
	totalBits := n * bitWidth
	if counterBits < 0 || counterBits > totalBits {
		return nil, fmt.Errorf("keyspace: counter bits %d not in [0, %d]", counterBits, totalBits)
	}
	v := wordutil.WordsToBigInt(words)
	keepBits := uint(totalBits - counterBits)
	keepMask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), keepBits), big.NewInt(1))
	v.And(v, keepMask)
	return wordutil.BigIntToWords[W](v, n), nil
}

// Zero overwrites words with zeros in place, for callers that want to scrub
// key material once an engine has consumed it.
func Zero[W wordutil.Word](words []W) {
	for i := range words {
		words[i] = 0
	}
}

// EncodeHex renders words as a big-endian hex string, one word after
// another with no separator.
func EncodeHex[W wordutil.Word](words []W) string {
	return hex.EncodeToString(wordsToBytes(words))
}

// DecodeHex parses a hex string produced by EncodeHex into n words.
func DecodeHex[W wordutil.Word](s string, n int) ([]W, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("keyspace: decode hex: %w", err)
	}
	return decodeBytes[W](raw, n)
}

// EncodeBase64 renders words as a raw (unpadded) base64 string.
func EncodeBase64[W wordutil.Word](words []W) string {
	return base64.RawStdEncoding.EncodeToString(wordsToBytes(words))
}

// DecodeBase64 parses a base64 string produced by EncodeBase64 into n words.
func DecodeBase64[W wordutil.Word](s string, n int) ([]W, error) {
	raw, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("keyspace: decode base64: %w", err)
	}
	return decodeBytes[W](raw, n)
}

func decodeBytes[W wordutil.Word](raw []byte, n int) ([]W, error) {
	bitWidth := wordutil.BitsOf[W]()
	stride := bitWidth / 8
	if len(raw) != n*stride {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidWordCount, len(raw), n*stride)
	}
	return bytesToWords[W](raw, n, bitWidth), nil
}

func wordsToBytes[W wordutil.Word](words []W) []byte {
	bitWidth := wordutil.BitsOf[W]()
	stride := bitWidth / 8
	out := make([]byte, len(words)*stride)
	for i, w := range words {
		v := uint64(w)
		for j := stride - 1; j >= 0; j-- {
			out[i*stride+j] = byte(v)
			v >>= 8
		}
	}
	return out
}

func bytesToWords[W wordutil.Word](raw []byte, n, bitWidth int) []W {
	stride := bitWidth / 8
	out := make([]W, n)
	for i := 0; i < n; i++ {
		var v uint64
		for _, b := range raw[i*stride : (i+1)*stride] {
			v = v<<8 | uint64(b)
		}
		out[i] = W(v)
	}
	return out
}
