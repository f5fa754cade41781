/* crypto/rand using math/rand as interface (C) Stefan Nilsson
 * https://yourbasic.org/golang/crypto-rand-int/
 * Modified with a mutex lock to be goroutine-safe.
 *
 * Used by the property tests in threefry/philox to draw the sample inputs
 * and key perturbations that spec.md's statistical properties (key
 * sensitivity, injectivity sampling) are checked
 * against. This is deliberately not the code under test: it only needs to be
 * unpredictable enough that a fixed test binary doesn't always exercise the
 * same handful of inputs, not cryptographically secure.
 */
package crand

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
)

// There is no seeding required in this implementation so no need to export a
// new source like with math/rand, but this will have to change if we add
// another PRNG. The API should then be backward compatible with the
// crypto/rand implementation as default.
var gsrc = cryptoRandSource{&sync.Mutex{}}
var gr = rand.New(gsrc)

type cryptoRandSource struct {
	*sync.Mutex
}

func (s cryptoRandSource) Seed(seed int64) {
	// no seeding, already handled by the OS
}

func (s cryptoRandSource) Int63() int64 {
	return int64(s.Uint64() & ^uint64(1<<63))
}

func (s cryptoRandSource) Uint64() (v uint64) {
	s.Lock()
	err := binary.Read(cryptoRand.Reader, binary.BigEndian, &v)
	s.Unlock()
	if err != nil {
		panic(err)
	}
	return
}

func (s cryptoRandSource) Read(p []byte) (n int, err error) {
	s.Lock()
	err = binary.Read(cryptoRand.Reader, binary.BigEndian, &p)
	s.Unlock()
	return len(p), err
}

// Uint64 returns a pseudo-random 64-bit value using crypto/rand as the seed.
func Uint64() uint64 { return gsrc.Uint64() }

// Uint32 returns a pseudo-random 32-bit value using the crypto-seeded PRNG.
func Uint32() uint32 { return gr.Uint32() }

// Intn returns a pseudo-random integer in [0, n) using the crypto-seeded PRNG.
func Intn(n int) int { return gr.Intn(n) }

// Read fills p with cryptographically sourced random data.
func Read(p []byte) (n int, err error) { return gsrc.Read(p) }
