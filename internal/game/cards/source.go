package cards

import (
	"crypto/rand"
	"math/big"
)

// Source produces random ints for shuffling. Injectable so tests can
// use a deterministic sequence.
type Source interface {
	// Intn returns a random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// cryptoSource implements Source using crypto/rand.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is uniformly distributed
// in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "cards: Intn called with n <= 0" if
// n <= 0. Panics if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("cards: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("cards: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}
