// Package seed derives reproducible random streams from business identifiers,
// so simulated values stay within their bands and never change between calls.
package seed

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
)

// New returns a generator whose sequence depends only on salt and key.
func New(salt, key string) *rand.Rand {
	sum := sha256.Sum256([]byte(salt + ":" + key))
	return rand.New(rand.NewPCG(binary.BigEndian.Uint64(sum[:8]), binary.BigEndian.Uint64(sum[8:16])))
}

// Uniform draws from [lo, hi).
func Uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}
