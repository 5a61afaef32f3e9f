// Package entropy provides the random streams the simulation draws from.
// Streams are seeded so a run can be replayed; seed 0 asks crypto/rand for one.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	mrand "math/rand"
)

// Source is the random stream stochastic systems draw from.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// New returns a seeded source. A zero seed is replaced by a crypto seed,
// which is logged so the run can be reproduced.
func New(seed int64) *mrand.Rand {
	if seed == 0 {
		seed = CryptoSeed()
		slog.Info("random seed chosen", "seed", seed)
	}
	return mrand.New(mrand.NewSource(seed))
}

// CryptoSeed returns a non-zero seed from crypto/rand.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen but fall back to a fixed seed.
		return 1
	}
	seed := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if seed == 0 {
		seed = 1
	}
	return seed
}

// Range returns a uniform integer in [lo, hi).
func Range(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.Intn(hi-lo)
}

