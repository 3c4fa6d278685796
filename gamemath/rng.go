package gamemath

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	mrand "math/rand/v2"
)

// Source is the randomness a trial draws from. Float64 returns a value in
// [0, 1); IntN returns a uniform int in [0, n).
type Source interface {
	Float64() float64
	IntN(n int) int
}

// NewSeeded returns a deterministic PCG source. Two sources built from the
// same seed produce the same sequence of draws.
func NewSeeded(seed uint64) Source {
	return mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// secureSource draws from a CSPRNG reader (crypto/rand outside tests).
type secureSource struct {
	r io.Reader
}

// NewSecure returns a source backed by crypto/rand. Runs built on it are not
// reproducible.
func NewSecure() Source {
	return secureSource{r: rand.Reader}
}

// Float64 and IntN panic if the reader fails.
func (s secureSource) Float64() float64 {
	var b [8]byte
	if _, err := io.ReadFull(s.r, b[:]); err != nil {
		panic(fmt.Sprintf("gamemath: read random bytes: %v", err))
	}
	// 53 random bits scaled into [0, 1).
	return float64(binary.LittleEndian.Uint64(b[:])>>11) / (1 << 53)
}

func (s secureSource) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(s.r, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("gamemath: draw random int: %v", err))
	}
	return int(v.Int64())
}

// Uniform returns an integer in [lo, hi). When hi <= lo it returns lo.
func Uniform(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.IntN(hi-lo)
}
