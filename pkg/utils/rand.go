package utils

import (
	"math/rand"
	"time"
)

// RandSource wraps a seeded generator. It is not safe for concurrent use;
// give every worker or trial its own source.
type RandSource struct {
	seed int64
	rng  *rand.Rand
}

// NewRandSource creates a new random source with the given seed.
// A zero seed is replaced with a time-based one.
func NewRandSource(seed int64) *RandSource {
	seed = ResolveSeed(seed)
	return &RandSource{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// ResolveSeed returns seed unchanged unless it is zero, in which case a
// time-based seed is returned.
func ResolveSeed(seed int64) int64 {
	for seed == 0 {
		seed = time.Now().UnixNano()
	}
	return seed
}

// Seed returns the seed the source was created with.
func (r *RandSource) Seed() int64 {
	return r.seed
}

// Float64 returns a random float64 in [0.0, 1.0)
func (r *RandSource) Float64() float64 {
	return r.rng.Float64()
}

// Intn returns a random int in [0, n)
func (r *RandSource) Intn(n int) int {
	return r.rng.Intn(n)
}

// BernoulliBool returns true with probability p, false otherwise.
// p >= 1 always succeeds and p <= 0 never does.
func (r *RandSource) BernoulliBool(p float64) bool {
	return r.rng.Float64() < p
}

// DeriveSeed mixes a base seed with a stream of indices into a new non-zero
// seed (SplitMix64 finalizer). Identical inputs always give identical seeds.
func DeriveSeed(base int64, indices ...int) int64 {
	x := uint64(base)
	for _, idx := range indices {
		x = splitMix64(x ^ splitMix64(uint64(idx)+0x9e3779b97f4a7c15))
	}
	if x == 0 {
		x = 0x9e3779b97f4a7c15
	}
	return int64(x)
}

func splitMix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
