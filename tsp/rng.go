// SPDX-License-Identifier: MIT

// Package tsp - RNG utilities shared by the evolutionary engine and tests.
//
// Goals:
//   - Determinism: same seed ⇒ identical results across platforms.
//   - Encapsulation: a single RNG factory; no time-based sources hidden anywhere.
//
// Concurrency:
//   - math/rand.Rand is NOT goroutine-safe. Do not share a *rand.Rand across goroutines.
//   - Use DeriveRNG to create independent streams for stakeholders or workers.
package tsp

import "math/rand"

// defaultRNGSeed is the fixed “zero” seed used when callers pass seed==0.
const defaultRNGSeed int64 = 1

// NewRNG returns a deterministic *rand.Rand.
// Policy: seed==0 ⇒ use defaultRNGSeed; otherwise use the provided seed verbatim.
func NewRNG(seed int64) *rand.Rand {
	var s = seed
	if s == 0 {
		s = defaultRNGSeed
	}

	return rand.New(rand.NewSource(s))
}

// deriveSeed mixes a parent seed and a stream identifier into a new 64-bit seed
// with a SplitMix64-style finalizer.
func deriveSeed(parent int64, stream uint64) int64 {
	var x uint64
	x = uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return int64(x)
}

// DeriveRNG creates an independent deterministic RNG stream from a base seed
// and a stream identifier (e.g. stakeholder index, worker index).
//
// Complexity: O(1).
func DeriveRNG(seed int64, stream uint64) *rand.Rand {
	var parent = seed
	if parent == 0 {
		parent = defaultRNGSeed
	}

	return rand.New(rand.NewSource(deriveSeed(parent, stream)))
}

// shuffleInPlace performs an in-place Fisher–Yates shuffle of a using rng.
func shuffleInPlace(a []int, rng *rand.Rand) {
	var (
		i, j int
		r    = rng
	)
	if r == nil {
		r = NewRNG(0)
	}
	for i = len(a) - 1; i > 0; i-- {
		j = r.Intn(i + 1)
		a[i], a[j] = a[j], a[i]
	}
}

// RandomSolution returns a uniformly random permutation of 0..n-1.
// For n<=0 it returns ErrDimensionMismatch.
//
// Complexity: O(n).
func RandomSolution(n int, rng *rand.Rand) (Solution, error) {
	if n <= 0 {
		return nil, ErrDimensionMismatch
	}
	s := make(Solution, n)
	var i int
	for i = 0; i < n; i++ {
		s[i] = i
	}
	shuffleInPlace(s, rng)

	return s, nil
}
