// SPDX-License-Identifier: MIT

package tsp

import (
	"math"

	"github.com/katalvlaran/stakesearch/matrix"
)

// MaxExact is the largest instance Exact accepts. The DP table holds
// n·2ⁿ float64 values, so 16 cities cost ~8 MiB.
const MaxExact = 16

// Exact solves the instance optimally using the Held–Karp dynamic program.
//
// m may be asymmetric. +Inf entries mean "no arc" and are skipped; if no
// Hamiltonian cycle survives, ErrIncompleteGraph is returned. The result is an
// open permutation starting at city 0 together with its rounded cost.
//
// dp[mask][j] is the minimum cost to start at 0, visit exactly the cities in
// mask (bit 0 always set), and end at j. The tour is closed by the arc j→0.
//
// Time complexity:   O(n² · 2ⁿ)
// Memory complexity: O(n · 2ⁿ)
func Exact(m matrix.Matrix) (Solution, float64, error) {
	if err := matrix.ValidateSquare(m); err != nil {
		return nil, 0, ErrNonSquare
	}
	n := m.Rows()
	if n > MaxExact {
		return nil, 0, ErrTooLarge
	}

	// Prefetch weights into w[i*n+j] with sentinel checks.
	w := make([]float64, n*n)
	{
		var (
			i, j int
			x    float64
			err  error
		)
		for i = 0; i < n; i++ {
			for j = 0; j < n; j++ {
				if x, err = m.At(i, j); err != nil || math.IsNaN(x) {
					return nil, 0, ErrDimensionMismatch
				}
				if x < 0 {
					return nil, 0, ErrNegativeWeight
				}
				w[i*n+j] = x
			}
		}
	}

	if n == 1 {
		return Solution{0}, round1e9(w[0]), nil
	}

	var (
		allMask = (1 << n) - 1
		size    = 1 << n
		inf     = math.Inf(1)
	)
	dp := make([]float64, size*n)
	parent := make([]int, size*n)
	var idx int
	for idx = range dp {
		dp[idx] = inf
		parent[idx] = -1
	}
	dp[1*n+0] = 0

	var (
		mask, prev int
		j, k       int
		c, cand    float64
	)
	for mask = 1; mask <= allMask; mask += 2 { // odd masks contain city 0
		for j = 1; j < n; j++ {
			if mask&(1<<j) == 0 {
				continue
			}
			prev = mask ^ (1 << j)
			for k = 0; k < n; k++ {
				if prev&(1<<k) == 0 || math.IsInf(dp[prev*n+k], 1) {
					continue
				}
				c = w[k*n+j]
				if math.IsInf(c, 1) {
					continue
				}
				cand = dp[prev*n+k] + c
				if cand < dp[mask*n+j] {
					dp[mask*n+j] = cand
					parent[mask*n+j] = k
				}
			}
		}
	}

	best := inf
	last := -1
	for j = 1; j < n; j++ {
		c = w[j*n+0]
		if math.IsInf(c, 1) {
			continue
		}
		if cand = dp[allMask*n+j] + c; cand < best {
			best = cand
			last = j
		}
	}
	if last < 0 {
		return nil, 0, ErrIncompleteGraph
	}

	tour := make(Solution, n)
	mask = allMask
	j = last
	var pos int
	for pos = n - 1; pos >= 1; pos-- {
		tour[pos] = j
		k = parent[mask*n+j]
		mask ^= 1 << j
		j = k
	}
	tour[0] = 0

	return tour, round1e9(best), nil
}
