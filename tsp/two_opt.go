// SPDX-License-Identifier: MIT

// Package tsp - 2-opt local search.
//
// TwoOpt performs deterministic first-improvement 2-opt on a cyclic tour
// given as an open permutation. A move reverses the segment T[i..k] and
// replaces arcs (a→b),(c→d) with (a→c),(b→d), where a=T[i−1], b=T[i],
// c=T[k], d=T[k+1] (indices taken on the closed tour, T[n]=T[0]).
//
// On an asymmetric matrix the arcs inside the reversed segment change
// direction too, so Δ includes Σ w(T[p+1],T[p]) − Σ w(T[p],T[p+1]) over the
// segment. Symmetric instances pay the same O(k−i) for that term.
//
// Complexity:
//   - One pass: O(n³) worst case; first-improvement restarts after each move.
//   - Extra space: O(n²) for the prefetched weights.
package tsp

import (
	"math"

	"github.com/katalvlaran/stakesearch/matrix"
)

// twoOptEps is the minimum improvement a move must achieve to be accepted.
const twoOptEps = 1e-12

// TwoOpt improves a copy of s and returns the local optimum reached
// (or the tour after maxIters accepted moves when maxIters > 0) together with
// its rounded cost. s itself is never modified.
func TwoOpt(m matrix.Matrix, s Solution, maxIters int) (Solution, float64, error) {
	if err := matrix.ValidateSquare(m); err != nil {
		return nil, 0, ErrNonSquare
	}
	n := m.Rows()
	if err := s.Validate(n); err != nil {
		return nil, 0, err
	}
	cost, err := Cost(m, s)
	if err != nil {
		return nil, 0, err
	}

	// Prefetch weights into w[i*n+j]; Cost already rejected bad arcs on the
	// current tour, +Inf elsewhere just disqualifies candidate moves.
	w := make([]float64, n*n)
	{
		var (
			i, j int
			x    float64
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
	at := func(u, v int) float64 { return w[u*n+v] }

	cur := make([]int, n+1)
	copy(cur, s)
	cur[n] = cur[0]
	if n < 3 {
		return Solution(cur[:n]), cost, nil
	}

	accepted := 0
	for {
		improved := false

		var (
			a, b, c, d int
			i, k, p    int
			oldArcs    float64
			newArcs    float64
			delta      float64
		)
	scan:
		for i = 1; i <= n-2; i++ {
			for k = i + 1; k <= n-1; k++ {
				a, b, c, d = cur[i-1], cur[i], cur[k], cur[k+1]
				oldArcs = at(a, b) + at(c, d)
				newArcs = at(a, c) + at(b, d)
				for p = i; p < k; p++ {
					oldArcs += at(cur[p], cur[p+1])
					newArcs += at(cur[p+1], cur[p])
				}
				if math.IsInf(newArcs, 1) {
					continue
				}
				delta = newArcs - oldArcs
				if delta >= -twoOptEps {
					continue
				}

				reverseInPlace(cur, i, k)
				accepted++
				improved = true
				if maxIters > 0 && accepted >= maxIters {
					return finishTwoOpt(m, cur[:n])
				}

				break scan
			}
		}
		if !improved {
			break
		}
	}

	return finishTwoOpt(m, cur[:n])
}

// finishTwoOpt returns a detached copy of tour with its rounded cost.
func finishTwoOpt(m matrix.Matrix, tour []int) (Solution, float64, error) {
	out := Solution(tour).Clone()
	c, err := Cost(m, out)
	if err != nil {
		return nil, 0, err
	}

	return out, c, nil
}

// reverseInPlace reverses a[i..k] inclusive.
func reverseInPlace(a []int, i, k int) {
	for i < k {
		a[i], a[k] = a[k], a[i]
		i++
		k--
	}
}
