// SPDX-License-Identifier: MIT

// Package tsp - cost utilities.
//
// Cost sums a closed tour given as an open permutation: consecutive pairs
// s[i]→s[i+1] plus the wrap edge s[n-1]→s[0].
//
// Design:
//   - Allocation-free O(n) scan through the matrix.Matrix interface.
//   - Strict sentinels on any invalid input (shape, NaN/Inf, negative).
//   - Stable summation: rounded to 1e-9 to avoid cross-platform FP noise.
package tsp

import (
	"math"

	"github.com/katalvlaran/stakesearch/matrix"
)

// roundScale controls final cost stabilization precision (1e-9).
const roundScale = 1e9

// Cost returns the cyclic cost of s under m.
//
// Contract:
//   - m is n×n and s has length n with indices in [0..n-1]. Cost does not
//     re-check that s is a permutation; use Solution.Validate for that.
//   - Returns ErrNonSquare, ErrDimensionMismatch, ErrIncompleteGraph or
//     ErrNegativeWeight.
//
// Complexity: O(n).
func Cost(m matrix.Matrix, s Solution) (float64, error) {
	if err := matrix.ValidateSquare(m); err != nil {
		return 0, ErrNonSquare
	}
	var n = m.Rows()
	if len(s) != n {
		return 0, ErrDimensionMismatch
	}

	var (
		sum float64
		w   float64
		err error
		i   int
	)
	for i = 0; i < n; i++ {
		if w, err = edgeCost(m, s[i], s[(i+1)%n]); err != nil {
			return 0, err
		}
		sum += w
	}

	return round1e9(sum), nil
}

// MustCost is Cost for callers that already validated both inputs; it maps
// any error to +Inf so such a tour never wins a comparison.
func MustCost(m matrix.Matrix, s Solution) float64 {
	c, err := Cost(m, s)
	if err != nil {
		return math.Inf(1)
	}

	return c
}

// edgeCost fetches the weight for a single directed edge u→v with strict validation.
//
// Complexity: O(1).
func edgeCost(m matrix.Matrix, u, v int) (float64, error) {
	var n = m.Rows()
	if u < 0 || u >= n || v < 0 || v >= n {
		return 0, ErrDimensionMismatch
	}

	w, err := m.At(u, v)
	if err != nil {
		return 0, ErrDimensionMismatch
	}
	if math.IsNaN(w) {
		return 0, ErrDimensionMismatch
	}
	if math.IsInf(w, 0) {
		return 0, ErrIncompleteGraph
	}
	if w < 0 {
		return 0, ErrNegativeWeight
	}

	return w, nil
}

// round1e9 returns x rounded to 1e-9 absolute precision.
func round1e9(x float64) float64 {
	return math.Round(x*roundScale) / roundScale
}
