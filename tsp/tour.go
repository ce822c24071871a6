// SPDX-License-Identifier: MIT

// Package tsp - permutation utilities.
//
// Provided helpers:
//   - ValidatePermutation: verify a permutation over {0..n-1}.
//   - Inverse: position index pos[v] = i such that perm[i] == v.
//   - RotateToStart: cyclic shift so a given city comes first (display only).
//
// Design:
//   - No logging, no panics on user input; only sentinel errors from types.go.
//   - O(n) time; a single O(n) marker slice at most.
package tsp

// ValidatePermutation checks that perm is a permutation of {0..n-1} of length n.
//
// Complexity: O(n) time, O(n) space.
func ValidatePermutation(perm []int, n int) error {
	if n <= 0 || len(perm) != n {
		return ErrDimensionMismatch
	}
	seen := make([]bool, n)

	var (
		i int
		v int
	)
	for i = 0; i < n; i++ {
		v = perm[i]
		if v < 0 || v >= n {
			return ErrDimensionMismatch
		}
		if seen[v] {
			return ErrDimensionMismatch
		}
		seen[v] = true
	}

	return nil
}

// Inverse returns pos with pos[perm[i]] == i.
// perm must already be a valid permutation; otherwise ErrDimensionMismatch.
//
// Complexity: O(n).
func Inverse(perm []int) ([]int, error) {
	if err := ValidatePermutation(perm, len(perm)); err != nil {
		return nil, err
	}
	pos := make([]int, len(perm))
	var i int
	for i = range perm {
		pos[perm[i]] = i
	}

	return pos, nil
}

// RotateToStart returns a copy of s shifted so that out[0] == start.
// The cyclic order (and therefore the cost) is unchanged.
//
// Complexity: O(n).
func RotateToStart(s Solution, start int) (Solution, error) {
	var (
		n     = len(s)
		i     int
		pivot = -1
	)
	for i = 0; i < n; i++ {
		if s[i] == start {
			pivot = i
			break
		}
	}
	if pivot == -1 {
		return nil, ErrDimensionMismatch
	}
	out := make(Solution, n)
	for i = 0; i < n; i++ {
		out[i] = s[(pivot+i)%n]
	}

	return out, nil
}
