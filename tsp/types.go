// SPDX-License-Identifier: MIT

package tsp

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDimensionMismatch signals a tour whose length or contents do not match
	// the instance size (out-of-range index, duplicate, wrong length).
	ErrDimensionMismatch = errors.New("tsp: dimension mismatch")

	// ErrNonSquare is returned when a cost matrix is not n×n.
	ErrNonSquare = errors.New("tsp: matrix is not square")

	// ErrIncompleteGraph is returned when a required edge weight is ±Inf.
	ErrIncompleteGraph = errors.New("tsp: incomplete distance matrix")

	// ErrNegativeWeight is returned when a traversed edge weight is negative.
	ErrNegativeWeight = errors.New("tsp: negative edge weight")

	// ErrTooLarge is returned by Exact when n exceeds MaxExact.
	ErrTooLarge = errors.New("tsp: instance too large for exact solver")
)

// Solution is a permutation of all city indices. The closing edge from the
// last element back to the first is implicit.
type Solution []int

// Validate checks that s is a permutation of {0..n-1}.
func (s Solution) Validate(n int) error {
	return ValidatePermutation(s, n)
}

// Clone returns an independent copy (nil stays nil).
func (s Solution) Clone() Solution {
	if s == nil {
		return nil
	}
	out := make(Solution, len(s))
	copy(out, s)

	return out
}

// Equal reports structural equality: same length and same value at every position.
// Rotations of the same cycle are NOT equal under this definition.
func (s Solution) Equal(other Solution) bool {
	if len(s) != len(other) {
		return false
	}
	var i int
	for i = range s {
		if s[i] != other[i] {
			return false
		}
	}

	return true
}

// String renders the permutation as "[a b c]".
func (s Solution) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range s {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d", v)
	}
	b.WriteByte(']')

	return b.String()
}
