// SPDX-License-Identifier: MIT

// Package matrix provides element-wise operations on any Matrix
// implementation: addition, scalar scaling, L2 row normalisation and
// approximate equality. All functions validate first and return
// tagged sentinels on failure.
package matrix

import (
	"fmt"
	"math"
)

// Operation name constants for unified error wrapping.
const (
	opAdd             = "Add"
	opScale           = "Scale"
	opNormalizeRowsL2 = "NormalizeRowsL2"
	opAllClose        = "AllClose"
)

// matrixErrorf wraps an underlying error with the given tag.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// Add returns a new Dense containing the element-wise sum of a and b.
// Stage 1 (Validate): nil-checks and shape match.
// Stage 2 (Execute): flat loop on Dense buffers.
//
// Complexity: O(r·c) time and memory.
func Add(a, b Matrix) (*Dense, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opAdd, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opAdd, err)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return nil, matrixErrorf(opAdd, err)
	}

	da, err := asDense(a)
	if err != nil {
		return nil, matrixErrorf(opAdd, err)
	}
	db, err := asDense(b)
	if err != nil {
		return nil, matrixErrorf(opAdd, err)
	}
	res, err := NewDense(da.r, da.c)
	if err != nil {
		return nil, matrixErrorf(opAdd, err)
	}
	var idx int
	for idx = range res.data {
		res.data[idx] = da.data[idx] + db.data[idx]
	}

	return res, nil
}

// Scale returns a new Dense where each element of m is multiplied by alpha.
// Non-finite alpha is rejected with ErrNaNInf.
//
// Complexity: O(r·c).
func Scale(m Matrix, alpha float64) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return nil, matrixErrorf(opScale, ErrNaNInf)
	}

	dm, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	res, err := NewDense(dm.r, dm.c)
	if err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	var idx int
	for idx = range res.data {
		res.data[idx] = dm.data[idx] * alpha
	}

	return res, nil
}

// NormalizeRowsL2 divides every row by its L2 norm sqrt(Σ_j x_ij²).
// Rows with zero norm are copied unchanged. The row norms are returned
// alongside the normalised copy.
//
// Complexity: O(r·c) time, O(r·c + r) memory.
func NormalizeRowsL2(m Matrix) (*Dense, []float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, nil, matrixErrorf(opNormalizeRowsL2, err)
	}
	src, err := asDense(m)
	if err != nil {
		return nil, nil, matrixErrorf(opNormalizeRowsL2, err)
	}

	var (
		r, c  = src.r, src.c
		norms = make([]float64, r)
		i, j  int
		base  int
		sq, v float64
	)
	for i = 0; i < r; i++ {
		sq = 0
		base = i * c
		for j = 0; j < c; j++ {
			v = src.data[base+j]
			sq += v * v
		}
		norms[i] = math.Sqrt(sq)
	}

	out, err := NewDense(r, c)
	if err != nil {
		return nil, nil, matrixErrorf(opNormalizeRowsL2, err)
	}
	for i = 0; i < r; i++ {
		base = i * c
		for j = 0; j < c; j++ {
			if norms[i] > 0 {
				out.data[base+j] = src.data[base+j] / norms[i]
			} else {
				out.data[base+j] = src.data[base+j]
			}
		}
	}

	return out, norms, nil
}

// AllClose reports whether |a-b| ≤ atol + rtol*|b| holds element-wise.
// Negative tolerances are treated as their absolute value.
//
// Complexity: O(r·c) time, O(1) space.
func AllClose(a, b Matrix, rtol, atol float64) (bool, error) {
	if math.IsNaN(rtol) || math.IsNaN(atol) || math.IsInf(rtol, 0) || math.IsInf(atol, 0) {
		return false, matrixErrorf(opAllClose, ErrNaNInf)
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)
	if err := ValidateNotNil(a); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}

	var (
		i, j   int
		av, bv float64
		err    error
	)
	for i = 0; i < a.Rows(); i++ {
		for j = 0; j < a.Cols(); j++ {
			if av, err = a.At(i, j); err != nil {
				return false, matrixErrorf(opAllClose, err)
			}
			if bv, err = b.At(i, j); err != nil {
				return false, matrixErrorf(opAllClose, err)
			}
			if math.Abs(av-bv) > atol+rtol*math.Abs(bv) {
				return false, nil
			}
		}
	}

	return true, nil
}
