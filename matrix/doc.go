// SPDX-License-Identifier: MIT

// Package matrix provides the dense numeric tables the stakeholder search is
// built on: distance and time lookup tables, their row-normalised variants and
// the per-party weighted blends used as fitness matrices.
//
// The package exposes:
//
//   - Matrix: a minimal interface (Rows, Cols, At, Set, Clone) so algorithms
//     can be tested against tiny hand-written implementations.
//   - Dense: a row-major implementation with bounds-checked accessors and a
//     JSON form ([][]float64) used on the wire.
//   - Add, Scale: element-wise algebra needed for weighting.
//   - NormalizeRowsL2: divides each row by its L2 norm (zero rows unchanged).
//   - AllClose and the Validate* helpers for shape, symmetry and diagonal checks.
//
// All functions return sentinel errors (see errors.go) and never panic on user
// input. Dense fast-paths operate on the flat buffer directly; any other
// Matrix falls back to At/Set.
//
// Complexity:
//   - At/Set: O(1); Clone, Add, Scale, NormalizeRowsL2: O(r*c).
package matrix
