// SPDX-License-Identifier: MIT

// Package tsp provides the tour primitives shared by every party of the
// stakeholder search.
//
// A tour is represented as an open permutation (Solution) of all city indices;
// the closing edge last→first is implied. On top of that representation the
// package offers:
//
//   - ValidatePermutation / Solution.Validate: set(s) == {0..n-1} checks.
//   - Cost: cyclic tour cost under any matrix.Matrix, wrapping last→first.
//   - RandomSolution, NewRNG, DeriveRNG: deterministic random tours and
//     independent RNG streams for parallel workers.
//   - Exact: Held–Karp optimum for small instances (n ≤ MaxExact), asymmetric
//     matrices included. Used to verify searches against the true optimum.
//   - TwoOpt: first-improvement 2-opt local search. The move delta re-costs
//     the reversed segment, so it is exact on asymmetric matrices too.
//
// Costs are rounded to 1e-9 to keep comparisons stable across platforms.
// All functions return sentinel errors from types.go; none of them log.
package tsp
