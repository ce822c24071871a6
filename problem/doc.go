// SPDX-License-Identifier: MIT

// Package problem derives the lookup tables of a stakeholder-weighted TSP
// instance from raw city data.
//
// An Instance is built once from an ordered list of cities and is read-only
// afterwards. It carries four n×n tables:
//
//   - Distance: Euclidean distance between cities i and j.
//   - Time: Distance(i,j)·terrain(i)·terrain(j).
//   - NormDistance, NormTime: the above with every row divided by its L2 norm.
//
// Distance and Time are symmetric with a zero diagonal. The normalised
// variants keep the zero diagonal but are in general NOT symmetric, because
// each row is scaled by its own norm.
//
// Every party of a run (the coordinator and each stakeholder) blends the
// normalised tables with its own Weights into a fitness matrix:
//
//	W = w.Distance·NormDistance + w.Time·NormTime
//
// so the same tour scores differently per party.
package problem
