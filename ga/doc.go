// SPDX-License-Identifier: MIT

// Package ga is the evolutionary search capability a stakeholder runs between
// coordinator rounds.
//
// The package defines:
//
//   - Engine: the contract a search engine satisfies. Run takes a fitness
//     matrix, an optional initial population and a shared Flag; it returns
//     the final population and the best tour found.
//   - Flag: the round-scoped cancellation token. Engines poll it at every
//     generation boundary and return their current best as soon as it is set.
//   - Cascade / CascadeChild: the duplicate-free crossover. A child is a copy
//     of one parent with a single gene taken from another; the resulting
//     duplicate is resolved by walking one permutation cycle (≤ N steps).
//   - Evolver: the default Engine. Fitness of a generation is evaluated on a
//     github.com/alitto/pond worker pool; selection, mutation and elitism
//     follow Options.
//
// Evolver is not safe for concurrent Run calls; each stakeholder owns one.
package ga
