// SPDX-License-Identifier: MIT

package ga

import (
	"context"
	"errors"

	"github.com/katalvlaran/stakesearch/matrix"
	"github.com/katalvlaran/stakesearch/tsp"
)

var (
	// ErrTooFewParents is returned by Cascade when fewer than two parents are given.
	ErrTooFewParents = errors.New("ga: crossover needs at least two parents")

	// ErrInvalidParent indicates a parent that is not a permutation of the
	// common length, or a swap position outside it.
	ErrInvalidParent = errors.New("ga: invalid parent")

	// ErrEmptyPopulation is returned when a search has nothing to work on (n < 1).
	ErrEmptyPopulation = errors.New("ga: empty population")

	// ErrSearchFailed wraps any failure inside a search (cost evaluation,
	// local search). It is fatal for the stakeholder that owns the engine.
	ErrSearchFailed = errors.New("ga: search failed")

	// ErrInvalidOptions signals an Options value rejected by Validate.
	ErrInvalidOptions = errors.New("ga: invalid options")
)

// Population is an ordered collection of tours of equal length.
type Population []tsp.Solution

// Clone deep-copies the population.
func (p Population) Clone() Population {
	if p == nil {
		return nil
	}
	out := make(Population, len(p))
	for i := range p {
		out[i] = p[i].Clone()
	}

	return out
}

// Engine is the evolutionary search capability.
//
// Run evolves a population under fitness (lower cost is better) until its
// own budget is exhausted, ctx is cancelled, or stop is set. It must poll
// stop at every generation boundary and, once set, return promptly with the
// best tour found so far. initial may be nil or contain tours of the wrong
// length; engines discard what they cannot use.
type Engine interface {
	Run(ctx context.Context, fitness matrix.Matrix, initial Population, stop *Flag) (Population, tsp.Solution, error)
}

// Selection picks the parents of the next generation.
type Selection int

const (
	// SteadyState takes the best ParentsMating individuals.
	SteadyState Selection = iota
	// Tournament runs one 3-way tournament per parent slot.
	Tournament
	// Rank draws parents with probability proportional to inverse rank.
	Rank
	// Random draws parents uniformly.
	Random
)

var selectionNames = [...]string{"sss", "tournament", "rank", "random"}

// String returns the short name used on the command line.
func (s Selection) String() string {
	if s < 0 || int(s) >= len(selectionNames) {
		return "unknown"
	}

	return selectionNames[s]
}

// ParseSelection maps a short name back to a Selection.
func ParseSelection(name string) (Selection, error) {
	for i, n := range selectionNames {
		if n == name {
			return Selection(i), nil
		}
	}

	return 0, ErrInvalidOptions
}

// Mutation perturbs an offspring in place.
type Mutation int

const (
	// Inversion reverses a random segment.
	Inversion Mutation = iota
	// Swap exchanges two random positions.
	Swap
	// Scramble shuffles a random segment.
	Scramble
	// RandomReset writes a random city into a random position and moves the
	// displaced city to where the written one used to be.
	RandomReset
)

var mutationNames = [...]string{"inversion", "swap", "scramble", "random"}

// String returns the short name used on the command line.
func (m Mutation) String() string {
	if m < 0 || int(m) >= len(mutationNames) {
		return "unknown"
	}

	return mutationNames[m]
}

// ParseMutation maps a short name back to a Mutation.
func ParseMutation(name string) (Mutation, error) {
	for i, n := range mutationNames {
		if n == name {
			return Mutation(i), nil
		}
	}

	return 0, ErrInvalidOptions
}
