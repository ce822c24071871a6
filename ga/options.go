// SPDX-License-Identifier: MIT

package ga

import (
	"fmt"
	"math"
	"runtime"

	"github.com/katalvlaran/stakesearch/tsp"
)

// Options configures an Evolver. Zero values of Generations, ParentsMating and
// Workers are resolved per instance size at Run time.
type Options struct {
	// PopulationSize is the number of individuals per generation.
	PopulationSize int

	// Generations caps one search; 0 ⇒ 10·N.
	Generations int

	// ParentsMating is the size of the parent pool; 0 ⇒ max(2, N/2).
	ParentsMating int

	// KeepParents best individuals survive unchanged into the next generation.
	// Clamped to [1, ParentsMating] so the best cost never increases.
	KeepParents int

	Selection           Selection
	Mutation            Mutation
	MutationProbability float64

	// PolishTwoOpt runs tsp.TwoOpt on the best tour before it is returned.
	PolishTwoOpt bool

	// Workers sizes the fitness evaluation pool; 0 ⇒ runtime.NumCPU().
	Workers int

	// Seed drives every random choice; 0 selects a fixed default.
	Seed int64

	// OnGeneration, when set, is called after each evaluated generation with
	// the generation index and the best tour so far.
	OnGeneration func(gen int, best tsp.Solution, cost float64)
}

// DefaultOptions mirrors the reference GA configuration: 200 individuals,
// 10·N generations, steady-state selection, 5 kept parents, inversion
// mutation with probability 0.75.
func DefaultOptions() Options {
	return Options{
		PopulationSize:      200,
		KeepParents:         5,
		Selection:           SteadyState,
		Mutation:            Inversion,
		MutationProbability: 0.75,
	}
}

// Validate rejects options no search can run with.
func (o Options) Validate() error {
	switch {
	case o.PopulationSize < 2:
		return fmt.Errorf("population size %d: %w", o.PopulationSize, ErrInvalidOptions)
	case o.Generations < 0:
		return fmt.Errorf("generations %d: %w", o.Generations, ErrInvalidOptions)
	case o.ParentsMating < 0 || o.ParentsMating == 1:
		return fmt.Errorf("parents mating %d: %w", o.ParentsMating, ErrInvalidOptions)
	case o.KeepParents < 0:
		return fmt.Errorf("keep parents %d: %w", o.KeepParents, ErrInvalidOptions)
	case o.Selection < SteadyState || o.Selection > Random:
		return fmt.Errorf("selection %d: %w", o.Selection, ErrInvalidOptions)
	case o.Mutation < Inversion || o.Mutation > RandomReset:
		return fmt.Errorf("mutation %d: %w", o.Mutation, ErrInvalidOptions)
	case math.IsNaN(o.MutationProbability) || o.MutationProbability < 0 || o.MutationProbability > 1:
		return fmt.Errorf("mutation probability %v: %w", o.MutationProbability, ErrInvalidOptions)
	case o.Workers < 0:
		return fmt.Errorf("workers %d: %w", o.Workers, ErrInvalidOptions)
	}

	return nil
}

// plan is Options resolved for one instance size.
type plan struct {
	popSize, generations, parents, keep, workers int
}

func (o Options) resolve(n int) plan {
	p := plan{
		popSize:     o.PopulationSize,
		generations: o.Generations,
		parents:     o.ParentsMating,
		keep:        o.KeepParents,
		workers:     o.Workers,
	}
	if p.generations == 0 {
		p.generations = 10 * n
	}
	if p.parents == 0 {
		p.parents = n / 2
		if p.parents < 2 {
			p.parents = 2
		}
	}
	if p.parents > p.popSize {
		p.parents = p.popSize
	}
	if p.keep > p.parents {
		p.keep = p.parents
	}
	if p.keep < 1 {
		p.keep = 1
	}
	if p.workers == 0 {
		p.workers = runtime.NumCPU()
	}

	return p
}
