// SPDX-License-Identifier: MIT

package ga

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/alitto/pond"

	"github.com/katalvlaran/stakesearch/matrix"
	"github.com/katalvlaran/stakesearch/tsp"
)

// Evolver is the default Engine: a generational GA with cascade crossover,
// configurable selection and mutation, and elitism.
//
// Each generation:
//  1. costs of all individuals are evaluated in parallel on a pond pool;
//  2. the population is sorted by cost and the best tour is recorded;
//  3. the search stops here if the budget is spent, stop is set or ctx is done;
//  4. ParentsMating parents are selected, Cascade produces the offspring,
//     each offspring is mutated with MutationProbability;
//  5. the next generation is the KeepParents best plus the offspring.
type Evolver struct {
	opts Options
	rng  *rand.Rand
}

// NewEvolver validates opts and returns an Evolver seeded from opts.Seed.
func NewEvolver(opts Options) (*Evolver, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return &Evolver{opts: opts, rng: tsp.NewRNG(opts.Seed)}, nil
}

// Options returns the configuration the Evolver was built with.
func (e *Evolver) Options() Options { return e.opts }

// Run implements Engine.
//
// Usable tours from initial seed the first generation (invalid ones are
// dropped, the rest trimmed to the cheapest PopulationSize); random tours fill
// the remainder. Cancelling ctx behaves like setting stop: the best tour so far
// is returned with a nil error. Cost failures are wrapped in ErrSearchFailed.
func (e *Evolver) Run(ctx context.Context, fitness matrix.Matrix, initial Population, stop *Flag) (Population, tsp.Solution, error) {
	if err := matrix.ValidateSquare(fitness); err != nil {
		return nil, nil, fmt.Errorf("%w: %w: %w", ErrSearchFailed, ErrEmptyPopulation, err)
	}
	n := fitness.Rows()
	if n == 1 {
		only := tsp.Solution{0}
		return Population{only}, only.Clone(), nil
	}
	pl := e.opts.resolve(n)

	pop, err := Population(nil).Merge(initial, pl.popSize, fitness)
	if err != nil {
		return nil, nil, err
	}
	var s tsp.Solution
	for len(pop) < pl.popSize {
		if s, err = tsp.RandomSolution(n, e.rng); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
		}
		pop = append(pop, s)
	}

	pool := pond.New(pl.workers, pl.popSize)
	defer pool.StopAndWait()

	var (
		costs    = make([]float64, pl.popSize)
		errs     = make([]error, pl.popSize)
		best     tsp.Solution
		bestCost = math.Inf(1)
		gen      int
	)
	for gen = 0; ; gen++ {
		group := pool.Group()
		for i := range pop {
			group.Submit(func() {
				costs[i], errs[i] = tsp.Cost(fitness, pop[i])
			})
		}
		group.Wait()
		for i := range errs {
			if errs[i] != nil {
				return nil, nil, fmt.Errorf("%w: generation %d: %w", ErrSearchFailed, gen, errs[i])
			}
		}
		sortByCost(pop, costs)

		if costs[0] < bestCost {
			bestCost = costs[0]
			best = pop[0].Clone()
		}
		if e.opts.OnGeneration != nil {
			e.opts.OnGeneration(gen, best, bestCost)
		}

		if gen+1 >= pl.generations || stop.IsSet() || ctx.Err() != nil {
			break
		}

		pop, err = e.breed(pop, pl)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: generation %d: %w", ErrSearchFailed, gen, err)
		}
	}

	if e.opts.PolishTwoOpt {
		polished, c, err := tsp.TwoOpt(fitness, best, 0)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: polish: %w", ErrSearchFailed, err)
		}
		if c < bestCost {
			best = polished
			pop[0] = polished.Clone()
		}
	}

	return pop, best, nil
}

// breed builds the next generation from a population sorted by cost.
func (e *Evolver) breed(pop Population, pl plan) (Population, error) {
	picks := selectParents(e.opts.Selection, len(pop), pl.parents, e.rng)
	parents := make(Population, len(picks))
	for i, idx := range picks {
		parents[i] = pop[idx]
	}

	offspring, err := Cascade(parents, pl.popSize-pl.keep, e.rng)
	if err != nil {
		return nil, err
	}
	for _, child := range offspring {
		if e.rng.Float64() < e.opts.MutationProbability {
			mutate(e.opts.Mutation, child, e.rng)
		}
	}

	next := make(Population, 0, pl.popSize)
	for i := 0; i < pl.keep; i++ {
		next = append(next, pop[i].Clone())
	}

	return append(next, offspring...), nil
}

// sortByCost sorts pop and costs together, ascending and stable.
func sortByCost(pop Population, costs []float64) {
	idx := make([]int, len(pop))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return costs[idx[a]] < costs[idx[b]] })

	sp := make(Population, len(pop))
	sc := make([]float64, len(costs))
	for i, j := range idx {
		sp[i] = pop[j]
		sc[i] = costs[j]
	}
	copy(pop, sp)
	copy(costs, sc)
}
