// SPDX-License-Identifier: MIT

package stakeholder

import (
	"context"

	"github.com/katalvlaran/stakesearch/ga"
	"github.com/katalvlaran/stakesearch/matrix"
	"github.com/katalvlaran/stakesearch/tsp"
)

// command hands the worker a new problem (fitness != nil) or seeds for the
// current one.
type command struct {
	fitness *matrix.Dense
	seeds   ga.Population
}

// worker owns the population. Everything below is touched only by loop.
type worker struct {
	engine ga.Engine
	flag   *ga.Flag
	cmds   <-chan command
	reqs   <-chan chan tsp.Solution

	fitness    *matrix.Dense
	population ga.Population
	best       tsp.Solution
}

// loop searches while the flag is clear and a problem is loaded, and serves
// handoffs in between. It returns nil when ctx ends and the engine's error
// when a search fails.
func (w *worker) loop(ctx context.Context) error {
	for {
		if w.fitness != nil && !w.flag.IsSet() {
			if err := w.search(ctx); err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return nil
			case cmd := <-w.cmds:
				if err := w.apply(cmd); err != nil {
					return err
				}
			case reply := <-w.reqs:
				if err := w.answer(ctx, reply); err != nil {
					return err
				}
			default:
			}
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case cmd := <-w.cmds:
			if err := w.apply(cmd); err != nil {
				return err
			}
		case reply := <-w.reqs:
			if err := w.answer(ctx, reply); err != nil {
				return err
			}
		case <-w.flag.Cleared():
		}
	}
}

func (w *worker) search(ctx context.Context) error {
	pop, best, err := w.engine.Run(ctx, w.fitness, w.population, w.flag)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	if best != nil {
		w.population, w.best = pop, best
	}

	return nil
}

func (w *worker) apply(cmd command) error {
	if cmd.fitness != nil {
		w.fitness, w.population, w.best = cmd.fitness, nil, nil
		return nil
	}
	if w.fitness == nil || len(cmd.seeds) == 0 {
		return nil
	}
	merged, err := w.population.Merge(cmd.seeds, 0, w.fitness)
	if err != nil {
		return err
	}
	w.population = merged

	return nil
}

// answer replies with the best tour, running one search first if none has
// finished since the problem arrived. The flag is raised at this point, so
// that search stops after its first generation.
func (w *worker) answer(ctx context.Context, reply chan tsp.Solution) error {
	if w.best == nil && w.fitness != nil {
		if err := w.search(ctx); err != nil {
			return err
		}
	}
	reply <- w.best.Clone()

	return nil
}
