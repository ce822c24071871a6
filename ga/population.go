// SPDX-License-Identifier: MIT

package ga

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/stakesearch/matrix"
	"github.com/katalvlaran/stakesearch/tsp"
)

// Merge folds seeds into p and trims the result to at most limit tours,
// keeping the cheapest under fitness.
//
// Seeds that are not permutations of the fitness size, or that are
// structurally equal to a tour already present, are dropped. Surviving seeds
// are appended after p's tours, so on equal cost the resident tour ranks
// first. limit ≤ 0 disables trimming. p and seeds are not modified.
//
// Complexity: O((|p|+|seeds|)·N + (|p|+|seeds|)·log) plus O(|seeds|·|p|·N)
// for the duplicate check.
func (p Population) Merge(seeds Population, limit int, fitness matrix.Matrix) (Population, error) {
	if err := matrix.ValidateSquare(fitness); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}
	n := fitness.Rows()

	out := make(Population, 0, len(p)+len(seeds))
	for _, s := range p {
		if s.Validate(n) == nil {
			out = append(out, s.Clone())
		}
	}
	for _, s := range seeds {
		if s.Validate(n) != nil || containsSolution(out, s) {
			continue
		}
		out = append(out, s.Clone())
	}
	if limit <= 0 || len(out) <= limit {
		return out, nil
	}

	costs := make([]float64, len(out))
	var (
		i   int
		err error
	)
	for i = range out {
		if costs[i], err = tsp.Cost(fitness, out[i]); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
		}
	}
	idx := make([]int, len(out))
	for i = range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return costs[idx[a]] < costs[idx[b]] })

	trimmed := make(Population, limit)
	for i = 0; i < limit; i++ {
		trimmed[i] = out[idx[i]]
	}

	return trimmed, nil
}

func containsSolution(p Population, s tsp.Solution) bool {
	for _, q := range p {
		if q.Equal(s) {
			return true
		}
	}

	return false
}
