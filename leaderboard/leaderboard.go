// SPDX-License-Identifier: MIT

// Package leaderboard ranks the solutions reported in a round.
//
// TopK is recomputed from scratch every round: it scores every reported tour
// under the coordinator's fitness matrix and keeps the k cheapest tours that
// are structurally distinct. Entries with equal cost keep their input order,
// so the first reporter of a tour wins ties and owns duplicates.
package leaderboard

import (
	"errors"
	"fmt"
	"sort"

	"github.com/katalvlaran/stakesearch/matrix"
	"github.com/katalvlaran/stakesearch/tsp"
)

// DefaultK is the leaderboard size used when none is configured.
const DefaultK = 3

var (
	// ErrInvalidK is returned for a negative k.
	ErrInvalidK = errors.New("leaderboard: k must be non-negative")

	// ErrInvalidCandidate wraps a candidate whose tour cannot be scored.
	ErrInvalidCandidate = errors.New("leaderboard: invalid candidate")
)

// Candidate is one stakeholder's reported tour. A nil Solution means the
// stakeholder has not reported yet.
type Candidate struct {
	Name     string       `json:"name"`
	Solution tsp.Solution `json:"solution"`
}

// Standing is a ranked candidate.
type Standing struct {
	Candidate
	Cost float64 `json:"cost"`
}

// TopK returns at most k standings ordered by ascending cost under fitness,
// with no two structurally equal solutions. Candidates without a solution are
// skipped. Inputs are not modified; calling TopK twice on the same input
// returns the same result.
//
// Complexity: O(m·N) scoring + O(m log m) sort + O(m·k·N) deduplication for m
// candidates of N cities.
func TopK(candidates []Candidate, fitness matrix.Matrix, k int) ([]Standing, error) {
	if k < 0 {
		return nil, ErrInvalidK
	}
	if err := matrix.ValidateSquare(fitness); err != nil {
		return nil, fmt.Errorf("leaderboard: fitness: %w", err)
	}
	n := fitness.Rows()

	scored := make([]Standing, 0, len(candidates))
	for i, c := range candidates {
		if c.Solution == nil {
			continue
		}
		if err := c.Solution.Validate(n); err != nil {
			return nil, fmt.Errorf("candidate %d (%s): %w: %w", i, c.Name, ErrInvalidCandidate, err)
		}
		cost, err := tsp.Cost(fitness, c.Solution)
		if err != nil {
			return nil, fmt.Errorf("candidate %d (%s): %w: %w", i, c.Name, ErrInvalidCandidate, err)
		}
		scored = append(scored, Standing{
			Candidate: Candidate{Name: c.Name, Solution: c.Solution.Clone()},
			Cost:      cost,
		})
	}
	sort.SliceStable(scored, func(a, b int) bool { return scored[a].Cost < scored[b].Cost })

	top := make([]Standing, 0, k)
	for _, s := range scored {
		if len(top) == k {
			break
		}
		if contains(top, s.Solution) {
			continue
		}
		top = append(top, s)
	}

	return top, nil
}

func contains(top []Standing, s tsp.Solution) bool {
	for _, t := range top {
		if t.Solution.Equal(s) {
			return true
		}
	}

	return false
}

// Solutions extracts copies of the ranked tours, best first. The result is
// the seed population broadcast with the next round's Continue.
func Solutions(standings []Standing) []tsp.Solution {
	out := make([]tsp.Solution, len(standings))
	for i := range standings {
		out[i] = standings[i].Solution.Clone()
	}

	return out
}
