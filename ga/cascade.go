// SPDX-License-Identifier: MIT

package ga

import (
	"fmt"
	"math/rand"

	"github.com/katalvlaran/stakesearch/tsp"
)

// CascadeChild builds one offspring of p1 and p2 around position pos.
//
// The child starts as a copy of p1 and takes p2[pos] at pos. That value now
// appears twice: at pos and wherever p1 held it. The second occurrence is
// overwritten with p2's value at that position, which may in turn duplicate
// another gene, and so on. The walk follows a single cycle of the permutation
// p1⁻¹∘p2 and stops once the value p1[pos] (the one dropped first) is written
// back, so it never exceeds N steps.
//
// steps counts the overwrites made after the initial one.
//
// Complexity: O(N) time, O(N) extra space for p1's inverse.
func CascadeChild(p1, p2 tsp.Solution, pos int) (child tsp.Solution, steps int, err error) {
	n := len(p1)
	if n == 0 || len(p2) != n {
		return nil, 0, ErrInvalidParent
	}
	if pos < 0 || pos >= n {
		return nil, 0, fmt.Errorf("position %d of %d: %w", pos, n, ErrInvalidParent)
	}
	inv, err := tsp.Inverse(p1)
	if err != nil {
		return nil, 0, fmt.Errorf("first parent: %w", ErrInvalidParent)
	}
	if err = p2.Validate(n); err != nil {
		return nil, 0, fmt.Errorf("second parent: %w", ErrInvalidParent)
	}

	child = p1.Clone()
	missing := p1[pos]
	cur := pos
	child[cur] = p2[cur]
	for child[cur] != missing {
		// child[cur] also sits at inv[child[cur]], its slot in p1.
		cur = inv[child[cur]]
		child[cur] = p2[cur]
		steps++
		if steps > n {
			// Unreachable for valid permutations.
			return nil, steps, ErrInvalidParent
		}
	}

	return child, steps, nil
}

// Cascade produces offspringCount children. For each child two distinct
// parent indices and one gene position are drawn uniformly from rng.
//
// Complexity: O(offspringCount · N).
func Cascade(parents Population, offspringCount int, rng *rand.Rand) (Population, error) {
	if len(parents) < 2 {
		return nil, ErrTooFewParents
	}
	if offspringCount <= 0 {
		return Population{}, nil
	}
	n := len(parents[0])

	var (
		out    = make(Population, 0, offspringCount)
		p1, p2 int
		child  tsp.Solution
		err    error
	)
	for len(out) < offspringCount {
		p1 = rng.Intn(len(parents))
		p2 = rng.Intn(len(parents) - 1)
		if p2 >= p1 {
			p2++
		}
		if child, _, err = CascadeChild(parents[p1], parents[p2], rng.Intn(n)); err != nil {
			return nil, err
		}
		out = append(out, child)
	}

	return out, nil
}
