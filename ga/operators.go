// SPDX-License-Identifier: MIT

package ga

import (
	"math/rand"

	"github.com/katalvlaran/stakesearch/tsp"
)

// mutate applies m to s in place.
func mutate(m Mutation, s tsp.Solution, rng *rand.Rand) {
	n := len(s)
	if n < 2 {
		return
	}
	switch m {
	case Inversion:
		i, k := segment(n, rng)
		for i < k {
			s[i], s[k] = s[k], s[i]
			i++
			k--
		}
	case Swap:
		i := rng.Intn(n)
		k := rng.Intn(n - 1)
		if k >= i {
			k++
		}
		s[i], s[k] = s[k], s[i]
	case Scramble:
		i, k := segment(n, rng)
		seg := s[i : k+1]
		rng.Shuffle(len(seg), func(a, b int) { seg[a], seg[b] = seg[b], seg[a] })
	case RandomReset:
		pos := rng.Intn(n)
		city := rng.Intn(n)
		for j := range s {
			if s[j] == city {
				s[j] = s[pos]
				break
			}
		}
		s[pos] = city
	}
}

// segment draws 0 ≤ i < k < n.
func segment(n int, rng *rand.Rand) (int, int) {
	i := rng.Intn(n)
	k := rng.Intn(n - 1)
	if k >= i {
		k++
	}
	if i > k {
		i, k = k, i
	}

	return i, k
}

// tournamentSize is the number of contestants per Tournament draw.
const tournamentSize = 3

// selectParents returns count indices into a population already sorted by
// ascending cost (index 0 is the best).
func selectParents(sel Selection, popSize, count int, rng *rand.Rand) []int {
	out := make([]int, count)
	var i, j, c int
	switch sel {
	case SteadyState:
		for i = range out {
			out[i] = i
		}
	case Tournament:
		for i = range out {
			out[i] = rng.Intn(popSize)
			for j = 1; j < tournamentSize; j++ {
				// Lower index is cheaper.
				if c = rng.Intn(popSize); c < out[i] {
					out[i] = c
				}
			}
		}
	case Rank:
		// Weight of rank r (0-based) is popSize-r; total is popSize·(popSize+1)/2.
		total := popSize * (popSize + 1) / 2
		for i = range out {
			ticket := rng.Intn(total)
			for j = 0; j < popSize; j++ {
				ticket -= popSize - j
				if ticket < 0 {
					out[i] = j
					break
				}
			}
		}
	case Random:
		for i = range out {
			out[i] = rng.Intn(popSize)
		}
	}

	return out
}
