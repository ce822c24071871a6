package tsp_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/stakesearch/matrix"
	"github.com/katalvlaran/stakesearch/tsp"
	"github.com/stretchr/testify/require"
)

// dense builds a *matrix.Dense from literal rows or fails the test.
func dense(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFrom(rows)
	require.NoError(t, err)

	return m
}

// rawMatrix is a Matrix without the finite-only write policy, used for
// +Inf "no arc" entries.
type rawMatrix [][]float64

func (m rawMatrix) Rows() int { return len(m) }
func (m rawMatrix) Cols() int { return len(m) }
func (m rawMatrix) At(i, j int) (float64, error) {
	if i < 0 || i >= len(m) || j < 0 || j >= len(m) {
		return 0, matrix.ErrOutOfRange
	}

	return m[i][j], nil
}
func (m rawMatrix) Set(i, j int, v float64) error {
	if i < 0 || i >= len(m) || j < 0 || j >= len(m) {
		return matrix.ErrOutOfRange
	}
	m[i][j] = v

	return nil
}
func (m rawMatrix) Clone() matrix.Matrix {
	cp := make(rawMatrix, len(m))
	for i := range m {
		cp[i] = append([]float64(nil), m[i]...)
	}

	return cp
}

// euclid returns the symmetric Euclidean distance matrix of pts.
func euclid(t *testing.T, pts [][2]float64) *matrix.Dense {
	t.Helper()
	n := len(pts)
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
		for j := range rows[i] {
			rows[i][j] = math.Hypot(pts[i][0]-pts[j][0], pts[i][1]-pts[j][1])
		}
	}

	return dense(t, rows)
}

// randomAsym returns an n×n asymmetric matrix with zero diagonal and weights in [1,100).
func randomAsym(t *testing.T, n int, rng *rand.Rand) *matrix.Dense {
	t.Helper()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
		for j := range rows[i] {
			if i != j {
				rows[i][j] = 1 + 99*rng.Float64()
			}
		}
	}

	return dense(t, rows)
}

// bruteForce enumerates every tour fixing city 0 first and returns the minimum cost.
func bruteForce(t *testing.T, m matrix.Matrix) float64 {
	t.Helper()
	n := m.Rows()
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	best := math.Inf(1)
	var rec func(k int)
	rec = func(k int) {
		if k == n {
			c, err := tsp.Cost(m, perm)
			require.NoError(t, err)
			if c < best {
				best = c
			}

			return
		}
		for i := k; i < n; i++ {
			perm[k], perm[i] = perm[i], perm[k]
			rec(k + 1)
			perm[k], perm[i] = perm[i], perm[k]
		}
	}
	rec(1)

	return best
}
