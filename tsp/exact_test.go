package tsp_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/stakesearch/matrix"
	"github.com/katalvlaran/stakesearch/tsp"
	"github.com/stretchr/testify/require"
)

func TestExact_Small4(t *testing.T) {
	// 4-node cycle distances; optimum cycle cost = 4
	m := dense(t, [][]float64{
		{0, 1, 2, 1},
		{1, 0, 1, 2},
		{2, 1, 0, 1},
		{1, 2, 1, 0},
	})
	s, c, err := tsp.Exact(m)
	require.NoError(t, err)
	require.NoError(t, s.Validate(4))
	require.Equal(t, 0, s[0])
	require.Equal(t, 4.0, c)

	got, err := tsp.Cost(m, s)
	require.NoError(t, err)
	require.Equal(t, c, got)
}

func TestExact_MatchesBruteForceAsymmetric(t *testing.T) {
	rng := tsp.NewRNG(11)
	for n := 2; n <= 8; n++ {
		m := randomAsym(t, n, rng)
		s, c, err := tsp.Exact(m)
		require.NoError(t, err)
		require.NoError(t, s.Validate(n))
		require.InDelta(t, bruteForce(t, m), c, 1e-9, "n=%d", n)
	}
}

func TestExact_Trivial(t *testing.T) {
	s, c, err := tsp.Exact(dense(t, [][]float64{{0}}))
	require.NoError(t, err)
	require.Equal(t, tsp.Solution{0}, s)
	require.Zero(t, c)
}

func TestExact_Errors(t *testing.T) {
	m := rawMatrix{
		{0, 1, math.Inf(1)},
		{math.Inf(1), 0, 1},
		{math.Inf(1), math.Inf(1), 0},
	}
	_, _, err := tsp.Exact(m)
	require.ErrorIs(t, err, tsp.ErrIncompleteGraph)

	big, err := matrix.NewDense(tsp.MaxExact+1, tsp.MaxExact+1)
	require.NoError(t, err)
	_, _, err = tsp.Exact(big)
	require.ErrorIs(t, err, tsp.ErrTooLarge)

	_, _, err = tsp.Exact(nil)
	require.ErrorIs(t, err, tsp.ErrNonSquare)
}
