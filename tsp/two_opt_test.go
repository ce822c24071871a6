package tsp_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/stakesearch/tsp"
	"github.com/stretchr/testify/require"
)

// 2-opt removes crossings on a convex hexagon.
func TestTwoOpt_UncrossesHexagon(t *testing.T) {
	pts := [][2]float64{
		{1, 0}, {0.5, math.Sqrt(3) / 2}, {-0.5, math.Sqrt(3) / 2},
		{-1, 0}, {-0.5, -math.Sqrt(3) / 2}, {0.5, -math.Sqrt(3) / 2},
	}
	m := euclid(t, pts)
	crossed := tsp.Solution{0, 3, 1, 4, 2, 5}

	out, c, err := tsp.TwoOpt(m, crossed, 0)
	require.NoError(t, err)
	require.NoError(t, out.Validate(6))
	require.InDelta(t, 6.0, c, 1e-9, "hexagon perimeter with unit sides")
	require.Equal(t, tsp.Solution{0, 3, 1, 4, 2, 5}, crossed, "input must stay untouched")
}

func TestTwoOpt_NeverWorsensAsymmetric(t *testing.T) {
	rng := tsp.NewRNG(21)
	for trial := 0; trial < 20; trial++ {
		n := 3 + trial%8
		m := randomAsym(t, n, rng)
		s, err := tsp.RandomSolution(n, rng)
		require.NoError(t, err)

		before, err := tsp.Cost(m, s)
		require.NoError(t, err)
		out, after, err := tsp.TwoOpt(m, s, 0)
		require.NoError(t, err)
		require.NoError(t, out.Validate(n))
		require.LessOrEqual(t, after, before+1e-9)

		check, err := tsp.Cost(m, out)
		require.NoError(t, err)
		require.Equal(t, check, after, "reported cost must match the returned tour")
	}
}

func TestTwoOpt_MaxIters(t *testing.T) {
	m := randomAsym(t, 9, tsp.NewRNG(2))
	s, _ := tsp.RandomSolution(9, tsp.NewRNG(3))
	one, c1, err := tsp.TwoOpt(m, s, 1)
	require.NoError(t, err)
	_, cAll, err := tsp.TwoOpt(m, s, 0)
	require.NoError(t, err)
	require.NoError(t, one.Validate(9))
	require.LessOrEqual(t, cAll, c1+1e-9)
}

func TestTwoOpt_Errors(t *testing.T) {
	m := dense(t, [][]float64{{0, 1}, {1, 0}})
	_, _, err := tsp.TwoOpt(m, tsp.Solution{0, 0}, 0)
	require.ErrorIs(t, err, tsp.ErrDimensionMismatch)
	_, _, err = tsp.TwoOpt(nil, tsp.Solution{0, 1}, 0)
	require.ErrorIs(t, err, tsp.ErrNonSquare)
}
