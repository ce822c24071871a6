package problem_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/katalvlaran/stakesearch/matrix"
	"github.com/katalvlaran/stakesearch/problem"
	"github.com/katalvlaran/stakesearch/tsp"
	"github.com/stretchr/testify/require"
)

func square() []problem.City {
	return []problem.City{
		{ID: 1, X: 0, Y: 0, Terrain: 1},
		{ID: 2, X: 3, Y: 0, Terrain: 2},
		{ID: 3, X: 3, Y: 4, Terrain: 0.5},
		{ID: 4, X: 0, Y: 4, Terrain: 1.5},
	}
}

func TestNewInstance_Tables(t *testing.T) {
	in, err := problem.NewInstance(square())
	require.NoError(t, err)
	require.Equal(t, 4, in.Size())

	d, err := in.Distance().At(0, 2)
	require.NoError(t, err)
	require.Equal(t, 5.0, d)

	tm, err := in.Time().At(0, 2)
	require.NoError(t, err)
	require.Equal(t, 5.0*1*0.5, tm)
}

func TestNewInstance_SymmetricZeroDiagonal(t *testing.T) {
	cities, err := problem.Generate(25, tsp.NewRNG(4))
	require.NoError(t, err)
	in, err := problem.NewInstance(cities)
	require.NoError(t, err)

	for _, m := range []matrix.Matrix{in.Distance(), in.Time()} {
		require.NoError(t, matrix.ValidateSymmetric(m, 0))
		require.NoError(t, matrix.ValidateZeroDiagonal(m, 0))
	}
	require.NoError(t, matrix.ValidateZeroDiagonal(in.NormDistance(), 0))
	require.NoError(t, matrix.ValidateZeroDiagonal(in.NormTime(), 0))
}

func TestNewInstance_RowsNormalised(t *testing.T) {
	in, err := problem.NewInstance(square())
	require.NoError(t, err)
	for i := 0; i < in.Size(); i++ {
		var sq float64
		for j := 0; j < in.Size(); j++ {
			v, err := in.NormDistance().At(i, j)
			require.NoError(t, err)
			sq += v * v
		}
		require.InDelta(t, 1.0, math.Sqrt(sq), 1e-12)
	}
}

func TestNewInstance_Errors(t *testing.T) {
	_, err := problem.NewInstance(nil)
	require.ErrorIs(t, err, problem.ErrNoCities)

	bad := square()
	bad[1].Terrain = -1
	_, err = problem.NewInstance(bad)
	require.ErrorIs(t, err, problem.ErrInvalidCity)

	bad = square()
	bad[2].X = math.NaN()
	_, err = problem.NewInstance(bad)
	require.ErrorIs(t, err, problem.ErrInvalidCity)
}

func TestWeighted_Linearity(t *testing.T) {
	cities, err := problem.Generate(12, tsp.NewRNG(8))
	require.NoError(t, err)
	in, err := problem.NewInstance(cities)
	require.NoError(t, err)

	for _, w := range []problem.Weights{
		{Distance: 1, Time: 0},
		{Distance: 0, Time: 1},
		{Distance: 0.5, Time: 0.5},
		{Distance: 1, Time: 1},
		{Distance: 0.2, Time: 0.9},
		{Distance: 0, Time: 0},
	} {
		got, err := in.Weighted(w)
		require.NoError(t, err)
		for i := 0; i < in.Size(); i++ {
			for j := 0; j < in.Size(); j++ {
				nd, _ := in.NormDistance().At(i, j)
				nt, _ := in.NormTime().At(i, j)
				v, _ := got.At(i, j)
				require.InDelta(t, w.Distance*nd+w.Time*nt, v, 1e-15, "w=%s (%d,%d)", w, i, j)
			}
		}
	}
}

func TestWeights_Validate(t *testing.T) {
	require.NoError(t, problem.DefaultWeights().Validate())
	require.NoError(t, problem.Weights{Distance: 1, Time: 1}.Validate())
	require.ErrorIs(t, problem.Weights{Distance: 1.5}.Validate(), problem.ErrInvalidWeights)
	require.ErrorIs(t, problem.Weights{Time: -0.1}.Validate(), problem.ErrInvalidWeights)
	require.ErrorIs(t, problem.Weights{Time: math.NaN()}.Validate(), problem.ErrInvalidWeights)
	require.Equal(t, "0.5:0.5", problem.DefaultWeights().String())

	in, err := problem.NewInstance(square())
	require.NoError(t, err)
	_, err = in.Weighted(problem.Weights{Distance: 2})
	require.ErrorIs(t, err, problem.ErrInvalidWeights)
}

func TestWeighted_ShapeMismatch(t *testing.T) {
	a, err := matrix.NewDense(3, 3)
	require.NoError(t, err)
	b, err := matrix.NewDense(2, 2)
	require.NoError(t, err)
	_, err = problem.Weighted(a, b, problem.DefaultWeights())
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestGenerate(t *testing.T) {
	cities, err := problem.Generate(30, tsp.NewRNG(1))
	require.NoError(t, err)
	require.Len(t, cities, 30)
	for i, c := range cities {
		require.Equal(t, i+1, c.ID)
		require.GreaterOrEqual(t, c.X, 1.0)
		require.LessOrEqual(t, c.X, 30.0)
		require.GreaterOrEqual(t, c.Terrain, problem.MinTerrain)
		require.Less(t, c.Terrain, problem.MaxTerrain)
	}
	_, err = problem.Generate(0, tsp.NewRNG(1))
	require.ErrorIs(t, err, problem.ErrInvalidSize)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, problem.WriteCSV(&buf, square()[:2]))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Equal(t, []string{"city,x,y,terrain", "1,0,0,1", "2,3,0,2"}, lines)
}

func TestParseWeights(t *testing.T) {
	w, err := problem.ParseWeights("0.7:0.3")
	require.NoError(t, err)
	require.Equal(t, problem.Weights{Distance: 0.7, Time: 0.3}, w)

	w, err = problem.ParseWeights(problem.DefaultWeights().String())
	require.NoError(t, err)
	require.Equal(t, problem.DefaultWeights(), w)

	for _, bad := range []string{"", "1", "a:0", "0:b", "2:0", "0.5:-1"} {
		_, err = problem.ParseWeights(bad)
		require.ErrorIs(t, err, problem.ErrInvalidWeights, bad)
	}
}
