package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/stakesearch/matrix"
	"github.com/stretchr/testify/require"
)

// rowsDense is a minimal non-Dense Matrix used to exercise the generic fallbacks.
type rowsDense struct{ a [][]float64 }

var _ matrix.Matrix = rowsDense{}

func (m rowsDense) Rows() int { return len(m.a) }
func (m rowsDense) Cols() int {
	if len(m.a) == 0 {
		return 0
	}

	return len(m.a[0])
}
func (m rowsDense) At(i, j int) (float64, error) {
	if i < 0 || i >= m.Rows() || j < 0 || j >= m.Cols() {
		return 0, matrix.ErrOutOfRange
	}

	return m.a[i][j], nil
}
func (m rowsDense) Set(i, j int, v float64) error {
	if i < 0 || i >= m.Rows() || j < 0 || j >= m.Cols() {
		return matrix.ErrOutOfRange
	}
	m.a[i][j] = v

	return nil
}
func (m rowsDense) Clone() matrix.Matrix {
	cp := make([][]float64, len(m.a))
	for i := range m.a {
		cp[i] = append([]float64(nil), m.a[i]...)
	}

	return rowsDense{a: cp}
}

func mustDense(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFrom(rows)
	require.NoError(t, err)

	return m
}

func TestAdd(t *testing.T) {
	a := mustDense(t, [][]float64{{1, 2}, {3, 4}})
	b := rowsDense{a: [][]float64{{10, 20}, {30, 40}}}

	sum, err := matrix.Add(a, b)
	require.NoError(t, err)
	require.Equal(t, [][]float64{{11, 22}, {33, 44}}, sum.ToRows())

	_, err = matrix.Add(a, mustDense(t, [][]float64{{1, 2, 3}}))
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = matrix.Add(nil, a)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestScale(t *testing.T) {
	a := mustDense(t, [][]float64{{1, -2}, {0, 4}})

	out, err := matrix.Scale(a, 0.5)
	require.NoError(t, err)
	require.Equal(t, [][]float64{{0.5, -1}, {0, 2}}, out.ToRows())

	_, err = matrix.Scale(a, math.NaN())
	require.ErrorIs(t, err, matrix.ErrNaNInf)
}

// TestNormalizeRowsL2 checks unit row norms and the zero-row passthrough.
func TestNormalizeRowsL2(t *testing.T) {
	a := mustDense(t, [][]float64{{3, 4}, {0, 0}, {0, 2}})

	out, norms, err := matrix.NormalizeRowsL2(a)
	require.NoError(t, err)
	require.Equal(t, []float64{5, 0, 2}, norms)
	require.InDeltaSlice(t, []float64{0.6, 0.8}, out.ToRows()[0], 1e-12)
	require.Equal(t, []float64{0, 0}, out.ToRows()[1])
	require.Equal(t, []float64{0, 1}, out.ToRows()[2])

	// Input untouched.
	v, _ := a.At(0, 0)
	require.Equal(t, 3.0, v)
}

func TestAllClose(t *testing.T) {
	a := mustDense(t, [][]float64{{1, 2}})
	b := mustDense(t, [][]float64{{1 + 1e-10, 2}})

	ok, err := matrix.AllClose(a, b, 0, 1e-9)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = matrix.AllClose(a, mustDense(t, [][]float64{{1.1, 2}}), 0, 1e-9)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = matrix.AllClose(a, b, math.Inf(1), 0)
	require.ErrorIs(t, err, matrix.ErrNaNInf)
}

func TestValidators(t *testing.T) {
	sym := mustDense(t, [][]float64{{0, 1}, {1, 0}})
	require.NoError(t, matrix.ValidateSymmetric(sym, 1e-12))
	require.NoError(t, matrix.ValidateZeroDiagonal(sym, 1e-12))

	asym := mustDense(t, [][]float64{{0, 1}, {2, 0}})
	require.ErrorIs(t, matrix.ValidateSymmetric(asym, 1e-12), matrix.ErrAsymmetry)

	diag := mustDense(t, [][]float64{{1, 0}, {0, 0}})
	require.ErrorIs(t, matrix.ValidateZeroDiagonal(diag, 1e-12), matrix.ErrNonZeroDiagonal)

	require.ErrorIs(t, matrix.ValidateSquare(mustDense(t, [][]float64{{1, 2}})), matrix.ErrNonSquare)

	var nilDense *matrix.Dense
	require.ErrorIs(t, matrix.ValidateNotNil(nilDense), matrix.ErrNilMatrix)
}
