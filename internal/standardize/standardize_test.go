package standardize

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestFit_PopulationStd(t *testing.T) {
	x := mat.NewDense(3, 1, []float64{1, 2, 3})
	z, tr, err := Fit(x, Options{})
	require.NoError(t, err)

	assert.InDelta(t, -1.2247, z.At(0, 0), 1e-4)
	assert.InDelta(t, 0, z.At(1, 0), 1e-12)
	assert.InDelta(t, 1.2247, z.At(2, 0), 1e-4)
	assert.InDelta(t, 2, tr.Mean[0], 1e-12)
	assert.InDelta(t, 0.816496580927726, tr.Std[0], 1e-12)

	// input untouched
	assert.Equal(t, 1.0, x.At(0, 0))
}

func TestFit_ColumnsHaveZeroMeanUnitStd(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		n, m := 5+rng.Intn(40), 1+rng.Intn(8)
		x := mat.NewDense(n, m, nil)
		for i := 0; i < n; i++ {
			for j := 0; j < m; j++ {
				x.Set(i, j, rng.NormFloat64()*float64(j+1)*50+float64(j)*1000)
			}
		}
		z, _, err := Fit(x, Options{})
		require.NoError(t, err)
		col := make([]float64, n)
		for j := 0; j < m; j++ {
			mat.Col(col, j, z)
			mean, std := stat.PopMeanStdDev(col, nil)
			assert.InDelta(t, 0, mean, 1e-6)
			assert.InDelta(t, 1, std, 1e-6)
		}
	}
}

func TestFit_DegenerateReject(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{
		1, 0.1,
		2, 0.1,
		3, 0.1,
	})
	_, _, err := Fit(x, Options{Columns: []string{"a", "b"}})
	var de *DegenerateColumnError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 1, de.Index)
	assert.Equal(t, "b", de.Column)
	assert.Contains(t, de.Error(), "column b has zero variance")
}

func TestFit_DegenerateCenterOnly(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{
		1, 5,
		2, 5,
		3, 5,
	})
	z, tr, err := Fit(x, Options{Policy: CenterOnly})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, tr.Degenerate)
	assert.Equal(t, 1.0, tr.Std[1])
	for i := 0; i < 3; i++ {
		assert.Equal(t, 0.0, z.At(i, 1))
	}
}

func TestTransform_Apply(t *testing.T) {
	x := mat.NewDense(3, 1, []float64{1, 2, 3})
	_, tr, err := Fit(x, Options{})
	require.NoError(t, err)

	y, err := tr.Apply(mat.NewDense(1, 1, []float64{4}))
	require.NoError(t, err)
	assert.InDelta(t, 2.4495, y.At(0, 0), 1e-4)

	_, err = tr.Apply(mat.NewDense(1, 2, []float64{1, 2}))
	require.ErrorIs(t, err, ErrShape)
}

func TestFit_EmptyMatrix(t *testing.T) {
	for _, p := range []Policy{Reject, CenterOnly} {
		_, _, err := Fit(&mat.Dense{}, Options{Policy: p})
		require.ErrorIs(t, err, ErrShape)
	}

	_, tr, err := Fit(mat.NewDense(2, 1, []float64{1, 3}), Options{})
	require.NoError(t, err)
	_, err = tr.Apply(&mat.Dense{})
	require.ErrorIs(t, err, ErrShape)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("center")
	require.NoError(t, err)
	assert.Equal(t, CenterOnly, p)
	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, Reject, p)
	_, err = ParsePolicy("drop")
	require.Error(t, err)
}
