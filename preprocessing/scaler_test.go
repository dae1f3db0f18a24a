package preprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	wwErrors "github.com/ezoic/wattwise/pkg/errors"
)

func TestStandardScalerFitTransform(t *testing.T) {
	X := mat.NewDense(4, 3, []float64{
		10, 0, 5,
		20, 50, 5,
		30, 50, 5,
		40, 100, 5,
	})

	s := NewStandardScaler(true, true)
	out, err := s.FitTransform(X)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{25, 50, 5}, s.Mean, 1e-9)
	assert.InDelta(t, 11.180339887, s.Scale[0], 1e-6)
	assert.Equal(t, 1.0, s.Scale[2], "constant column keeps unit scale")

	for j := 0; j < 2; j++ {
		col := mat.Col(nil, j, out)
		var sum float64
		for _, v := range col {
			sum += v
		}
		assert.InDelta(t, 0.0, sum, 1e-9)
	}
	assert.Equal(t, 0.0, out.At(0, 2))
}

func TestStandardScalerInverse(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, -4, 2, 8, 9, 1})
	s := NewStandardScaler(true, true)
	scaled, err := s.FitTransform(X)
	require.NoError(t, err)

	back, err := s.InverseTransform(scaled)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(X, back, 1e-12))
}

func TestStandardScalerOptions(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{2, 6})

	s := NewStandardScaler(false, true)
	out, err := s.FitTransform(X)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, out.At(0, 0), 1e-12)
	assert.InDelta(t, 3.0, out.At(1, 0), 1e-12)

	s = NewStandardScaler(true, false)
	out, err = s.FitTransform(X)
	require.NoError(t, err)
	assert.InDelta(t, -2.0, out.At(0, 0), 1e-12)
}

func TestStandardScalerErrors(t *testing.T) {
	s := NewStandardScaler(true, true)

	_, err := s.Transform(mat.NewDense(1, 1, nil))
	assert.True(t, errors.Is(err, wwErrors.ErrNotFitted))

	require.NoError(t, s.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})))
	_, err = s.Transform(mat.NewDense(1, 3, nil))
	var dimErr *wwErrors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	assert.Contains(t, s.String(), "n_features=2")
}
