package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	wwErrors "github.com/ezoic/wattwise/pkg/errors"
)

func TestMetricInputValidation(t *testing.T) {
	empty := &mat.VecDense{}
	three := mat.NewVecDense(3, []float64{1, 2, 3})
	two := mat.NewVecDense(2, []float64{1, 2})

	funcs := map[string]func(a, b *mat.VecDense) (float64, error){
		"MSE":                    MSE,
		"RMSE":                   RMSE,
		"MAE":                    MAE,
		"R2Score":                R2Score,
		"MAPE":                   MAPE,
		"ExplainedVarianceScore": ExplainedVarianceScore,
	}

	for name, fn := range funcs {
		t.Run(name, func(t *testing.T) {
			_, err := fn(empty, empty)
			require.Error(t, err)
			assert.True(t, errors.Is(err, wwErrors.ErrInvalidInput))

			_, err = fn(three, two)
			var dimErr *wwErrors.DimensionError
			require.True(t, errors.As(err, &dimErr))
			assert.Equal(t, 3, dimErr.Expected)
			assert.Equal(t, 2, dimErr.Got)
		})
	}
}

func TestR2ScoreConstantTarget(t *testing.T) {
	y := mat.NewVecDense(3, []float64{5, 5, 5})
	_, err := R2Score(y, y)
	assert.Error(t, err)

	_, err = Evaluate(y, y)
	assert.Error(t, err)
}

func TestMAPESkipsZeroTargets(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{0, 10, 20})
	yPred := mat.NewVecDense(3, []float64{3, 11, 18})

	mape, err := MAPE(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, mape, 1e-9)

	_, err = MAPE(mat.NewVecDense(2, []float64{0, 0}), mat.NewVecDense(2, []float64{1, 1}))
	assert.Error(t, err)
}

func TestR2ScoreMeanPredictor(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{10, 20, 30, 40})
	yPred := mat.NewVecDense(4, []float64{25, 25, 25, 25})

	r2, err := R2Score(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, r2, 1e-12)
}

func TestMSEMatrixRejectsWideInput(t *testing.T) {
	wide := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	_, err := MSEMatrix(wide, wide)
	assert.Error(t, err)
}
