package lightgbm

import (
	"bytes"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/wattwise/core/model"
	wwErrors "github.com/ezoic/wattwise/pkg/errors"
)

// stepData returns y = 10 where x0 >= 100 and 0 otherwise; x1 is constant.
func stepData(n int) (*mat.Dense, *mat.VecDense) {
	X := mat.NewDense(n, 2, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, 3.0)
		if i >= n/2 {
			y.SetVec(i, 10)
		}
	}
	return X, y
}

// smoothData returns y = sin(x0) + 0.5*x1 on a grid.
func smoothData() (*mat.Dense, *mat.VecDense) {
	n := 400
	X := mat.NewDense(n, 2, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x0 := float64(i%40) / 40 * 2 * math.Pi
		x1 := float64(i / 40)
		X.Set(i, 0, x0)
		X.Set(i, 1, x1)
		y.SetVec(i, math.Sin(x0)+0.5*x1)
	}
	return X, y
}

func TestLGBMRegressorFitsStepFunction(t *testing.T) {
	X, y := stepData(200)

	reg := NewLGBMRegressor().WithNumIterations(100)
	require.NoError(t, reg.Fit(X, y))
	assert.True(t, reg.IsFitted())

	pred, err := reg.Predict(mat.NewDense(2, 2, []float64{10, 3, 150, 3}))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, pred.At(0, 0), 0.1)
	assert.InDelta(t, 10.0, pred.At(1, 0), 0.1)
}

func TestLGBMRegressorScore(t *testing.T) {
	X, y := smoothData()

	reg := NewLGBMRegressor().
		WithNumIterations(200).
		WithMaxDepth(6).
		WithNumLeaves(64).
		WithMinChildSamples(5).
		WithRegLambda(1)
	require.NoError(t, reg.Fit(X, y))

	r2, err := reg.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, r2, 0.98)
}

func TestLGBMRegressorDeterministicWithSampling(t *testing.T) {
	X, y := smoothData()

	fit := func() mat.Matrix {
		reg := NewLGBMRegressor().
			WithNumIterations(30).
			WithMinChildSamples(5).
			WithSubsample(0.8).
			WithColsampleBytree(0.5).
			WithRandomState(7)
		require.NoError(t, reg.Fit(X, y))
		pred, err := reg.Predict(X)
		require.NoError(t, err)
		return pred
	}

	assert.True(t, mat.Equal(fit(), fit()))
}

func TestLGBMRegressorTreeLimits(t *testing.T) {
	X, y := smoothData()

	reg := NewLGBMRegressor().
		WithNumIterations(5).
		WithMaxDepth(2).
		WithNumLeaves(64).
		WithMinChildSamples(1)
	require.NoError(t, reg.Fit(X, y))

	require.Len(t, reg.Model.Trees, 5)
	for _, tree := range reg.Model.Trees {
		assert.LessOrEqual(t, tree.NumLeaves, 4)
		assert.InDelta(t, 0.1, tree.ShrinkageRate, 1e-12)
	}

	reg = NewLGBMRegressor().
		WithNumIterations(3).
		WithMaxDepth(-1).
		WithNumLeaves(5).
		WithMinChildSamples(1)
	require.NoError(t, reg.Fit(X, y))
	for _, tree := range reg.Model.Trees {
		assert.LessOrEqual(t, tree.NumLeaves, 5)
	}
}

func TestLGBMRegressorFeatureImportance(t *testing.T) {
	X, y := stepData(200)

	reg := NewLGBMRegressor().WithNumIterations(20)
	require.NoError(t, reg.Fit(X, y))

	gain, err := reg.FeatureImportance(ImportanceGain, true)
	require.NoError(t, err)
	require.Len(t, gain, 2)
	assert.InDelta(t, 1.0, gain[0]+gain[1], 1e-12)
	assert.Equal(t, 0.0, gain[1], "constant feature is never split")

	splits, err := reg.FeatureImportance(ImportanceSplit, false)
	require.NoError(t, err)
	assert.Greater(t, splits[0], 0.0)

	_, err = reg.FeatureImportance("cover", false)
	assert.True(t, errors.Is(err, wwErrors.ErrInvalidInput))
}

func TestLGBMRegressorErrors(t *testing.T) {
	reg := NewLGBMRegressor()

	_, err := reg.Predict(mat.NewDense(1, 2, []float64{1, 2}))
	assert.True(t, errors.Is(err, wwErrors.ErrNotFitted))

	_, err = reg.FeatureImportance("", true)
	assert.True(t, errors.Is(err, wwErrors.ErrNotFitted))

	err = reg.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewVecDense(2, []float64{1, 2}))
	var dimErr *wwErrors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 3, dimErr.Expected)

	err = reg.Fit(&mat.Dense{}, &mat.VecDense{})
	assert.True(t, errors.Is(err, wwErrors.ErrEmptyData))

	err = NewLGBMRegressor().WithNumLeaves(1).Fit(mat.NewDense(2, 1, []float64{1, 2}), mat.NewVecDense(2, []float64{1, 2}))
	assert.True(t, errors.Is(err, wwErrors.ErrInvalidInput))

	err = NewLGBMRegressor().WithObjective("poisson").Fit(mat.NewDense(2, 1, []float64{1, 2}), mat.NewVecDense(2, []float64{1, 2}))
	assert.True(t, errors.Is(err, wwErrors.ErrInvalidInput))

	X, y := stepData(40)
	fitted := NewLGBMRegressor().WithNumIterations(2)
	require.NoError(t, fitted.Fit(X, y))
	_, err = fitted.Predict(mat.NewDense(1, 3, []float64{1, 2, 3}))
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 2, dimErr.Expected)
	assert.Equal(t, 3, dimErr.Got)
}

func TestLGBMRegressorGobRoundTrip(t *testing.T) {
	X, y := smoothData()
	reg := NewLGBMRegressor().WithNumIterations(50).WithMinChildSamples(5).WithFeatureNames("angle", "offset")
	require.NoError(t, reg.Fit(X, y))

	var buf bytes.Buffer
	require.NoError(t, model.SaveModelToWriter(reg, &buf))

	loaded := NewLGBMRegressor()
	require.NoError(t, model.LoadModelFromReader(loaded, &buf))
	assert.True(t, loaded.IsFitted())
	assert.Equal(t, []string{"angle", "offset"}, loaded.FeatureNames)

	want, err := reg.Predict(X)
	require.NoError(t, err)
	got, err := loaded.Predict(X)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(want, got, 1e-6))
}

func TestLGBMRegressorHuberObjective(t *testing.T) {
	X, y := stepData(200)
	y.SetVec(0, 1000) // outlier

	reg := NewLGBMRegressor().WithObjective(ObjectiveHuber).WithNumIterations(100)
	require.NoError(t, reg.Fit(X, y))

	pred, err := reg.Predict(mat.NewDense(1, 2, []float64{150, 3}))
	require.NoError(t, err)
	assert.InDelta(t, 10.0, pred.At(0, 0), 1.0)
}

func TestPredictorConcurrentUse(t *testing.T) {
	X, y := smoothData()
	reg := NewLGBMRegressor().WithNumIterations(20).WithMinChildSamples(5)
	require.NoError(t, reg.Fit(X, y))

	// Stack rows past the parallel threshold.
	big := mat.NewDense(1200, 2, nil)
	for i := 0; i < 1200; i++ {
		big.SetRow(i, X.RawRowView(i%400))
	}
	want, err := reg.Predict(big)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := reg.Predict(big)
			assert.NoError(t, err)
			assert.True(t, mat.Equal(want, got))
		}()
	}
	wg.Wait()

	single := NewPredictor(reg.Model)
	single.SetNumThreads(1)
	seq, err := single.Predict(big)
	require.NoError(t, err)
	assert.True(t, mat.Equal(want, seq))
}
