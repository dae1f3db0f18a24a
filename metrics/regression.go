// Package metrics provides evaluation metrics for the WattWise regressors.
//
// All functions take the true and predicted targets as gonum vectors of equal
// length and return an error for empty or mismatched inputs:
//
//	rmse, err := metrics.RMSE(yTrue, yPred)
//	r2, err := metrics.R2Score(yTrue, yPred)
//
// Evaluate computes the full hold-out report used by the training pipeline in
// one call.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	wwErrors "github.com/ezoic/wattwise/pkg/errors"
)

// Report holds the hold-out metrics of one evaluation.
type Report struct {
	RMSE              float64 `json:"rmse"`
	MAE               float64 `json:"mae"`
	R2                float64 `json:"r2"`
	ExplainedVariance float64 `json:"explained_variance"`
	Samples           int     `json:"samples"`
}

func checkInputs(op string, yTrue, yPred *mat.VecDense) (int, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, wwErrors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, wwErrors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// MSE calculates the Mean Squared Error between true and predicted values.
//
// Errors:
//   - ValueError: if the vectors are empty
//   - DimensionError: if yTrue and yPred have different lengths
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkInputs("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}
	return sum / float64(n), nil
}

// MSEMatrix calculates MSE for n×1 column matrices, as returned by Predict.
func MSEMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	yt, err := columnVector("MSEMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	yp, err := columnVector("MSEMatrix", yPred)
	if err != nil {
		return 0, err
	}
	return MSE(yt, yp)
}

// RMSE calculates the Root Mean Squared Error, in the units of the target.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE calculates the Mean Absolute Error between true and predicted values.
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkInputs("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	return sum / float64(n), nil
}

// R2Score calculates the coefficient of determination.
//
// The best possible score is 1.0; a model predicting the mean scores 0 and
// worse models score negative.
//
// Errors:
//   - ValueError: if the vectors are empty or yTrue has no variance
//   - DimensionError: if yTrue and yPred have different lengths
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkInputs("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	yMean := mat.Sum(yTrue) / float64(n)

	var tss, rss float64
	for i := 0; i < n; i++ {
		yt := yTrue.AtVec(i)
		tss += (yt - yMean) * (yt - yMean)
		rss += (yt - yPred.AtVec(i)) * (yt - yPred.AtVec(i))
	}
	if tss == 0 {
		return 0, wwErrors.NewValueError("R2Score", "total sum of squares is zero (no variance in yTrue)")
	}
	return 1 - rss/tss, nil
}

// MAPE calculates the Mean Absolute Percentage Error over the samples whose
// true value is non-zero. Night hours have a zero target, so they are skipped.
func MAPE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkInputs("MAPE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	valid := 0
	for i := 0; i < n; i++ {
		yt := yTrue.AtVec(i)
		if yt == 0 {
			continue
		}
		sum += math.Abs(yt-yPred.AtVec(i)) / math.Abs(yt)
		valid++
	}
	if valid == 0 {
		return 0, wwErrors.NewValueError("MAPE", "all yTrue values are zero")
	}
	return sum / float64(valid) * 100, nil
}

// ExplainedVarianceScore calculates 1 - Var(yTrue - yPred) / Var(yTrue).
// Unlike R² it ignores a constant offset in the predictions.
func ExplainedVarianceScore(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkInputs("ExplainedVarianceScore", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	truth := make([]float64, n)
	residual := make([]float64, n)
	for i := 0; i < n; i++ {
		truth[i] = yTrue.AtVec(i)
		residual[i] = truth[i] - yPred.AtVec(i)
	}

	varTrue := stat.PopVariance(truth, nil)
	if varTrue == 0 {
		return 0, wwErrors.NewValueError("ExplainedVarianceScore", "no variance in yTrue")
	}
	return 1 - stat.PopVariance(residual, nil)/varTrue, nil
}

// Evaluate computes RMSE, MAE, R² and explained variance for one hold-out set.
func Evaluate(yTrue, yPred *mat.VecDense) (Report, error) {
	rmse, err := RMSE(yTrue, yPred)
	if err != nil {
		return Report{}, err
	}
	mae, err := MAE(yTrue, yPred)
	if err != nil {
		return Report{}, err
	}
	r2, err := R2Score(yTrue, yPred)
	if err != nil {
		return Report{}, err
	}
	evs, err := ExplainedVarianceScore(yTrue, yPred)
	if err != nil {
		return Report{}, err
	}
	return Report{
		RMSE:              rmse,
		MAE:               mae,
		R2:                r2,
		ExplainedVariance: evs,
		Samples:           yTrue.Len(),
	}, nil
}

func columnVector(op string, m mat.Matrix) (*mat.VecDense, error) {
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, wwErrors.NewValueError(op, "empty matrix")
	}
	if c != 1 {
		return nil, wwErrors.NewValueError(op, "must be a column vector (n×1 matrix)")
	}
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v, nil
}
