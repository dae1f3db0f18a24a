// Package linear provides an ordinary least squares regressor.
//
// WattWise fits it next to the gradient-boosted model as a diagnostic
// baseline: the gap between the two R² scores shows how much of the solar
// efficiency signal is non-linear (daylight angle, night cut-off, the
// temperature optimum).
//
// Example usage:
//
//	lr := linear.NewLinearRegression()
//	if err := lr.Fit(X, y); err != nil {
//		log.Fatal(err)
//	}
//	predictions, err := lr.Predict(XTest)
package linear

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/wattwise/core/model"
	wwErrors "github.com/ezoic/wattwise/pkg/errors"
	"github.com/ezoic/wattwise/pkg/log"
)

// LinearRegression is a linear regression model
type LinearRegression struct {
	State     *model.StateManager // Public for gob encoding
	Weights   *mat.VecDense       // Model weights (coefficients)
	Intercept float64             // Model intercept
	NFeatures int                 // Number of features
	logger    log.Logger
}

// NewLinearRegression creates an untrained ordinary least squares model.
//
// The model solves the least squares problem with a QR factorization of the
// design matrix rather than forming (XᵀX)⁻¹, which keeps it stable when
// features have very different scales (day of year vs. hour of day).
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{
		State: model.NewStateManager(),
		logger: log.GetLoggerWithName("linear").With(
			log.ModelNameKey, "LinearRegression",
			log.ComponentKey, "linear",
		),
	}
}

// Fit trains the linear regression model using the provided training data.
//
// Parameters:
//   - X: Feature matrix of shape (n_samples, n_features)
//   - y: Target column of shape (n_samples, 1)
//
// Errors:
//   - ErrEmptyData: if X or y are empty
//   - DimensionError: if the number of samples in X and y don't match
//   - ErrSingularMatrix: if the design matrix is rank deficient
func (lr *LinearRegression) Fit(X, y mat.Matrix) (err error) {
	defer wwErrors.Recover(&err, "LinearRegression.Fit")

	startTime := time.Now()
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return wwErrors.NewModelError("LinearRegression.Fit", "empty data", wwErrors.ErrEmptyData)
	}
	if ry != r {
		return wwErrors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return wwErrors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}
	if r <= c {
		return wwErrors.NewModelError("LinearRegression.Fit", "fewer samples than parameters", wwErrors.ErrInsufficientData)
	}

	lr.logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)

	// Design matrix [1, X]
	design := mat.NewDense(r, c+1, nil)
	yVec := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		design.Set(i, 0, 1.0)
		for j := 0; j < c; j++ {
			design.Set(i, j+1, X.At(i, j))
		}
		yVec.SetVec(i, y.At(i, 0))
	}

	var qr mat.QR
	qr.Factorize(design)
	if qr.Cond() > 1e14 {
		return wwErrors.NewModelError("LinearRegression.Fit", "singular matrix", wwErrors.ErrSingularMatrix)
	}

	coef := mat.NewVecDense(c+1, nil)
	if err := qr.SolveVecTo(coef, false, yVec); err != nil {
		return wwErrors.NewModelError("LinearRegression.Fit", "singular matrix", wwErrors.ErrSingularMatrix)
	}

	lr.NFeatures = c
	lr.Intercept = coef.AtVec(0)
	lr.Weights = mat.NewVecDense(c, nil)
	for i := 0; i < c; i++ {
		lr.Weights.SetVec(i, coef.AtVec(i+1))
	}

	lr.State.SetFitted()
	lr.State.SetDimensions(lr.NFeatures, r)

	lr.logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
	)
	return nil
}

// Predict returns an (n_samples, 1) matrix of X·weights + intercept.
//
// Errors:
//   - NotFittedError: if the model hasn't been trained yet
//   - DimensionError: if X has a different number of features than the training data
func (lr *LinearRegression) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer wwErrors.Recover(&err, "LinearRegression.Predict")
	if !lr.State.IsFitted() {
		return nil, wwErrors.NewNotFittedError("LinearRegression", "Predict")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, wwErrors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pred := lr.Intercept
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * lr.Weights.AtVec(j)
		}
		predictions.Set(i, 0, pred)
	}

	lr.logger.Debug("Prediction completed",
		log.OperationKey, log.OperationPredict,
		log.PredsKey, r,
	)
	return predictions, nil
}

// GetWeights returns the learned weights (coefficients)
func (lr *LinearRegression) GetWeights() []float64 {
	if lr.Weights == nil {
		return nil
	}
	weights := make([]float64, lr.Weights.Len())
	for i := range weights {
		weights[i] = lr.Weights.AtVec(i)
	}
	return weights
}

// GetIntercept returns the learned intercept
func (lr *LinearRegression) GetIntercept() float64 {
	if !lr.State.IsFitted() {
		return 0
	}
	return lr.Intercept
}

// Score calculates the coefficient of determination (R²) of the model
func (lr *LinearRegression) Score(X, y mat.Matrix) (_ float64, err error) {
	defer wwErrors.Recover(&err, "LinearRegression.Score")
	if !lr.State.IsFitted() {
		return 0, wwErrors.NewNotFittedError("LinearRegression", "Score")
	}

	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	r, _ := y.Dims()
	var yMean float64
	for i := 0; i < r; i++ {
		yMean += y.At(i, 0)
	}
	yMean /= float64(r)

	var tss, rss float64
	for i := 0; i < r; i++ {
		yt := y.At(i, 0)
		yp := yPred.At(i, 0)
		tss += (yt - yMean) * (yt - yMean)
		rss += (yt - yp) * (yt - yp)
	}
	if tss == 0 {
		return 0, wwErrors.NewValueError("LinearRegression.Score", "total sum of squares is zero")
	}
	return 1 - rss/tss, nil
}

// IsFitted returns whether the model has been fitted.
func (lr *LinearRegression) IsFitted() bool {
	return lr.State.IsFitted()
}

var _ model.Regressor = (*LinearRegression)(nil)
