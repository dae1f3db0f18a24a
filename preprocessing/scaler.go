// Package preprocessing provides feature scaling for the estimators.
//
// The training pipeline standardizes features before fitting the linear
// baseline so that its coefficients are comparable across columns measured
// in very different units (°C, percent, hour, day of year):
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	XTrainScaled, err := scaler.FitTransform(XTrain)
//	if err != nil {
//		log.Fatal(err)
//	}
//	XTestScaled, err := scaler.Transform(XTest)
package preprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/wattwise/core/model"
	wwErrors "github.com/ezoic/wattwise/pkg/errors"
)

// minScale replaces the scale of constant columns.
const minScale = 1e-8

// StandardScaler standardizes features to zero mean and unit variance.
type StandardScaler struct {
	State *model.StateManager

	// Mean is the per-feature mean, zero when WithMean is false.
	Mean []float64
	// Scale is the per-feature population standard deviation, one when
	// WithStd is false or the column is constant.
	Scale []float64

	NFeatures int

	WithMean bool
	WithStd  bool
}

// NewStandardScaler creates an unfitted scaler.
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		State:    model.NewStateManager(),
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// Fit computes the per-feature mean and scale of X.
//
// Errors:
//   - ErrEmptyData: if X is empty
func (s *StandardScaler) Fit(X mat.Matrix) (err error) {
	defer wwErrors.Recover(&err, "StandardScaler.Fit")
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return wwErrors.NewModelError("StandardScaler.Fit", "empty data", wwErrors.ErrEmptyData)
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		mean, std := stat.PopMeanStdDev(col, nil)
		if s.WithMean {
			s.Mean[j] = mean
		}
		s.Scale[j] = 1
		if s.WithStd && std >= minScale {
			s.Scale[j] = std
		}
	}

	s.State.SetFitted()
	s.State.SetDimensions(c, r)
	return nil
}

// Transform returns (X - Mean) / Scale.
func (s *StandardScaler) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer wwErrors.Recover(&err, "StandardScaler.Transform")
	return s.apply(X, "Transform", func(v float64, j int) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	})
}

// FitTransform fits the scaler on X and transforms it.
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps standardized values back to the original units.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer wwErrors.Recover(&err, "StandardScaler.InverseTransform")
	return s.apply(X, "InverseTransform", func(v float64, j int) float64 {
		return v*s.Scale[j] + s.Mean[j]
	})
}

func (s *StandardScaler) apply(X mat.Matrix, method string, f func(v float64, j int) float64) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, wwErrors.NewNotFittedError("StandardScaler", method)
	}
	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, wwErrors.NewDimensionError("StandardScaler."+method, s.NFeatures, c, 1)
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 { return f(v, j) }, X)
	return out, nil
}

// IsFitted reports whether Fit has completed.
func (s *StandardScaler) IsFitted() bool {
	return s.State.IsFitted()
}

func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)", s.WithMean, s.WithStd, s.NFeatures)
}
