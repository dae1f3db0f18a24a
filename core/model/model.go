// Package model provides the estimator contracts and persistence helpers shared
// by the WattWise regressors.
//
// Estimators track their training state with a StateManager and are saved to
// disk with encoding/gob:
//
//	reg := lightgbm.NewLGBMRegressor()
//	if err := reg.Fit(X, y); err != nil {
//		return err
//	}
//	if err := model.SaveModel(reg, "models/solar_prediction_model.gob"); err != nil {
//		return err
//	}
//
// Only exported fields survive a save/load round trip, so estimators keep their
// learned parameters and state in exported fields.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter is implemented by estimators that learn from (X, y).
type Fitter interface {
	Fit(X, y mat.Matrix) error
}

// Predictor is implemented by fitted estimators.
type Predictor interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Regressor is a supervised estimator with an R² score.
type Regressor interface {
	Fitter
	Predictor
	Score(X, y mat.Matrix) (float64, error)
	IsFitted() bool
}

// StateManager tracks whether an estimator has been fitted and the shape of
// its training data. Fields are exported for gob encoding.
type StateManager struct {
	Fitted    bool
	NFeatures int
	NSamples  int
}

// NewStateManager returns a StateManager in the unfitted state.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// SetFitted marks the estimator as trained.
func (s *StateManager) SetFitted() {
	s.Fitted = true
}

// IsFitted reports whether SetFitted has been called since the last Reset.
func (s *StateManager) IsFitted() bool {
	return s != nil && s.Fitted
}

// SetDimensions records the training data shape.
func (s *StateManager) SetDimensions(nFeatures, nSamples int) {
	s.NFeatures = nFeatures
	s.NSamples = nSamples
}

// GetDimensions returns the recorded feature and sample counts.
func (s *StateManager) GetDimensions() (nFeatures, nSamples int) {
	return s.NFeatures, s.NSamples
}

// Reset returns the estimator to the unfitted state.
func (s *StateManager) Reset() {
	*s = StateManager{}
}
