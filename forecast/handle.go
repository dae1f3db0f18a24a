// Package forecast turns model predictions into the figures shown on the
// dashboard: an hourly output curve for a panel, a daily summary and the
// lookup tables (appliance status, efficiency category, time of day) around
// them.
//
// The model is loaded once at startup into a Handle and shared read-only by
// every request.
package forecast

import (
	"time"

	"gonum.org/v1/gonum/mat"

	wwErrors "github.com/ezoic/wattwise/pkg/errors"
	"github.com/ezoic/wattwise/training"
	"github.com/ezoic/wattwise/weather"
)

// Predictor is a fitted regressor over weather.FeatureNames.
type Predictor interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Handle is a read-only view of a loaded model. It is safe for concurrent
// use as long as the wrapped Predictor is.
type Handle struct {
	model    Predictor
	source   string
	loadedAt time.Time
}

// NewHandle wraps an already fitted predictor.
func NewHandle(p Predictor, source string) *Handle {
	return &Handle{model: p, source: source, loadedAt: time.Now()}
}

// Load reads the model artifact at path into a Handle.
func Load(path string) (*Handle, error) {
	m, err := training.LoadModel(path)
	if err != nil {
		return nil, err
	}
	return NewHandle(m, path), nil
}

// Source is where the model came from.
func (h *Handle) Source() string { return h.source }

// LoadedAt is when the Handle was created.
func (h *Handle) LoadedAt() time.Time { return h.loadedAt }

// Predict implements Predictor.
func (h *Handle) Predict(X mat.Matrix) (mat.Matrix, error) {
	return h.model.Predict(X)
}

// Efficiency predicts the solar output efficiency of one sample, in percent.
func (h *Handle) Efficiency(s weather.Sample) (float64, error) {
	out, err := h.Batch([]weather.Sample{s})
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// Batch predicts every sample in one call.
func (h *Handle) Batch(samples []weather.Sample) ([]float64, error) {
	return predictSamples(h.model, samples)
}

func predictSamples(p Predictor, samples []weather.Sample) ([]float64, error) {
	if len(samples) == 0 {
		return nil, wwErrors.ErrEmptyData
	}
	pred, err := p.Predict(weather.Matrix(samples))
	if err != nil {
		return nil, wwErrors.Wrap(err, "predict efficiency")
	}
	out := make([]float64, len(samples))
	for i := range out {
		out[i] = pred.At(i, 0)
	}
	return out, nil
}

var _ Predictor = (*Handle)(nil)
