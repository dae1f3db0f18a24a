package lightgbm

import (
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"

	wwErrors "github.com/ezoic/wattwise/pkg/errors"
)

// parallelThreshold is the row count below which prediction stays sequential.
const parallelThreshold = 1000

// Predictor evaluates a Model. It only reads the model, so one Predictor (or
// many) can serve concurrent callers.
type Predictor struct {
	model      *Model
	numThreads int
}

// NewPredictor creates a predictor for m using all available CPUs.
func NewPredictor(m *Model) *Predictor {
	return &Predictor{model: m, numThreads: runtime.GOMAXPROCS(0)}
}

// SetNumThreads limits the number of goroutines used for large inputs.
func (p *Predictor) SetNumThreads(n int) {
	if n > 0 {
		p.numThreads = n
	}
}

// Predict returns an (n_samples, 1) matrix of model outputs.
func (p *Predictor) Predict(X mat.Matrix) (mat.Matrix, error) {
	rows, cols := X.Dims()
	if rows == 0 {
		return nil, wwErrors.NewModelError("Predictor.Predict", "empty data", wwErrors.ErrEmptyData)
	}
	if cols != p.model.NumFeatures {
		return nil, wwErrors.NewDimensionError("Predictor.Predict", p.model.NumFeatures, cols, 1)
	}
	out := mat.NewDense(rows, 1, nil)

	predictRange := func(start, end int) {
		features := make([]float64, cols)
		for i := start; i < end; i++ {
			mat.Row(features, i, X)
			out.Set(i, 0, p.model.PredictSingle(features))
		}
	}

	if rows < parallelThreshold || p.numThreads <= 1 {
		predictRange(0, rows)
		return out, nil
	}

	chunk := (rows + p.numThreads - 1) / p.numThreads
	var wg sync.WaitGroup
	for start := 0; start < rows; start += chunk {
		end := min(start+chunk, rows)
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			predictRange(start, end)
		}(start, end)
	}
	wg.Wait()
	return out, nil
}
