// Package lightgbm implements a LightGBM-style gradient-boosted regression
// tree ensemble with a scikit-learn like API.
//
// Training is histogram based: every feature is discretized into at most
// MaxBin quantile bins once, and split search scans bin histograms of
// gradients instead of sorted raw values. Each iteration can draw a bag of
// rows (Subsample/SubsampleFreq) and a subset of columns (ColsampleBytree);
// all draws derive from RandomState, so a fit is reproducible.
//
// Example:
//
//	reg := lightgbm.NewLGBMRegressor().
//		WithNumIterations(200).
//		WithMaxDepth(6).
//		WithSubsample(0.8).
//		WithColsampleBytree(0.8)
//	if err := reg.Fit(X, y); err != nil {
//		log.Fatal(err)
//	}
//	pred, err := reg.Predict(XTest)
package lightgbm

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/wattwise/core/model"
	"github.com/ezoic/wattwise/metrics"
	wwErrors "github.com/ezoic/wattwise/pkg/errors"
	"github.com/ezoic/wattwise/pkg/log"
)

// Importance types accepted by FeatureImportance.
const (
	ImportanceGain  = "gain"
	ImportanceSplit = "split"
)

// LGBMRegressor implements a LightGBM regressor with scikit-learn compatible API.
// Every field is exported so the fitted regressor survives a gob round trip.
type LGBMRegressor struct {
	State *model.StateManager
	Model *Model

	// Hyperparameters, named after their LightGBM counterparts
	NumLeaves       int     // Number of leaves in one tree
	MaxDepth        int     // Maximum tree depth, <= 0 for no limit
	LearningRate    float64 // Boosting learning rate
	NumIterations   int     // Number of boosting iterations
	MinChildSamples int     // Minimum number of data in one leaf
	MinChildWeight  float64 // Minimum sum of hessians in one leaf
	Subsample       float64 // Subsample ratio of training data
	SubsampleFreq   int     // Frequency of subsample
	ColsampleBytree float64 // Subsample ratio of columns when constructing tree
	RegAlpha        float64 // L1 regularization
	RegLambda       float64 // L2 regularization
	MaxBin          int     // Maximum number of histogram bins per feature
	RandomState     int     // Random seed
	Objective       string  // regression or huber
	HuberAlpha      float64 // Delta for Huber loss
	NumThreads      int     // Goroutines used for prediction, <= 0 for all CPUs
	ImportanceType  string  // Feature importance type (gain, split)

	// FeatureNames optionally labels the columns seen by Fit.
	FeatureNames []string
}

// NewLGBMRegressor creates a new LightGBM regressor with default parameters
func NewLGBMRegressor() *LGBMRegressor {
	return &LGBMRegressor{
		State:           model.NewStateManager(),
		NumLeaves:       31,
		MaxDepth:        -1,
		LearningRate:    0.1,
		NumIterations:   100,
		MinChildSamples: 20,
		MinChildWeight:  1e-3,
		Subsample:       1.0,
		SubsampleFreq:   0,
		ColsampleBytree: 1.0,
		RegLambda:       0.0,
		MaxBin:          255,
		RandomState:     42,
		Objective:       ObjectiveRegression,
		HuberAlpha:      1.0,
		ImportanceType:  ImportanceGain,
	}
}

// WithNumLeaves sets the number of leaves
func (lgb *LGBMRegressor) WithNumLeaves(n int) *LGBMRegressor {
	lgb.NumLeaves = n
	return lgb
}

// WithMaxDepth sets the maximum depth
func (lgb *LGBMRegressor) WithMaxDepth(d int) *LGBMRegressor {
	lgb.MaxDepth = d
	return lgb
}

// WithLearningRate sets the learning rate
func (lgb *LGBMRegressor) WithLearningRate(lr float64) *LGBMRegressor {
	lgb.LearningRate = lr
	return lgb
}

// WithNumIterations sets the number of iterations
func (lgb *LGBMRegressor) WithNumIterations(n int) *LGBMRegressor {
	lgb.NumIterations = n
	return lgb
}

// WithMinChildSamples sets the minimum number of rows per leaf
func (lgb *LGBMRegressor) WithMinChildSamples(n int) *LGBMRegressor {
	lgb.MinChildSamples = n
	return lgb
}

// WithSubsample sets the row sampling ratio, drawn anew every iteration.
func (lgb *LGBMRegressor) WithSubsample(ratio float64) *LGBMRegressor {
	lgb.Subsample = ratio
	if lgb.SubsampleFreq == 0 {
		lgb.SubsampleFreq = 1
	}
	return lgb
}

// WithColsampleBytree sets the column sampling ratio per tree
func (lgb *LGBMRegressor) WithColsampleBytree(ratio float64) *LGBMRegressor {
	lgb.ColsampleBytree = ratio
	return lgb
}

// WithRegLambda sets the L2 leaf regularization
func (lgb *LGBMRegressor) WithRegLambda(lambda float64) *LGBMRegressor {
	lgb.RegLambda = lambda
	return lgb
}

// WithRandomState sets the random seed
func (lgb *LGBMRegressor) WithRandomState(seed int) *LGBMRegressor {
	lgb.RandomState = seed
	return lgb
}

// WithObjective sets the objective function
func (lgb *LGBMRegressor) WithObjective(obj string) *LGBMRegressor {
	lgb.Objective = obj
	return lgb
}

// WithFeatureNames labels the training columns
func (lgb *LGBMRegressor) WithFeatureNames(names ...string) *LGBMRegressor {
	lgb.FeatureNames = append([]string(nil), names...)
	return lgb
}

func (lgb *LGBMRegressor) trainingParams() TrainingParams {
	return TrainingParams{
		NumIterations:       lgb.NumIterations,
		LearningRate:        lgb.LearningRate,
		NumLeaves:           lgb.NumLeaves,
		MaxDepth:            lgb.MaxDepth,
		MinDataInLeaf:       lgb.MinChildSamples,
		MinSumHessianInLeaf: lgb.MinChildWeight,
		Lambda:              lgb.RegLambda,
		Alpha:               lgb.RegAlpha,
		MinGainToSplit:      1e-7,
		BaggingFraction:     lgb.Subsample,
		BaggingFreq:         lgb.SubsampleFreq,
		FeatureFraction:     lgb.ColsampleBytree,
		MaxBin:              lgb.MaxBin,
		Objective:           lgb.Objective,
		HuberDelta:          lgb.HuberAlpha,
		Seed:                lgb.RandomState,
	}
}

// Fit trains the LightGBM regressor
//
// Errors:
//   - ErrEmptyData: if X has no rows
//   - DimensionError: if X and y disagree on the number of rows or y has more than one column
//   - ValueError: if a hyperparameter is out of range
func (lgb *LGBMRegressor) Fit(X, y mat.Matrix) (err error) {
	defer wwErrors.Recover(&err, "LGBMRegressor.Fit")

	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if rows == 0 || cols == 0 {
		return wwErrors.NewModelError("LGBMRegressor.Fit", "empty data", wwErrors.ErrEmptyData)
	}
	if rows != yRows {
		return wwErrors.NewDimensionError("LGBMRegressor.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return wwErrors.NewDimensionError("LGBMRegressor.Fit", 1, yCols, 1)
	}
	if len(lgb.FeatureNames) > 0 && len(lgb.FeatureNames) != cols {
		return wwErrors.NewDimensionError("LGBMRegressor.Fit", len(lgb.FeatureNames), cols, 1)
	}

	logger := log.GetLoggerWithName("lightgbm.regressor").With(log.ModelNameKey, "LGBMRegressor")
	logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		"num_iterations", lgb.NumIterations,
		"max_depth", lgb.MaxDepth,
	)
	startTime := time.Now()

	trainer := NewTrainer(lgb.trainingParams())
	if err := trainer.Fit(X, y); err != nil {
		return wwErrors.Wrap(err, "training failed")
	}

	lgb.Model = trainer.GetModel()
	if lgb.State == nil {
		lgb.State = model.NewStateManager()
	}
	lgb.State.SetFitted()
	lgb.State.SetDimensions(cols, rows)

	logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
		"trees", lgb.Model.NumIteration,
	)
	return nil
}

// Predict returns an (n_samples, 1) matrix of predicted values. It never
// modifies the regressor and is safe for concurrent use once fitted.
func (lgb *LGBMRegressor) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer wwErrors.Recover(&err, "LGBMRegressor.Predict")
	if !lgb.IsFitted() {
		return nil, wwErrors.NewNotFittedError("LGBMRegressor", "Predict")
	}

	_, cols := X.Dims()
	if cols != lgb.Model.NumFeatures {
		return nil, wwErrors.NewDimensionError("LGBMRegressor.Predict", lgb.Model.NumFeatures, cols, 1)
	}

	p := NewPredictor(lgb.Model)
	p.SetNumThreads(lgb.NumThreads)
	return p.Predict(X)
}

// Score returns the coefficient of determination R² of the prediction
func (lgb *LGBMRegressor) Score(X, y mat.Matrix) (float64, error) {
	if !lgb.IsFitted() {
		return 0, wwErrors.NewNotFittedError("LGBMRegressor", "Score")
	}

	predictions, err := lgb.Predict(X)
	if err != nil {
		return 0, err
	}

	rows, _ := y.Dims()
	yVec := mat.NewVecDense(rows, nil)
	predVec := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		yVec.SetVec(i, y.At(i, 0))
		predVec.SetVec(i, predictions.At(i, 0))
	}
	return metrics.R2Score(yVec, predVec)
}

// FeatureImportance returns per-feature importance of the given type
// ("gain" or "split"); an empty type uses ImportanceType. With normalize the
// values sum to 1.
func (lgb *LGBMRegressor) FeatureImportance(importanceType string, normalize bool) ([]float64, error) {
	if !lgb.IsFitted() {
		return nil, wwErrors.NewNotFittedError("LGBMRegressor", "FeatureImportance")
	}
	if importanceType == "" {
		importanceType = lgb.ImportanceType
	}

	var raw []float64
	switch importanceType {
	case ImportanceGain:
		raw = lgb.Model.GainImportance
	case ImportanceSplit:
		raw = lgb.Model.SplitImportance
	default:
		return nil, wwErrors.NewValueError("LGBMRegressor.FeatureImportance", "unknown importance type "+importanceType)
	}

	out := append([]float64(nil), raw...)
	if !normalize {
		return out, nil
	}
	var total float64
	for _, v := range out {
		total += v
	}
	if total > 0 {
		for i := range out {
			out[i] /= total
		}
	}
	return out, nil
}

// IsFitted returns whether the model has been fitted.
func (lgb *LGBMRegressor) IsFitted() bool {
	return lgb.State.IsFitted() && lgb.Model != nil
}

// GetParams returns the hyperparameters in LightGBM naming.
func (lgb *LGBMRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"num_leaves":        lgb.NumLeaves,
		"max_depth":         lgb.MaxDepth,
		"learning_rate":     lgb.LearningRate,
		"n_estimators":      lgb.NumIterations,
		"min_child_samples": lgb.MinChildSamples,
		"subsample":         lgb.Subsample,
		"subsample_freq":    lgb.SubsampleFreq,
		"colsample_bytree":  lgb.ColsampleBytree,
		"reg_alpha":         lgb.RegAlpha,
		"reg_lambda":        lgb.RegLambda,
		"random_state":      lgb.RandomState,
		"objective":         lgb.Objective,
	}
}

var _ model.Regressor = (*LGBMRegressor)(nil)
