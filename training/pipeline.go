// Package training fits the solar efficiency model on simulated weather.
//
// A Pipeline splits the records 80/20 with a fixed seed, fits the
// gradient-boosted regressor on the training partition, evaluates it on the
// held-out partition and fits a linear baseline next to it for comparison.
// Metrics are reported, never enforced: a poor model is still returned.
//
//	records, _ := simulation.New(rand.NewPCG(42, 42)).Generate(365)
//	result, err := training.NewPipeline().Train(records)
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = training.SaveModel(result.Model, training.DefaultModelPath)
package training

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/wattwise/linear"
	"github.com/ezoic/wattwise/metrics"
	wwErrors "github.com/ezoic/wattwise/pkg/errors"
	"github.com/ezoic/wattwise/pkg/log"
	"github.com/ezoic/wattwise/preprocessing"
	"github.com/ezoic/wattwise/sklearn/lightgbm"
	"github.com/ezoic/wattwise/weather"
)

// Defaults of the training run.
const (
	DefaultTestFraction = 0.2
	DefaultSplitSeed    = 42

	DefaultNumTrees        = 200
	DefaultMaxDepth        = 6
	DefaultNumLeaves       = 64
	DefaultLearningRate    = 0.1
	DefaultSubsample       = 0.8
	DefaultColsample       = 0.8
	DefaultMinChildSamples = 20
	DefaultRegLambda       = 1.0
	DefaultSeed            = 42
)

// Params are the regressor hyperparameters used by a Pipeline.
type Params struct {
	NumTrees        int
	MaxDepth        int
	NumLeaves       int
	LearningRate    float64
	Subsample       float64
	Colsample       float64
	MinChildSamples int
	RegLambda       float64
	Seed            int
}

// DefaultParams returns 200 trees of depth 6 with learning rate 0.1 and 0.8
// row and column subsampling.
func DefaultParams() Params {
	return Params{
		NumTrees:        DefaultNumTrees,
		MaxDepth:        DefaultMaxDepth,
		NumLeaves:       DefaultNumLeaves,
		LearningRate:    DefaultLearningRate,
		Subsample:       DefaultSubsample,
		Colsample:       DefaultColsample,
		MinChildSamples: DefaultMinChildSamples,
		RegLambda:       DefaultRegLambda,
		Seed:            DefaultSeed,
	}
}

// Pipeline trains and evaluates a solar efficiency model.
type Pipeline struct {
	params       Params
	testFraction float64
	splitSeed    uint64
	baseline     bool
	logger       log.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithParams replaces the regressor hyperparameters.
func WithParams(p Params) Option {
	return func(pl *Pipeline) {
		pl.params = p
	}
}

// WithSplit sets the held-out fraction and the shuffle seed.
func WithSplit(testFraction float64, seed uint64) Option {
	return func(pl *Pipeline) {
		pl.testFraction = testFraction
		pl.splitSeed = seed
	}
}

// WithoutBaseline skips the linear baseline fit.
func WithoutBaseline() Option {
	return func(pl *Pipeline) {
		pl.baseline = false
	}
}

// NewPipeline creates a pipeline with DefaultParams and an 80/20 split seeded
// with 42.
func NewPipeline(opts ...Option) *Pipeline {
	pl := &Pipeline{
		params:       DefaultParams(),
		testFraction: DefaultTestFraction,
		splitSeed:    DefaultSplitSeed,
		baseline:     true,
		logger:       log.GetLoggerWithName("training").With(log.ComponentKey, "pipeline"),
	}
	for _, opt := range opts {
		opt(pl)
	}
	return pl
}

// Params returns the regressor hyperparameters.
func (pl *Pipeline) Params() Params {
	return pl.params
}

// Importance is the share of one feature in the model's splits.
type Importance struct {
	Feature string  `json:"feature"`
	Split   float64 `json:"split"`
	Gain    float64 `json:"gain"`
}

// Baseline is the held-out quality of the linear least squares model fitted
// on standardized features. Coefficients are per standard deviation of each
// feature, in weather.FeatureNames order.
type Baseline struct {
	Metrics      metrics.Report `json:"metrics"`
	Coefficients []float64      `json:"coefficients"`
	Intercept    float64        `json:"intercept"`
}

// Result is the outcome of one training run.
type Result struct {
	RunID      string
	Model      *lightgbm.LGBMRegressor
	Metrics    metrics.Report
	Baseline   *Baseline
	Importance []Importance // sorted by split share, descending
	TrainSize  int
	TestSize   int
	Duration   time.Duration
}

// Train splits records, fits the regressor and evaluates it on the held-out
// partition.
//
// Errors:
//   - ErrInsufficientData: if the split leaves an empty partition
//   - any error returned by the regressor's Fit, wrapped
func (pl *Pipeline) Train(records []weather.Record) (_ *Result, err error) {
	defer wwErrors.Recover(&err, "Pipeline.Train")

	start := time.Now()
	runID := uuid.NewString()
	logger := pl.logger.With(log.RunIDKey, runID)

	train, test, err := Split(records, pl.testFraction, pl.splitSeed)
	if err != nil {
		return nil, err
	}
	XTrain, yTrain := weather.Dataset(train)
	XTest, yTest := weather.Dataset(test)

	logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, len(train),
		log.FeaturesKey, weather.NumFeatures,
		"test_samples", len(test),
	)

	reg := pl.newRegressor()
	if err := reg.Fit(XTrain, yTrain); err != nil {
		return nil, wwErrors.Wrap(err, "fit solar efficiency model")
	}

	pred, err := reg.Predict(XTest)
	if err != nil {
		return nil, wwErrors.Wrap(err, "predict held-out partition")
	}
	report, constant, err := evaluate(yTest, columnVector(pred))
	if err != nil {
		return nil, wwErrors.Wrap(err, "evaluate held-out partition")
	}
	if constant {
		logger.Warn("Held-out target has no variance, R2 reported as 0", log.SamplesKey, report.Samples)
	}

	importance, err := importances(reg)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:      runID,
		Model:      reg,
		Metrics:    report,
		Importance: importance,
		TrainSize:  len(train),
		TestSize:   len(test),
	}

	if pl.baseline {
		b, err := fitBaseline(XTrain, yTrain, XTest, yTest)
		if err != nil {
			// The baseline is diagnostic only.
			logger.Warn("Baseline fit failed", log.ErrorKey, err)
		} else {
			result.Baseline = b
		}
	}

	result.Duration = time.Since(start)
	logger.Info("Training completed",
		log.PhaseKey, log.PhaseEvaluation,
		"rmse", report.RMSE,
		"mae", report.MAE,
		"r2", report.R2,
		log.DurationMsKey, result.Duration.Milliseconds(),
	)
	return result, nil
}

func (pl *Pipeline) newRegressor() *lightgbm.LGBMRegressor {
	p := pl.params
	return lightgbm.NewLGBMRegressor().
		WithNumIterations(p.NumTrees).
		WithMaxDepth(p.MaxDepth).
		WithNumLeaves(p.NumLeaves).
		WithLearningRate(p.LearningRate).
		WithSubsample(p.Subsample).
		WithColsampleBytree(p.Colsample).
		WithMinChildSamples(p.MinChildSamples).
		WithRegLambda(p.RegLambda).
		WithRandomState(p.Seed).
		WithObjective(lightgbm.ObjectiveRegression).
		WithFeatureNames(weather.FeatureNames...)
}

func importances(reg *lightgbm.LGBMRegressor) ([]Importance, error) {
	split, err := reg.FeatureImportance(lightgbm.ImportanceSplit, true)
	if err != nil {
		return nil, err
	}
	gain, err := reg.FeatureImportance(lightgbm.ImportanceGain, true)
	if err != nil {
		return nil, err
	}
	out := make([]Importance, len(weather.FeatureNames))
	for i, name := range weather.FeatureNames {
		out[i] = Importance{Feature: name, Split: split[i], Gain: gain[i]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Split > out[j].Split })
	return out, nil
}

func fitBaseline(XTrain *mat.Dense, yTrain *mat.VecDense, XTest *mat.Dense, yTest *mat.VecDense) (*Baseline, error) {
	scaler := preprocessing.NewStandardScaler(true, true)
	XTrainScaled, err := scaler.FitTransform(XTrain)
	if err != nil {
		return nil, err
	}
	XTestScaled, err := scaler.Transform(XTest)
	if err != nil {
		return nil, err
	}

	lr := linear.NewLinearRegression()
	if err := lr.Fit(XTrainScaled, yTrain); err != nil {
		return nil, err
	}
	pred, err := lr.Predict(XTestScaled)
	if err != nil {
		return nil, err
	}
	report, _, err := evaluate(yTest, columnVector(pred))
	if err != nil {
		return nil, err
	}
	return &Baseline{
		Metrics:      report,
		Coefficients: lr.GetWeights(),
		Intercept:    lr.GetIntercept(),
	}, nil
}

// evaluate is metrics.Evaluate, except that a held-out target without
// variance (a test partition of night hours only) yields RMSE and MAE with
// zero R2 instead of an error, and reports constant as true.
func evaluate(yTrue, yPred *mat.VecDense) (report metrics.Report, constant bool, err error) {
	report, err = metrics.Evaluate(yTrue, yPred)
	if err == nil || !errors.Is(err, wwErrors.ErrInvalidInput) {
		return report, false, err
	}
	rmse, err := metrics.RMSE(yTrue, yPred)
	if err != nil {
		return metrics.Report{}, false, err
	}
	mae, err := metrics.MAE(yTrue, yPred)
	if err != nil {
		return metrics.Report{}, false, err
	}
	return metrics.Report{RMSE: rmse, MAE: mae, Samples: yTrue.Len()}, true, nil
}

func columnVector(m mat.Matrix) *mat.VecDense {
	r, _ := m.Dims()
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v
}
