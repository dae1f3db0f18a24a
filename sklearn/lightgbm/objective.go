package lightgbm

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	wwErrors "github.com/ezoic/wattwise/pkg/errors"
)

// Objective names accepted by TrainingParams.Objective.
const (
	ObjectiveRegression = "regression"
	ObjectiveL2         = "l2"
	ObjectiveHuber      = "huber"
)

// ObjectiveFunction supplies first and second order derivatives of a loss.
type ObjectiveFunction interface {
	CalculateGradient(prediction, target float64) float64
	CalculateHessian(prediction, target float64) float64
	CalculateLoss(prediction, target float64) float64
	GetInitScore(targets []float64) float64
	Name() string
}

// CreateObjectiveFunction returns the objective for name.
func CreateObjectiveFunction(name string, params *TrainingParams) (ObjectiveFunction, error) {
	switch name {
	case "", ObjectiveRegression, ObjectiveL2:
		return &L2Objective{}, nil
	case ObjectiveHuber:
		delta := params.HuberDelta
		if delta <= 0 {
			delta = 1.0
		}
		return &HuberObjective{Delta: delta}, nil
	default:
		return nil, wwErrors.NewValueError("CreateObjectiveFunction", "unsupported objective "+name)
	}
}

// L2Objective is squared error.
type L2Objective struct{}

func (o *L2Objective) CalculateGradient(prediction, target float64) float64 {
	return prediction - target
}

func (o *L2Objective) CalculateHessian(prediction, target float64) float64 {
	return 1.0
}

func (o *L2Objective) CalculateLoss(prediction, target float64) float64 {
	d := prediction - target
	return 0.5 * d * d
}

// GetInitScore returns the target mean.
func (o *L2Objective) GetInitScore(targets []float64) float64 {
	return stat.Mean(targets, nil)
}

func (o *L2Objective) Name() string { return ObjectiveRegression }

// HuberObjective is squared error near the target and absolute error beyond Delta.
type HuberObjective struct {
	Delta float64
}

func (o *HuberObjective) CalculateGradient(prediction, target float64) float64 {
	d := prediction - target
	if math.Abs(d) <= o.Delta {
		return d
	}
	return math.Copysign(o.Delta, d)
}

func (o *HuberObjective) CalculateHessian(prediction, target float64) float64 {
	return 1.0
}

func (o *HuberObjective) CalculateLoss(prediction, target float64) float64 {
	d := math.Abs(prediction - target)
	if d <= o.Delta {
		return 0.5 * d * d
	}
	return o.Delta * (d - 0.5*o.Delta)
}

// GetInitScore returns the target median.
func (o *HuberObjective) GetInitScore(targets []float64) float64 {
	sorted := append([]float64(nil), targets...)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

func (o *HuberObjective) Name() string { return ObjectiveHuber }
