package lightgbm

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	wwErrors "github.com/ezoic/wattwise/pkg/errors"
	"github.com/ezoic/wattwise/pkg/log"
)

// TrainingParams contains all training hyperparameters
type TrainingParams struct {
	// Basic parameters
	NumIterations int     `json:"num_iterations"`
	LearningRate  float64 `json:"learning_rate"`
	NumLeaves     int     `json:"num_leaves"`
	MaxDepth      int     `json:"max_depth"`
	MinDataInLeaf int     `json:"min_data_in_leaf"`

	// Regularization
	Lambda              float64 `json:"lambda_l2"`
	Alpha               float64 `json:"lambda_l1"`
	MinGainToSplit      float64 `json:"min_gain_to_split"`
	MinSumHessianInLeaf float64 `json:"min_sum_hessian_in_leaf"`

	// Sampling
	BaggingFraction float64 `json:"bagging_fraction"`
	BaggingFreq     int     `json:"bagging_freq"`
	FeatureFraction float64 `json:"feature_fraction"`

	// Histogram parameters
	MaxBin int `json:"max_bin"`

	// Objective
	Objective  string  `json:"objective"`
	HuberDelta float64 `json:"huber_delta"`

	// Other
	Seed      int `json:"seed"`
	Verbosity int `json:"verbosity"`
}

// withDefaults fills unset parameters with LightGBM's defaults.
func (p TrainingParams) withDefaults() TrainingParams {
	if p.NumIterations == 0 {
		p.NumIterations = 100
	}
	if p.LearningRate == 0 {
		p.LearningRate = 0.1
	}
	if p.NumLeaves == 0 {
		p.NumLeaves = 31
	}
	if p.MaxBin == 0 {
		p.MaxBin = 255
	}
	if p.MinDataInLeaf == 0 {
		p.MinDataInLeaf = 20
	}
	if p.MinSumHessianInLeaf == 0 {
		p.MinSumHessianInLeaf = 1e-3
	}
	if p.BaggingFraction == 0 {
		p.BaggingFraction = 1.0
	}
	if p.FeatureFraction == 0 {
		p.FeatureFraction = 1.0
	}
	return p
}

// Validate reports the first invalid parameter.
func (p TrainingParams) Validate() error {
	switch {
	case p.NumIterations < 1:
		return wwErrors.NewValueError("TrainingParams", "num_iterations must be positive")
	case p.LearningRate <= 0:
		return wwErrors.NewValueError("TrainingParams", "learning_rate must be positive")
	case p.NumLeaves < 2:
		return wwErrors.NewValueError("TrainingParams", "num_leaves must be at least 2")
	case p.MinDataInLeaf < 1:
		return wwErrors.NewValueError("TrainingParams", "min_data_in_leaf must be positive")
	case p.Lambda < 0 || p.Alpha < 0:
		return wwErrors.NewValueError("TrainingParams", "regularization must be non-negative")
	case p.BaggingFraction <= 0 || p.BaggingFraction > 1:
		return wwErrors.NewValueError("TrainingParams", "bagging_fraction must be in (0, 1]")
	case p.FeatureFraction <= 0 || p.FeatureFraction > 1:
		return wwErrors.NewValueError("TrainingParams", "feature_fraction must be in (0, 1]")
	case p.MaxBin < 2 || p.MaxBin > math.MaxUint16:
		return wwErrors.NewValueError("TrainingParams", "max_bin must be in [2, 65535]")
	}
	return nil
}

// SplitInfo contains information about a potential split
type SplitInfo struct {
	Feature    int
	Bin        int
	Threshold  float64
	Gain       float64
	LeftCount  int
	RightCount int
}

// Trainer implements histogram-based gradient boosting of regression trees.
// Trees grow depth-first and stop at MaxDepth, NumLeaves or when no split
// satisfies MinDataInLeaf and MinGainToSplit.
type Trainer struct {
	params TrainingParams

	X *mat.Dense
	y []float64

	binMapper *BinMapper
	binned    [][]uint16

	gradients   []float64
	hessians    []float64
	predictions []float64

	trees     []Tree
	iteration int

	objective ObjectiveFunction
	initScore float64

	sampler        *SamplingStrategy
	activeFeatures []int

	splitImportance []float64
	gainImportance  []float64

	logger log.Logger
}

// NewTrainer creates a new trainer. Unset parameters take their defaults.
func NewTrainer(params TrainingParams) *Trainer {
	params = params.withDefaults()
	return &Trainer{
		params:  params,
		sampler: NewSamplingStrategy(params),
		logger:  log.GetLoggerWithName("lightgbm.trainer"),
	}
}

// Params returns the effective parameters.
func (t *Trainer) Params() TrainingParams {
	return t.params
}

// Fit grows NumIterations trees on (X, y).
func (t *Trainer) Fit(X, y mat.Matrix) (err error) {
	defer wwErrors.Recover(&err, "Trainer.Fit")

	if err := t.params.Validate(); err != nil {
		return err
	}

	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return wwErrors.NewModelError("Trainer.Fit", "empty data", wwErrors.ErrEmptyData)
	}
	if yRows, _ := y.Dims(); yRows != rows {
		return wwErrors.NewDimensionError("Trainer.Fit", rows, yRows, 0)
	}

	objective, err := CreateObjectiveFunction(t.params.Objective, &t.params)
	if err != nil {
		return err
	}
	t.objective = objective

	t.X = mat.DenseCopyOf(X)
	t.y = make([]float64, rows)
	for i := range t.y {
		t.y[i] = y.At(i, 0)
	}

	t.initialize()

	startTime := time.Now()
	for iter := 0; iter < t.params.NumIterations; iter++ {
		t.iteration = iter
		t.calculateGradients()

		t.activeFeatures = t.sampler.SampleFeatures(cols, iter)
		sampled := t.sampler.SampleInstances(rows, iter)

		tree := t.buildTree(sampled)
		t.trees = append(t.trees, tree)
		t.updatePredictions(&tree)

		if iter%10 == 0 || iter == t.params.NumIterations-1 {
			t.logger.Debug("Training progress",
				log.IterationKey, iter,
				"loss", t.calculateLoss(),
				"leaves", tree.NumLeaves,
			)
		}
	}

	t.logger.Debug("Boosting finished",
		"trees", len(t.trees),
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
	)
	return nil
}

func (t *Trainer) initialize() {
	rows, cols := t.X.Dims()

	t.initScore = t.objective.GetInitScore(t.y)
	t.gradients = make([]float64, rows)
	t.hessians = make([]float64, rows)
	t.predictions = make([]float64, rows)
	for i := range t.predictions {
		t.predictions[i] = t.initScore
	}

	t.binMapper = NewBinMapper(t.X, t.params.MaxBin)
	t.binned = t.binMapper.Transform(t.X)

	t.trees = make([]Tree, 0, t.params.NumIterations)
	t.splitImportance = make([]float64, cols)
	t.gainImportance = make([]float64, cols)
}

func (t *Trainer) calculateGradients() {
	for i, target := range t.y {
		t.gradients[i] = t.objective.CalculateGradient(t.predictions[i], target)
		t.hessians[i] = t.objective.CalculateHessian(t.predictions[i], target)
	}
}

func (t *Trainer) buildTree(indices []int) Tree {
	tree := Tree{
		TreeIndex:     t.iteration,
		ShrinkageRate: t.params.LearningRate,
		Nodes:         make([]Node, 0, 2*t.params.NumLeaves),
	}
	hist := buildNodeHistogram(t.binMapper, t.binned, indices, t.gradients, t.hessians)
	leaves := 1
	t.buildNode(&tree, indices, hist, -1, 0, &leaves)
	tree.NumLeaves = leaves
	return tree
}

func (t *Trainer) buildNode(tree *Tree, indices []int, hist *NodeHistogram, parentIdx, depth int, leaves *int) int {
	nodeIdx := len(tree.Nodes)

	canSplit := (t.params.MaxDepth <= 0 || depth < t.params.MaxDepth) &&
		len(indices) >= 2*t.params.MinDataInLeaf &&
		*leaves < t.params.NumLeaves

	var best SplitInfo
	if canSplit {
		best = t.findBestSplit(hist)
	}
	if !canSplit || best.Feature < 0 || best.Gain <= t.params.MinGainToSplit {
		tree.Nodes = append(tree.Nodes, Node{
			NodeID:     nodeIdx,
			ParentID:   parentIdx,
			NodeType:   LeafNode,
			LeafValue:  t.calculateLeafValue(hist.totalGrad, hist.totalHess),
			LeftChild:  -1,
			RightChild: -1,
			Count:      len(indices),
		})
		return nodeIdx
	}

	tree.Nodes = append(tree.Nodes, Node{
		NodeID:       nodeIdx,
		ParentID:     parentIdx,
		NodeType:     NumericalNode,
		SplitFeature: best.Feature,
		Threshold:    best.Threshold,
		Gain:         best.Gain,
		Count:        len(indices),
	})
	*leaves++
	t.splitImportance[best.Feature]++
	t.gainImportance[best.Feature] += best.Gain

	leftIdx, rightIdx := t.splitData(indices, best)

	// Build the smaller child's histogram and derive the other by subtraction.
	var leftHist, rightHist *NodeHistogram
	if len(leftIdx) <= len(rightIdx) {
		leftHist = buildNodeHistogram(t.binMapper, t.binned, leftIdx, t.gradients, t.hessians)
		rightHist = hist.subtract(leftHist)
	} else {
		rightHist = buildNodeHistogram(t.binMapper, t.binned, rightIdx, t.gradients, t.hessians)
		leftHist = hist.subtract(rightHist)
	}

	leftChild := t.buildNode(tree, leftIdx, leftHist, nodeIdx, depth+1, leaves)
	rightChild := t.buildNode(tree, rightIdx, rightHist, nodeIdx, depth+1, leaves)

	tree.Nodes[nodeIdx].LeftChild = leftChild
	tree.Nodes[nodeIdx].RightChild = rightChild
	return nodeIdx
}

func (t *Trainer) findBestSplit(hist *NodeHistogram) SplitInfo {
	best := SplitInfo{Feature: -1, Gain: math.Inf(-1)}
	parentScore := t.leafScore(hist.totalGrad, hist.totalHess)

	for _, f := range t.activeFeatures {
		bins := hist.histograms[f]
		var leftGrad, leftHess float64
		leftCount := 0
		for b := 0; b < len(bins)-1; b++ {
			leftGrad += bins[b].SumGrad
			leftHess += bins[b].SumHess
			leftCount += bins[b].Count

			rightCount := hist.count - leftCount
			if leftCount < t.params.MinDataInLeaf {
				continue
			}
			if rightCount < t.params.MinDataInLeaf {
				break
			}
			rightGrad := hist.totalGrad - leftGrad
			rightHess := hist.totalHess - leftHess
			if leftHess < t.params.MinSumHessianInLeaf || rightHess < t.params.MinSumHessianInLeaf {
				continue
			}

			gain := t.leafScore(leftGrad, leftHess) + t.leafScore(rightGrad, rightHess) - parentScore
			if gain > best.Gain {
				best = SplitInfo{
					Feature:    f,
					Bin:        b,
					Threshold:  t.binMapper.Threshold(f, b),
					Gain:       gain,
					LeftCount:  leftCount,
					RightCount: rightCount,
				}
			}
		}
	}
	return best
}

// leafScore is the regularized objective reduction G²/(H+λ) of a leaf,
// with G soft-thresholded by the L1 penalty.
func (t *Trainer) leafScore(sumGrad, sumHess float64) float64 {
	g := t.thresholdL1(sumGrad)
	return g * g / (sumHess + t.params.Lambda)
}

func (t *Trainer) calculateLeafValue(sumGrad, sumHess float64) float64 {
	denom := sumHess + t.params.Lambda
	if denom <= 0 {
		return 0
	}
	return -t.thresholdL1(sumGrad) / denom
}

func (t *Trainer) thresholdL1(g float64) float64 {
	if t.params.Alpha == 0 {
		return g
	}
	if math.Abs(g) <= t.params.Alpha {
		return 0
	}
	return g - math.Copysign(t.params.Alpha, g)
}

func (t *Trainer) splitData(indices []int, split SplitInfo) ([]int, []int) {
	left := make([]int, 0, split.LeftCount)
	right := make([]int, 0, split.RightCount)
	column := t.binned[split.Feature]
	for _, idx := range indices {
		if int(column[idx]) <= split.Bin {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	return left, right
}

// updatePredictions adds the new tree's shrunken output for every row,
// including rows left out of the bag.
func (t *Trainer) updatePredictions(tree *Tree) {
	for i := range t.predictions {
		t.predictions[i] += tree.Predict(t.X.RawRowView(i)) * tree.ShrinkageRate
	}
}

func (t *Trainer) calculateLoss() float64 {
	var loss float64
	for i, target := range t.y {
		loss += t.objective.CalculateLoss(t.predictions[i], target)
	}
	return loss / float64(len(t.y))
}

// GetModel returns the trained model
func (t *Trainer) GetModel() *Model {
	_, cols := t.X.Dims()
	return &Model{
		Trees:           t.trees,
		InitScore:       t.initScore,
		NumFeatures:     cols,
		NumIteration:    len(t.trees),
		Objective:       t.objective.Name(),
		LearningRate:    t.params.LearningRate,
		NumLeaves:       t.params.NumLeaves,
		MaxDepth:        t.params.MaxDepth,
		SplitImportance: append([]float64(nil), t.splitImportance...),
		GainImportance:  append([]float64(nil), t.gainImportance...),
	}
}
