package lightgbm

// NodeType distinguishes split nodes from leaves.
type NodeType int

const (
	// NumericalNode splits on feature <= Threshold.
	NumericalNode NodeType = iota
	// LeafNode holds an output value.
	LeafNode
)

// Node is one node of a regression tree. Children are indices into Tree.Nodes.
type Node struct {
	NodeID       int
	ParentID     int
	NodeType     NodeType
	SplitFeature int
	Threshold    float64
	Gain         float64
	LeftChild    int
	RightChild   int
	LeafValue    float64
	Count        int
}

// Tree is a single boosted tree. Its raw output is scaled by ShrinkageRate.
type Tree struct {
	TreeIndex     int
	NumLeaves     int
	ShrinkageRate float64
	Nodes         []Node
}

// Predict returns the unscaled leaf value reached by features.
func (t *Tree) Predict(features []float64) float64 {
	if len(t.Nodes) == 0 {
		return 0
	}
	idx := 0
	for {
		node := &t.Nodes[idx]
		if node.NodeType == LeafNode {
			return node.LeafValue
		}
		if features[node.SplitFeature] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
}

// Model is a fitted ensemble. All fields are exported for gob encoding and are
// never modified after training.
type Model struct {
	Trees        []Tree
	InitScore    float64
	NumFeatures  int
	NumIteration int
	Objective    string
	LearningRate float64
	NumLeaves    int
	MaxDepth     int

	// Per-feature importance accumulated during training.
	SplitImportance []float64
	GainImportance  []float64
}

// PredictSingle returns the raw model output for one feature vector.
func (m *Model) PredictSingle(features []float64) float64 {
	pred := m.InitScore
	for i := range m.Trees {
		pred += m.Trees[i].Predict(features) * m.Trees[i].ShrinkageRate
	}
	return pred
}
