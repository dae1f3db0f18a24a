package lightgbm

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// BinMapper discretizes each feature into at most MaxBin bins. Bin k of
// feature f holds the values v with Cuts[f][k-1] < v <= Cuts[f][k].
type BinMapper struct {
	MaxBin int
	Cuts   [][]float64
}

// NewBinMapper computes quantile cut points for every column of X.
func NewBinMapper(X mat.Matrix, maxBin int) *BinMapper {
	rows, cols := X.Dims()
	bm := &BinMapper{MaxBin: maxBin, Cuts: make([][]float64, cols)}
	values := make([]float64, rows)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			values[i] = X.At(i, j)
		}
		bm.Cuts[j] = findQuantileCuts(values, maxBin)
	}
	return bm
}

// NumBins returns the number of bins of feature f.
func (bm *BinMapper) NumBins(f int) int {
	return len(bm.Cuts[f]) + 1
}

// Bin returns the bin of value v for feature f.
func (bm *BinMapper) Bin(f int, v float64) int {
	return sort.SearchFloat64s(bm.Cuts[f], v)
}

// Threshold returns the split threshold separating bins <= bin from the rest.
func (bm *BinMapper) Threshold(f, bin int) float64 {
	return bm.Cuts[f][bin]
}

// Transform returns the bin index of every value, stored per feature.
func (bm *BinMapper) Transform(X mat.Matrix) [][]uint16 {
	rows, cols := X.Dims()
	binned := make([][]uint16, cols)
	for j := 0; j < cols; j++ {
		binned[j] = make([]uint16, rows)
		for i := 0; i < rows; i++ {
			binned[j][i] = uint16(bm.Bin(j, X.At(i, j)))
		}
	}
	return binned
}

// findQuantileCuts places cuts at midpoints between distinct values. With more
// distinct values than maxBin, cuts are taken at evenly spaced quantiles of the
// distinct values.
func findQuantileCuts(values []float64, maxBin int) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	unique := make([]float64, 1, len(sorted))
	unique[0] = sorted[0]
	for _, v := range sorted[1:] {
		if v != unique[len(unique)-1] {
			unique = append(unique, v)
		}
	}

	if len(unique) <= maxBin {
		cuts := make([]float64, len(unique)-1)
		for i := range cuts {
			cuts[i] = (unique[i] + unique[i+1]) / 2
		}
		return cuts
	}

	cuts := make([]float64, 0, maxBin-1)
	for i := 1; i < maxBin; i++ {
		q := (len(unique) - 1) * i / maxBin
		cut := (unique[q] + unique[q+1]) / 2
		if len(cuts) == 0 || cut > cuts[len(cuts)-1] {
			cuts = append(cuts, cut)
		}
	}
	return cuts
}

// Histogram accumulates gradient statistics of one bin.
type Histogram struct {
	Count   int
	SumGrad float64
	SumHess float64
}

// NodeHistogram holds the per-feature histograms of the rows in one node.
type NodeHistogram struct {
	histograms [][]Histogram // [feature][bin]
	totalGrad  float64
	totalHess  float64
	count      int
}

func newNodeHistogram(bm *BinMapper) *NodeHistogram {
	nh := &NodeHistogram{histograms: make([][]Histogram, len(bm.Cuts))}
	for f := range nh.histograms {
		nh.histograms[f] = make([]Histogram, bm.NumBins(f))
	}
	return nh
}

// buildNodeHistogram accumulates gradients of the given rows.
func buildNodeHistogram(bm *BinMapper, binned [][]uint16, indices []int, grad, hess []float64) *NodeHistogram {
	nh := newNodeHistogram(bm)
	nh.count = len(indices)
	for _, idx := range indices {
		nh.totalGrad += grad[idx]
		nh.totalHess += hess[idx]
	}
	for f, column := range binned {
		hists := nh.histograms[f]
		for _, idx := range indices {
			h := &hists[column[idx]]
			h.Count++
			h.SumGrad += grad[idx]
			h.SumHess += hess[idx]
		}
	}
	return nh
}

// subtract returns parent minus sibling, the histogram of the other child.
func (nh *NodeHistogram) subtract(sibling *NodeHistogram) *NodeHistogram {
	child := &NodeHistogram{
		histograms: make([][]Histogram, len(nh.histograms)),
		totalGrad:  nh.totalGrad - sibling.totalGrad,
		totalHess:  nh.totalHess - sibling.totalHess,
		count:      nh.count - sibling.count,
	}
	for f, hists := range nh.histograms {
		child.histograms[f] = make([]Histogram, len(hists))
		for k := range hists {
			child.histograms[f][k] = Histogram{
				Count:   hists[k].Count - sibling.histograms[f][k].Count,
				SumGrad: hists[k].SumGrad - sibling.histograms[f][k].SumGrad,
				SumHess: hists[k].SumHess - sibling.histograms[f][k].SumHess,
			}
		}
	}
	return child
}
