package lightgbm

import (
	"math"
	"math/rand/v2"
	"sort"
)

// SamplingStrategy draws the rows (bagging) and columns (feature fraction)
// used to grow each tree. Every draw is derived from Seed and the iteration
// index, so a fit is reproducible regardless of call order.
type SamplingStrategy struct {
	Seed            int
	BaggingFraction float64
	BaggingFreq     int
	FeatureFraction float64

	bagged []int
}

// NewSamplingStrategy creates the sampler for params.
func NewSamplingStrategy(params TrainingParams) *SamplingStrategy {
	return &SamplingStrategy{
		Seed:            params.Seed,
		BaggingFraction: params.BaggingFraction,
		BaggingFreq:     params.BaggingFreq,
		FeatureFraction: params.FeatureFraction,
	}
}

func (s *SamplingStrategy) rng(stream, iteration int) *rand.Rand {
	// G404: Using math/rand for ML sampling (not cryptographic purposes)
	return rand.New(rand.NewPCG(uint64(s.Seed)+uint64(stream), uint64(s.Seed+iteration)))
}

// SampleInstances returns the sorted row indices used at iteration. A new bag
// is drawn every BaggingFreq iterations; in between the previous bag is reused.
func (s *SamplingStrategy) SampleInstances(rows, iteration int) []int {
	if s.BaggingFraction >= 1.0 || s.BaggingFraction <= 0 || s.BaggingFreq <= 0 {
		return sequence(rows)
	}
	if s.bagged != nil && iteration%s.BaggingFreq != 0 {
		return s.bagged
	}

	k := int(math.Round(s.BaggingFraction * float64(rows)))
	k = max(1, min(k, rows))
	perm := s.rng(0, iteration).Perm(rows)[:k]
	sort.Ints(perm)
	s.bagged = perm
	return perm
}

// SampleFeatures returns the sorted feature indices a tree may split on.
func (s *SamplingStrategy) SampleFeatures(cols, iteration int) []int {
	if s.FeatureFraction >= 1.0 || s.FeatureFraction <= 0 {
		return sequence(cols)
	}
	k := int(math.Round(s.FeatureFraction * float64(cols)))
	k = max(1, min(k, cols))
	perm := s.rng(1, iteration).Perm(cols)[:k]
	sort.Ints(perm)
	return perm
}

func sequence(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
