package model_test

import (
	"fmt"

	"github.com/ezoic/wattwise/core/model"
)

// ExampleStateManager demonstrates fitted-state tracking
func ExampleStateManager() {
	state := model.NewStateManager()

	fmt.Printf("Initially fitted: %t\n", state.IsFitted())

	state.SetFitted()
	state.SetDimensions(5, 7008)
	nFeatures, nSamples := state.GetDimensions()
	fmt.Printf("After SetFitted: %t (%d features, %d samples)\n", state.IsFitted(), nFeatures, nSamples)

	state.Reset()
	fmt.Printf("After Reset: %t\n", state.IsFitted())

	// Output: Initially fitted: false
	// After SetFitted: true (5 features, 7008 samples)
	// After Reset: false
}
