package training

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wwErrors "github.com/ezoic/wattwise/pkg/errors"
	"github.com/ezoic/wattwise/simulation"
	"github.com/ezoic/wattwise/weather"
)

func generate(t *testing.T, days int) []weather.Record {
	t.Helper()
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	records, err := simulation.New(rand.NewPCG(42, 42), simulation.WithStart(start)).Generate(days)
	require.NoError(t, err)
	return records
}

func TestSplit(t *testing.T) {
	records := generate(t, 1)

	train, test, err := Split(records, 0.2, 42)
	require.NoError(t, err)
	assert.Len(t, test, 5)
	assert.Len(t, train, 19)

	again, _, err := Split(records, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, train, again)

	hours := make(map[int]int)
	for _, r := range append(train, test...) {
		hours[r.HourOfDay]++
	}
	assert.Len(t, hours, 24)

	// input untouched
	for h, r := range records {
		assert.Equal(t, h, r.HourOfDay)
	}
}

func TestSplitErrors(t *testing.T) {
	_, _, err := Split(nil, 0.2, 1)
	assert.True(t, errors.Is(err, wwErrors.ErrInsufficientData))

	_, _, err = Split(generate(t, 1)[:1], 0.2, 1)
	assert.True(t, errors.Is(err, wwErrors.ErrInsufficientData))

	_, _, err = Split(generate(t, 1), 1.5, 1)
	assert.True(t, errors.Is(err, wwErrors.ErrInvalidInput))
}

func TestTrainYear(t *testing.T) {
	if testing.Short() {
		t.Skip("trains on a full simulated year")
	}
	records := generate(t, 365)

	result, err := NewPipeline().Train(records)
	require.NoError(t, err)

	assert.Equal(t, 7008, result.TrainSize)
	assert.Equal(t, 1752, result.TestSize)
	assert.Greater(t, result.Metrics.R2, 0.8)
	assert.NotEmpty(t, result.RunID)
	assert.True(t, result.Model.IsFitted())

	require.NotNil(t, result.Baseline)
	assert.Less(t, result.Baseline.Metrics.R2, result.Metrics.R2)
	assert.Len(t, result.Baseline.Coefficients, weather.NumFeatures)

	require.Len(t, result.Importance, weather.NumFeatures)
	var total float64
	for i, imp := range result.Importance {
		total += imp.Split
		if i > 0 {
			assert.LessOrEqual(t, imp.Split, result.Importance[i-1].Split)
		}
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestTrainSmallDatasetStillReturnsModel(t *testing.T) {
	result, err := NewPipeline(WithoutBaseline()).Train(generate(t, 1))
	require.NoError(t, err)
	assert.True(t, result.Model.IsFitted())
	assert.Nil(t, result.Baseline)
	assert.Equal(t, 19, result.TrainSize)
}

func TestTrainRejectsEmptyInput(t *testing.T) {
	_, err := NewPipeline().Train(nil)
	assert.True(t, errors.Is(err, wwErrors.ErrInsufficientData))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	records := generate(t, 20)
	params := DefaultParams()
	params.NumTrees = 30
	result, err := NewPipeline(WithParams(params), WithoutBaseline()).Train(records)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "models", "nested", "model.gob")
	require.NoError(t, SaveModel(result.Model, path))

	loaded, err := LoadModel(path)
	require.NoError(t, err)

	X, _ := weather.Dataset(records[:100])
	before, err := result.Model.Predict(X)
	require.NoError(t, err)
	after, err := loaded.Predict(X)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		assert.InDelta(t, before.At(i, 0), after.At(i, 0), 1e-6)
	}

	// overwrite in place
	require.NoError(t, SaveModel(result.Model, path))
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveModelRejectsUnfitted(t *testing.T) {
	err := SaveModel(nil, filepath.Join(t.TempDir(), "m.gob"))
	assert.True(t, errors.Is(err, wwErrors.ErrNotFitted))
}

func TestLoadModelMissingFile(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "missing.gob"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open file")
}
