package model_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/wattwise/core/model"
	"github.com/ezoic/wattwise/linear"
)

func fittedLinear(t *testing.T) *linear.LinearRegression {
	t.Helper()
	reg := linear.NewLinearRegression()
	X := mat.NewDense(4, 1, []float64{1.0, 2.0, 3.0, 4.0})
	y := mat.NewVecDense(4, []float64{2.0, 4.0, 6.0, 8.0})
	require.NoError(t, reg.Fit(X, y))
	return reg
}

func TestSaveLoadModel(t *testing.T) {
	reg := fittedLinear(t)
	testX := mat.NewDense(1, 1, []float64{5.0})
	originalPred, err := reg.Predict(testX)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "linear.gob")
	require.NoError(t, model.SaveModel(reg, path))

	loaded := linear.NewLinearRegression()
	require.NoError(t, model.LoadModel(loaded, path))
	assert.True(t, loaded.IsFitted())

	loadedPred, err := loaded.Predict(testX)
	require.NoError(t, err)
	assert.InDelta(t, originalPred.At(0, 0), loadedPred.At(0, 0), 1e-10)
	assert.InDelta(t, 10.0, loadedPred.At(0, 0), 1e-9)
}

func TestSaveModelReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.gob")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o600))

	require.NoError(t, model.SaveModel(fittedLinear(t), path))

	loaded := linear.NewLinearRegression()
	require.NoError(t, model.LoadModel(loaded, path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestSaveLoadWriterReader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, model.SaveModelToWriter(fittedLinear(t), &buf))

	loaded := linear.NewLinearRegression()
	require.NoError(t, model.LoadModelFromReader(loaded, &buf))
	assert.InDeltaSlice(t, []float64{2.0}, loaded.GetWeights(), 1e-9)
}

func TestLoadModelErrors(t *testing.T) {
	err := model.LoadModel(linear.NewLinearRegression(), filepath.Join(t.TempDir(), "missing.gob"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open file")

	err = model.LoadModelFromReader(linear.NewLinearRegression(), bytes.NewBufferString("not gob"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode model")
}

func TestSaveModelInvalidPath(t *testing.T) {
	err := model.SaveModel(fittedLinear(t), "/nonexistent/dir/model.gob")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create file")
}
