package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestCommands(t *testing.T) {
	if testing.Short() {
		t.Skip("trains a model")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("WATTWISE_ADVICE_API_KEY", "")
	t.Setenv("WATTWISE_STORE_PATH", filepath.Join(dir, "data", "weather.db"))
	model := filepath.Join(dir, "models", "model.gob")

	out := run(t, "train", "--days", "20", "--seed", "7", "--model", model, "--start", "2025-03-01", "--log-level", "error")
	assert.Contains(t, out, "480")
	assert.Contains(t, out, "384 / 96")
	assert.FileExists(t, model)

	out = run(t, "predict", "--temperature", "26", "--cloud-cover", "5", "--humidity", "40", "--hour", "12", "--day-of-year", "80")
	assert.Contains(t, out, "12:00, day 80")
	assert.Contains(t, out, "Excellent conditions")

	out = run(t, "ingest", "--once", "--cities", "Pune,Delhi")
	assert.Contains(t, out, "Pune")
	assert.Contains(t, out, "Delhi")

	out = run(t, "latest", "-n", "5")
	assert.Contains(t, out, "Delhi")
	assert.Contains(t, out, "Pune")
}
