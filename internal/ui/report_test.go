package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ezoic/wattwise/metrics"
	"github.com/ezoic/wattwise/simulation"
	"github.com/ezoic/wattwise/training"
	"github.com/ezoic/wattwise/weather"
)

func TestTrainingReport(t *testing.T) {
	res := &training.Result{
		RunID:     "run-1",
		Metrics:   metrics.Report{R2: 0.93, RMSE: 4.2, MAE: 3.1},
		Baseline:  &training.Baseline{Metrics: metrics.Report{R2: 0.61}},
		TrainSize: 7008,
		TestSize:  1752,
		Duration:  1500 * time.Millisecond,
		Importance: []training.Importance{
			{Feature: weather.HourOfDay, Split: 0.6},
			{Feature: weather.CloudCover, Split: 0.4},
		},
	}
	out := TrainingReport(res, "models/m.gob")

	for _, want := range []string{"run-1", "7008 / 1752", "0.9300", "0.6100", "hour_of_day", "60.0%", "models/m.gob"} {
		assert.Contains(t, out, want)
	}
}

func TestDatasetReport(t *testing.T) {
	s := simulation.Summary{
		Count:   24,
		Columns: []simulation.ColumnStats{{Name: weather.Temperature, Mean: 25, Std: 5}},
	}
	out := DatasetReport(s)
	assert.Contains(t, out, "24")
	assert.Contains(t, out, "temperature")
	assert.Contains(t, out, "25.00")
}

func TestPredictionReport(t *testing.T) {
	out := PredictionReport(weather.Sample{Temperature: 28, CloudCover: 10, Humidity: 50, HourOfDay: 12, DayOfYear: 172}, 82.5, "Run it.")
	assert.Contains(t, out, "82.5%")
	assert.Contains(t, out, "Excellent")
	assert.Contains(t, out, "RUN NOW")
	assert.Contains(t, out, "Run it.")
}

func TestReadingsTable(t *testing.T) {
	assert.Contains(t, ReadingsTable(nil), "no readings")

	out := ReadingsTable([]weather.Reading{{ID: 3, Timestamp: time.Now(), City: "Pune", Temperature: 27.5}})
	assert.Contains(t, out, "Pune")
	assert.Contains(t, out, "27.50")
}
