// Package weather defines the records exchanged between the simulator, the
// training pipeline, the record store and the forecast layer.
package weather

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Column names, in model feature order.
const (
	Temperature           = "temperature"
	CloudCover            = "cloud_cover"
	Humidity              = "humidity"
	HourOfDay             = "hour_of_day"
	DayOfYear             = "day_of_year"
	SolarOutputEfficiency = "solar_output_efficiency"
)

// FeatureNames is the fixed order of the model's input columns.
var FeatureNames = []string{Temperature, CloudCover, Humidity, HourOfDay, DayOfYear}

// NumFeatures is len(FeatureNames).
const NumFeatures = 5

// Sample is one hour of weather conditions.
type Sample struct {
	Temperature float64 `json:"temperature"` // °C
	CloudCover  float64 `json:"cloud_cover"` // percent, [0,100]
	Humidity    float64 `json:"humidity"`    // percent, [0,100]
	HourOfDay   int     `json:"hour_of_day"` // [0,23]
	DayOfYear   int     `json:"day_of_year"` // [1,366]
}

// Vector returns the sample in FeatureNames order.
func (s Sample) Vector() []float64 {
	return []float64{s.Temperature, s.CloudCover, s.Humidity, float64(s.HourOfDay), float64(s.DayOfYear)}
}

// Record is a Sample labelled with its synthesized solar efficiency.
type Record struct {
	Sample
	SolarOutputEfficiency float64 `json:"solar_output_efficiency"` // percent, [0,100]
}

// Reading is one row of the weather record store.
type Reading struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	CloudCover  float64   `json:"cloud_cover"`
	Humidity    float64   `json:"humidity"`
	City        string    `json:"city"`
}

// Sample converts the reading into model input for its own timestamp.
func (r Reading) Sample() Sample {
	return Sample{
		Temperature: r.Temperature,
		CloudCover:  r.CloudCover,
		Humidity:    r.Humidity,
		HourOfDay:   r.Timestamp.Hour(),
		DayOfYear:   r.Timestamp.YearDay(),
	}
}

// Matrix stacks samples into an (n, NumFeatures) matrix. It returns nil for
// an empty slice.
func Matrix(samples []Sample) *mat.Dense {
	if len(samples) == 0 {
		return nil
	}
	X := mat.NewDense(len(samples), NumFeatures, nil)
	for i, s := range samples {
		X.SetRow(i, s.Vector())
	}
	return X
}

// Dataset splits records into a feature matrix and a target vector. It
// returns nils for an empty slice.
func Dataset(records []Record) (*mat.Dense, *mat.VecDense) {
	if len(records) == 0 {
		return nil, nil
	}
	X := mat.NewDense(len(records), NumFeatures, nil)
	y := mat.NewVecDense(len(records), nil)
	for i, r := range records {
		X.SetRow(i, r.Vector())
		y.SetVec(i, r.SolarOutputEfficiency)
	}
	return X, y
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
