package simulation

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/wattwise/weather"
)

// ColumnStats describes one column of a generated dataset.
type ColumnStats struct {
	Name string  `json:"name"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	// Correlation is the Pearson correlation with the efficiency target.
	Correlation float64 `json:"correlation"`
}

// Summary describes a generated dataset column by column, features first and
// the target last.
type Summary struct {
	Count   int           `json:"count"`
	Columns []ColumnStats `json:"columns"`
}

// Column returns the stats of the named column.
func (s Summary) Column(name string) (ColumnStats, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnStats{}, false
}

// Summarize computes per-column statistics and feature/target correlations.
// Std is the sample standard deviation; it and the correlations are 0 when
// undefined (fewer than two records or a constant column).
func Summarize(records []weather.Record) Summary {
	summary := Summary{Count: len(records)}
	if len(records) == 0 {
		return summary
	}

	names := append(append([]string(nil), weather.FeatureNames...), weather.SolarOutputEfficiency)
	columns := make([][]float64, len(names))
	for j := range columns {
		columns[j] = make([]float64, len(records))
	}
	for i, r := range records {
		for j, v := range r.Vector() {
			columns[j][i] = v
		}
		columns[len(names)-1][i] = r.SolarOutputEfficiency
	}

	target := columns[len(names)-1]
	for j, name := range names {
		mean, std := stat.MeanStdDev(columns[j], nil)
		summary.Columns = append(summary.Columns, ColumnStats{
			Name:        name,
			Mean:        mean,
			Std:         finiteOrZero(std),
			Min:         floats.Min(columns[j]),
			Max:         floats.Max(columns[j]),
			Correlation: finiteOrZero(stat.Correlation(columns[j], target, nil)),
		})
	}
	return summary
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
