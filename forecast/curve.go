package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/ezoic/wattwise/weather"
)

// PeakSunHours turns panel capacity into the theoretical daily maximum.
const PeakSunHours = 8

// Output status of a day.
const (
	StatusHigh     = "HIGH"
	StatusModerate = "MODERATE"
	StatusLow      = "LOW"
)

// Conditions are the weather inputs held constant over a forecast day.
type Conditions struct {
	Temperature float64 `json:"temperature"`
	CloudCover  float64 `json:"cloud_cover"`
	Humidity    float64 `json:"humidity"`
}

// DefaultConditions are used when no reading has been recorded yet.
var DefaultConditions = Conditions{Temperature: 28, CloudCover: 30, Humidity: 65}

// FromReadings returns the conditions of the newest reading, or
// DefaultConditions when there is none. readings must be newest first.
func FromReadings(readings []weather.Reading) Conditions {
	if len(readings) == 0 {
		return DefaultConditions
	}
	r := readings[0]
	return Conditions{Temperature: r.Temperature, CloudCover: r.CloudCover, Humidity: r.Humidity}
}

// Sample returns the model input for hour and day of year.
func (c Conditions) Sample(hour, dayOfYear int) weather.Sample {
	return weather.Sample{
		Temperature: c.Temperature,
		CloudCover:  c.CloudCover,
		Humidity:    c.Humidity,
		HourOfDay:   hour,
		DayOfYear:   dayOfYear,
	}
}

// TomorrowDayOfYear is the day of year the dashboard forecasts for.
func TomorrowDayOfYear(now time.Time) int {
	return now.AddDate(0, 0, 1).YearDay()
}

// EnergyKWh converts an hourly efficiency into kWh for a panel of
// capacityKW. Negative predictions produce nothing.
func EnergyKWh(efficiency, capacityKW float64) float64 {
	return math.Max(0, efficiency/100*capacityKW)
}

// PredictHour predicts the kWh produced during one hour.
func PredictHour(p Predictor, c Conditions, hour, dayOfYear int, capacityKW float64) (float64, error) {
	eff, err := predictSamples(p, []weather.Sample{c.Sample(hour, dayOfYear)})
	if err != nil {
		return 0, err
	}
	return EnergyKWh(eff[0], capacityKW), nil
}

// HourPoint is one hour of a daily curve.
type HourPoint struct {
	Hour          int     `json:"hour"`
	Label         string  `json:"label"`
	EfficiencyPct float64 `json:"efficiency_pct"`
	EnergyKWh     float64 `json:"energy_kwh"`
}

// DailyCurve predicts all 24 hours of a day in a single batch.
func DailyCurve(p Predictor, c Conditions, dayOfYear int, capacityKW float64) ([]HourPoint, error) {
	samples := make([]weather.Sample, 24)
	for h := range samples {
		samples[h] = c.Sample(h, dayOfYear)
	}
	eff, err := predictSamples(p, samples)
	if err != nil {
		return nil, err
	}

	curve := make([]HourPoint, 24)
	for h := range curve {
		curve[h] = HourPoint{
			Hour:          h,
			Label:         fmt.Sprintf("%02d:00", h),
			EfficiencyPct: eff[h],
			EnergyKWh:     EnergyKWh(eff[h], capacityKW),
		}
	}
	return curve, nil
}

// DailySummary aggregates a daily curve.
type DailySummary struct {
	TotalKWh         float64   `json:"total_kwh"`
	MaxPossibleKWh   float64   `json:"max_possible_kwh"`
	EfficiencyPct    float64   `json:"efficiency_pct"`
	EstimatedSavings float64   `json:"estimated_savings"`
	Status           string    `json:"status"`
	Peak             HourPoint `json:"peak"`
}

// Summarize totals curve for a panel of capacityKW and a tariff of
// ratePerKWh. EfficiencyPct is the total as a share of
// capacityKW·PeakSunHours.
func Summarize(curve []HourPoint, capacityKW, ratePerKWh float64) DailySummary {
	var s DailySummary
	for i, p := range curve {
		s.TotalKWh += p.EnergyKWh
		if i == 0 || p.EnergyKWh > s.Peak.EnergyKWh {
			s.Peak = p
		}
	}
	s.MaxPossibleKWh = capacityKW * PeakSunHours
	if s.MaxPossibleKWh > 0 {
		s.EfficiencyPct = s.TotalKWh / s.MaxPossibleKWh * 100
	}
	s.EstimatedSavings = s.TotalKWh * ratePerKWh
	s.Status = DayStatus(s.EfficiencyPct)
	return s
}

// DayStatus grades the daily efficiency.
func DayStatus(efficiencyPct float64) string {
	switch {
	case efficiencyPct >= 70:
		return StatusHigh
	case efficiencyPct >= 40:
		return StatusModerate
	default:
		return StatusLow
	}
}
