// Package simulation synthesizes hourly weather with realistic daily and
// seasonal structure and labels each hour with a solar output efficiency.
//
// The generated dataset is the ground truth the solar model learns: every
// feature and the efficiency target are deterministic functions of the day,
// the hour and a handful of uniform noise draws. All randomness comes from a
// caller-owned math/rand/v2 source, so a fixed seed reproduces a dataset
// exactly:
//
//	sim := simulation.New(rand.NewPCG(42, 42), simulation.WithStart(start))
//	records, err := sim.Generate(365)
package simulation

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	wwErrors "github.com/ezoic/wattwise/pkg/errors"
	"github.com/ezoic/wattwise/pkg/log"
	"github.com/ezoic/wattwise/weather"
)

// HoursPerDay is the number of records generated per simulated day.
const HoursPerDay = 24

// DefaultDays is the default historical window, one year.
const DefaultDays = 365

// Simulator generates labelled weather records. A Simulator consumes its
// random source and is not safe for concurrent use.
type Simulator struct {
	start time.Time
	clock func() time.Time

	tempNoise  distuv.Uniform
	cloudBase  distuv.Uniform
	humidNoise distuv.Uniform
	effNoise   distuv.Uniform

	logger log.Logger
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithStart fixes the first simulated day. By default the window ends at the
// current clock time.
func WithStart(start time.Time) Option {
	return func(s *Simulator) {
		s.start = start
	}
}

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(s *Simulator) {
		s.clock = clock
	}
}

// New creates a Simulator drawing from src. A nil src is seeded from the
// wall clock, which makes every run different.
func New(src rand.Source, opts ...Option) *Simulator {
	if src == nil {
		// G404: Using math/rand for simulation noise (not cryptographic purposes)
		src = rand.NewPCG(uint64(time.Now().UnixNano()), 0)
	}
	s := &Simulator{
		clock:  time.Now,
		logger: log.GetLoggerWithName("simulation"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tempNoise = distuv.Uniform{Min: -2, Max: 2, Src: src}
	s.cloudBase = distuv.Uniform{Min: 10, Max: 70, Src: src}
	s.humidNoise = distuv.Uniform{Min: -10, Max: 10, Src: src}
	s.effNoise = distuv.Uniform{Min: -2, Max: 2, Src: src}
	return s
}

// Generate returns days×24 records, day by day and hour by hour.
//
// Four uniform draws are consumed per hour, in order: temperature noise,
// cloud base, humidity noise and efficiency noise. Night hours still consume
// the efficiency draw so that a given seed yields the same weather regardless
// of the daylight window.
//
// Errors:
//   - ValueError: if days is negative
func (s *Simulator) Generate(days int) ([]weather.Record, error) {
	if days < 0 {
		return nil, wwErrors.NewValueError("Simulator.Generate", "days must be non-negative")
	}
	records := make([]weather.Record, 0, days*HoursPerDay)
	if days == 0 {
		return records, nil
	}

	startTime := time.Now()
	start := s.start
	if start.IsZero() {
		start = s.clock().AddDate(0, 0, -days)
	}

	for d := 0; d < days; d++ {
		doy := start.AddDate(0, 0, d).YearDay()
		for h := 0; h < HoursPerDay; h++ {
			records = append(records, s.hour(doy, h))
		}
	}

	s.logger.Info("Dataset generated",
		log.OperationKey, log.OperationGenerate,
		log.SamplesKey, len(records),
		"days", days,
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
	)
	return records, nil
}

func (s *Simulator) hour(doy, h int) weather.Record {
	temperature := 25 +
		5*math.Sin(2*math.Pi*float64(doy-80)/365) +
		8*math.Sin(math.Pi*float64(h-6)/12) +
		s.tempNoise.Rand()

	cloud := weather.Clamp(s.cloudBase.Rand()-(temperature-25)*0.3, 0, 100)
	humidity := weather.Clamp(40+0.4*cloud+s.humidNoise.Rand(), 30, 95)

	sample := weather.Sample{
		Temperature: temperature,
		CloudCover:  cloud,
		Humidity:    humidity,
		HourOfDay:   h,
		DayOfYear:   doy,
	}
	efficiency := Efficiency(sample, s.effNoise.Rand())

	return weather.Record{
		Sample: weather.Sample{
			Temperature: weather.Round2(temperature),
			CloudCover:  weather.Round2(cloud),
			Humidity:    weather.Round2(humidity),
			HourOfDay:   h,
			DayOfYear:   doy,
		},
		SolarOutputEfficiency: weather.Round2(efficiency),
	}
}

// IsDaylight reports whether hour h produces solar output.
func IsDaylight(h int) bool {
	return h >= 6 && h <= 18
}

// Efficiency computes the solar output efficiency of one hour in percent,
// before rounding. noise is added after the multiplicative factors and the
// result is clamped to [0,100]. Night hours are exactly 0. The temperature
// factor is floored at 0, so temperatures beyond about 85°C or below -20°C
// yield 0 rather than a negative product that would invert the cloud cover
// response.
func Efficiency(s weather.Sample, noise float64) float64 {
	if !IsDaylight(s.HourOfDay) {
		return 0
	}
	eff := 100.0
	eff *= math.Sin(math.Pi * float64(s.HourOfDay-6) / 12)
	eff *= 1 - 0.8*s.CloudCover/100
	eff *= TemperatureFactor(s.Temperature)
	eff *= 1 - 0.15*(s.Humidity-30)/100
	eff *= SeasonalFactor(s.DayOfYear)
	eff += noise
	return weather.Clamp(eff, 0, 100)
}

// TemperatureFactor is the panel response to ambient temperature: a bell
// around 25°C with linear cold and heat penalties. It is floored at 0.
func TemperatureFactor(t float64) float64 {
	var f float64
	switch {
	case t < 15:
		f = 0.7 + 0.02*(t-15)
	case t > 35:
		f = 1.0 - 0.02*(t-35)
	default:
		f = 0.9 + 0.004*(25-math.Abs(t-25))
	}
	return math.Max(0, f)
}

// SeasonalFactor scales output by day of year, peaking in late June.
func SeasonalFactor(doy int) float64 {
	return 0.95 + 0.1*math.Sin(2*math.Pi*float64(doy-80)/365)
}
