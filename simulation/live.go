package simulation

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ezoic/wattwise/weather"
)

// LiveGenerator fabricates the "current" weather reading of a city for the
// ingestion job. Unlike Simulator it has no seasonal term and a stronger
// temperature/cloud coupling.
type LiveGenerator struct {
	City  string
	clock func() time.Time

	tempNoise  distuv.Uniform
	cloudBase  distuv.Uniform
	humidNoise distuv.Uniform
}

// LiveOption configures a LiveGenerator.
type LiveOption func(*LiveGenerator)

// WithLiveClock replaces time.Now.
func WithLiveClock(clock func() time.Time) LiveOption {
	return func(g *LiveGenerator) {
		g.clock = clock
	}
}

// NewLive creates a generator for city drawing from src. A nil src is seeded
// from the wall clock.
func NewLive(src rand.Source, city string, opts ...LiveOption) *LiveGenerator {
	if src == nil {
		// G404: Using math/rand for simulation noise (not cryptographic purposes)
		src = rand.NewPCG(uint64(time.Now().UnixNano()), 1)
	}
	g := &LiveGenerator{
		City:       city,
		clock:      time.Now,
		tempNoise:  distuv.Uniform{Min: -2, Max: 2, Src: src},
		cloudBase:  distuv.Uniform{Min: 10, Max: 70, Src: src},
		humidNoise: distuv.Uniform{Min: -10, Max: 10, Src: src},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next returns a reading stamped with the current clock time.
func (g *LiveGenerator) Next() weather.Reading {
	now := g.clock()
	h := now.Hour()

	temperature := 25 + 8*math.Sin(math.Pi*float64(h-6)/12) + g.tempNoise.Rand()
	cloud := weather.Clamp(g.cloudBase.Rand()-(temperature-25)*0.5, 0, 100)
	humidity := weather.Clamp(40+0.4*cloud+g.humidNoise.Rand(), 30, 95)

	return weather.Reading{
		Timestamp:   now,
		Temperature: weather.Round2(temperature),
		CloudCover:  weather.Round2(cloud),
		Humidity:    weather.Round2(humidity),
		City:        g.City,
	}
}
