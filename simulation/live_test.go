package simulation

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLiveGeneratorNext(t *testing.T) {
	now := time.Date(2025, time.June, 1, 14, 30, 0, 0, time.UTC)
	gen := NewLive(rand.NewPCG(9, 9), "Mumbai", WithLiveClock(func() time.Time { return now }))

	for i := 0; i < 200; i++ {
		r := gen.Next()
		assert.Equal(t, "Mumbai", r.City)
		assert.Equal(t, now, r.Timestamp)
		assert.Zero(t, r.ID)
		// 25 + 8*sin(2π/3) ± 2
		assert.InDelta(t, 31.93, r.Temperature, 2.01)
		assert.GreaterOrEqual(t, r.CloudCover, 0.0)
		assert.LessOrEqual(t, r.CloudCover, 100.0)
		assert.GreaterOrEqual(t, r.Humidity, 30.0)
		assert.LessOrEqual(t, r.Humidity, 95.0)
	}
}

func TestLiveGeneratorDeterministic(t *testing.T) {
	clock := func() time.Time { return time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC) }
	a := NewLive(rand.NewPCG(1, 2), "Delhi", WithLiveClock(clock))
	b := NewLive(rand.NewPCG(1, 2), "Delhi", WithLiveClock(clock))

	for i := 0; i < 5; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}
