package benchmarks

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"testing"
	"time"

	"github.com/ezoic/wattwise/forecast"
	"github.com/ezoic/wattwise/simulation"
	"github.com/ezoic/wattwise/store"
	"github.com/ezoic/wattwise/training"
	"github.com/ezoic/wattwise/weather"
)

var start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func records(b *testing.B, days int) []weather.Record {
	b.Helper()
	recs, err := simulation.New(rand.NewPCG(42, 42), simulation.WithStart(start)).Generate(days)
	if err != nil {
		b.Fatal(err)
	}
	return recs
}

// BenchmarkGenerate measures the simulator over growing windows.
func BenchmarkGenerate(b *testing.B) {
	for _, days := range []int{1, 30, 365, 3650} {
		b.Run(fmt.Sprintf("%dd", days), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				sim := simulation.New(rand.NewPCG(uint64(i), 0), simulation.WithStart(start))
				if _, err := sim.Generate(days); err != nil {
					b.Fatal(err)
				}
			}
			b.ReportMetric(float64(days*simulation.HoursPerDay*b.N)/b.Elapsed().Seconds(), "records/s")
		})
	}
}

// BenchmarkTrain fits the full pipeline, without the linear baseline.
func BenchmarkTrain(b *testing.B) {
	if testing.Short() {
		b.Skip("trains a model")
	}
	for _, days := range []int{30, 365} {
		recs := records(b, days)
		b.Run(fmt.Sprintf("%dd", days), func(b *testing.B) {
			var m1, m2 runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&m1)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := training.NewPipeline(training.WithoutBaseline()).Train(recs); err != nil {
					b.Fatal(err)
				}
			}

			b.StopTimer()
			runtime.ReadMemStats(&m2)
			b.ReportMetric(float64(m2.TotalAlloc-m1.TotalAlloc)/float64(b.N)/1024/1024, "MB/op")
		})
	}
}

// BenchmarkDailyCurve measures the dashboard hot path against a trained model.
func BenchmarkDailyCurve(b *testing.B) {
	params := training.DefaultParams()
	params.NumTrees = 50
	res, err := training.NewPipeline(training.WithParams(params), training.WithoutBaseline()).Train(records(b, 30))
	if err != nil {
		b.Fatal(err)
	}
	h := forecast.NewHandle(res.Model, "bench")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := forecast.DailyCurve(h, forecast.DefaultConditions, 172, 5); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkStoreInsert compares the record store backends.
func BenchmarkStoreInsert(b *testing.B) {
	ctx := context.Background()
	sqlite, err := store.OpenSQLite(ctx, ":memory:")
	if err != nil {
		b.Fatal(err)
	}
	defer func() { _ = sqlite.Close() }()

	backends := []struct {
		name string
		st   store.Store
	}{
		{"Memory", store.NewMemory(1000)},
		{"SQLite", sqlite},
	}
	for _, be := range backends {
		b.Run(be.name, func(b *testing.B) {
			gen := simulation.NewLive(rand.NewPCG(1, 1), store.DefaultCity)
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if !be.st.Insert(ctx, gen.Next()) {
					b.Fatal("insert failed")
				}
			}
		})
	}
}
