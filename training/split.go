package training

import (
	"math"
	"math/rand/v2"

	wwErrors "github.com/ezoic/wattwise/pkg/errors"
	"github.com/ezoic/wattwise/weather"
)

// Split shuffles records with a PCG seeded by seed and cuts off the last
// ceil(testFraction·n) of them as the test partition. records is not modified.
//
// Errors:
//   - ValueError: if testFraction is outside (0, 1)
//   - ErrInsufficientData: if either partition would be empty
func Split(records []weather.Record, testFraction float64, seed uint64) (train, test []weather.Record, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, wwErrors.NewValueError("training.Split", "test fraction must be in (0, 1)")
	}
	n := len(records)
	nTest := int(math.Ceil(testFraction * float64(n)))
	if nTest < 1 || n-nTest < 1 {
		return nil, nil, wwErrors.NewModelError("training.Split", "train/test split", wwErrors.ErrInsufficientData)
	}

	shuffled := append([]weather.Record(nil), records...)
	// G404: Using math/rand for ML sampling (not cryptographic purposes)
	rng := rand.New(rand.NewPCG(seed, seed))
	rng.Shuffle(n, func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled[:n-nTest], shuffled[n-nTest:], nil
}
