package store

import (
	"context"
	"sync"

	wwErrors "github.com/ezoic/wattwise/pkg/errors"
	"github.com/ezoic/wattwise/pkg/log"
	"github.com/ezoic/wattwise/weather"
)

// MemoryStore is a concurrency-safe in-memory Store.
type MemoryStore struct {
	mu sync.RWMutex

	readings   []weather.Reading
	nextID     int64
	maxHistory int // <= 0 keeps everything

	logger log.Logger
}

// NewMemory creates a MemoryStore keeping at most maxHistory readings.
func NewMemory(maxHistory int) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		logger:     log.GetLoggerWithName("store").With(log.ComponentKey, "memory"),
	}
}

// Insert appends r with the next id.
func (s *MemoryStore) Insert(_ context.Context, r weather.Reading) bool {
	if reason := validate(r); reason != "" {
		s.logger.Warn("Reading rejected", log.CityKey, r.City, "reason", reason)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	r.ID = s.nextID
	s.readings = append(s.readings, r)

	if s.maxHistory > 0 && len(s.readings) > s.maxHistory {
		over := len(s.readings) - s.maxHistory
		s.readings = append([]weather.Reading(nil), s.readings[over:]...)
	}
	return true
}

// Latest returns up to n readings, newest first.
func (s *MemoryStore) Latest(_ context.Context, n int) ([]weather.Reading, error) {
	if n <= 0 {
		return nil, wwErrors.NewValueError("MemoryStore.Latest", "n must be positive")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > len(s.readings) {
		n = len(s.readings)
	}
	out := make([]weather.Reading, 0, n)
	for i := len(s.readings) - 1; i >= len(s.readings)-n; i-- {
		out = append(out, s.readings[i])
	}
	return out, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
