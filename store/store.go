// Package store is the append-only log of live weather readings.
//
// Writes never fail loudly: Insert reports success as a bool and logs the
// cause, so a transient storage error cannot stop the ingestion loop that
// calls it repeatedly. There is no update or delete.
package store

import (
	"context"

	"github.com/ezoic/wattwise/weather"
)

// DefaultCity is recorded when a reading does not name one.
const DefaultCity = "Mumbai"

// Store is an append-only record store of weather readings.
type Store interface {
	// Insert appends r and reports whether it was stored.
	Insert(ctx context.Context, r weather.Reading) bool
	// Latest returns up to n readings, newest first.
	Latest(ctx context.Context, n int) ([]weather.Reading, error)
	Close() error
}

func validate(r weather.Reading) string {
	switch {
	case r.Timestamp.IsZero():
		return "missing timestamp"
	case r.City == "":
		return "missing city"
	case r.CloudCover < 0 || r.CloudCover > 100:
		return "cloud cover out of range"
	case r.Humidity < 0 || r.Humidity > 100:
		return "humidity out of range"
	}
	return ""
}
