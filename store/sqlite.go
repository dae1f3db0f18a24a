package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	// Registers the pure Go "sqlite" driver.
	_ "modernc.org/sqlite"

	wwErrors "github.com/ezoic/wattwise/pkg/errors"
	"github.com/ezoic/wattwise/pkg/log"
	"github.com/ezoic/wattwise/weather"
)

// DefaultPath is the default SQLite database file.
const DefaultPath = "data/weather.db"

const schema = `CREATE TABLE IF NOT EXISTS weather_data (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	temperature REAL NOT NULL,
	cloud_cover REAL NOT NULL,
	humidity REAL NOT NULL,
	city TEXT NOT NULL
)`

// SQLiteStore keeps readings in the weather_data table of a SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger log.Logger
}

// OpenSQLite opens or creates the database at path and its weather_data
// table. ":memory:" opens a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, wwErrors.Wrapf(err, "failed to create database directory for %s", path)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wwErrors.Wrapf(err, "failed to open database %s", path)
	}
	// One writer; also keeps ":memory:" on a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, wwErrors.Wrap(err, "failed to create weather_data table")
	}

	return &SQLiteStore{
		db:     db,
		path:   path,
		logger: log.GetLoggerWithName("store").With(log.ComponentKey, "sqlite", log.PathKey, path),
	}, nil
}

// Insert appends r. Validation and I/O failures are logged and reported as
// false.
func (s *SQLiteStore) Insert(ctx context.Context, r weather.Reading) bool {
	if reason := validate(r); reason != "" {
		s.logger.Warn("Reading rejected", log.CityKey, r.City, "reason", reason)
		return false
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO weather_data (timestamp, temperature, cloud_cover, humidity, city) VALUES (?, ?, ?, ?, ?)`,
		r.Timestamp.UTC().Format(time.RFC3339Nano), r.Temperature, r.CloudCover, r.Humidity, r.City,
	)
	if err != nil {
		s.logger.Error("Insert failed", log.CityKey, r.City, log.ErrorKey, err)
		return false
	}
	return true
}

// Latest returns up to n readings, newest first.
func (s *SQLiteStore) Latest(ctx context.Context, n int) (_ []weather.Reading, err error) {
	if n <= 0 {
		return nil, wwErrors.NewValueError("SQLiteStore.Latest", "n must be positive")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, temperature, cloud_cover, humidity, city FROM weather_data ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, wwErrors.Wrap(err, "failed to query weather_data")
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	out := make([]weather.Reading, 0, n)
	for rows.Next() {
		var (
			r  weather.Reading
			ts string
		)
		if err := rows.Scan(&r.ID, &ts, &r.Temperature, &r.CloudCover, &r.Humidity, &r.City); err != nil {
			return nil, wwErrors.Wrap(err, "failed to scan weather_data row")
		}
		if r.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, wwErrors.Wrapf(err, "invalid timestamp in row %d", r.ID)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wwErrors.Wrap(err, "failed to read weather_data")
	}
	return out, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
