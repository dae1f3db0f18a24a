// Package ingest records synthetic "live" weather readings into the record
// store, once or on a schedule.
package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron"

	wwErrors "github.com/ezoic/wattwise/pkg/errors"
	"github.com/ezoic/wattwise/pkg/log"
	"github.com/ezoic/wattwise/store"
	"github.com/ezoic/wattwise/weather"
)

// DefaultInterval is how often the scheduler records a reading per city.
const DefaultInterval = 15 * time.Minute

// ErrInsertFailed is returned when the store reports a failed insert.
var ErrInsertFailed = errors.New("insert failed")

// Generator produces the current reading of one city.
type Generator interface {
	Next() weather.Reading
}

// RunOnce generates one reading and stores it.
func RunOnce(ctx context.Context, gen Generator, st store.Store) (weather.Reading, error) {
	r := gen.Next()
	if r.City == "" {
		r.City = store.DefaultCity
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	if !st.Insert(ctx, r) {
		return r, wwErrors.Wrapf(ErrInsertFailed, "store reading for %s", r.City)
	}
	return r, nil
}

// Scheduler runs RunOnce for every generator at a fixed interval.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	store      store.Store
	generators []Generator
	interval   time.Duration
	timeout    time.Duration
	logger     log.Logger
}

// NewScheduler creates a stopped scheduler. A non-positive interval uses
// DefaultInterval.
func NewScheduler(st store.Store, interval time.Duration, gens ...Generator) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	sched := gocron.NewScheduler(time.UTC)
	sched.SingletonModeAll()
	return &Scheduler{
		scheduler:  sched,
		store:      st,
		generators: gens,
		interval:   interval,
		timeout:    30 * time.Second,
		logger:     log.GetLoggerWithName("ingest"),
	}
}

// Start schedules the job, runs it once immediately and returns.
func (s *Scheduler) Start() error {
	if len(s.generators) == 0 {
		s.logger.Warn("No cities configured, nothing to schedule")
		return nil
	}
	if _, err := s.scheduler.Every(s.interval).Do(s.tick); err != nil {
		return wwErrors.Wrap(err, "schedule ingestion job")
	}
	s.scheduler.StartAsync()
	s.logger.Info("Ingestion scheduled", "interval", s.interval.String(), "cities", len(s.generators))
	return nil
}

// Stop stops the scheduler; a running tick completes.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// tick records one reading per generator. Generators share a random source,
// so they run sequentially.
func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	stored := 0
	for _, gen := range s.generators {
		r, err := RunOnce(ctx, gen, s.store)
		if err != nil {
			s.logger.Error("Ingestion failed", log.CityKey, r.City, log.ErrorKey, err)
			continue
		}
		stored++
		s.logger.Debug("Reading stored",
			log.OperationKey, log.OperationIngest,
			log.CityKey, r.City,
			"temperature", r.Temperature,
			"cloud_cover", r.CloudCover,
			"humidity", r.Humidity,
		)
	}
	s.logger.Info("Ingestion tick completed", log.OperationKey, log.OperationIngest, "stored", stored, "cities", len(s.generators))
}
