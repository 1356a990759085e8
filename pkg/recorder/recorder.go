// Package recorder persists a write-only log of a flight: collisions, ship
// lifecycle transitions and periodic frame samples. Records are buffered in
// memory and written in batches by a background writer so the simulation
// thread never waits on the database. Nothing is read back.
package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sony/gobreaker"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/opd-ai/go-spaceflight/pkg/config"
	"github.com/opd-ai/go-spaceflight/pkg/event"
	"github.com/opd-ai/go-spaceflight/pkg/logging"
	"github.com/opd-ai/go-spaceflight/pkg/physics"
)

// Recorder buffers flight records and writes them to a gorm database
type Recorder struct {
	db       *gorm.DB
	ownsDB   bool
	cfg      config.RecorderConfig
	logger   *logging.Logger
	settings datatypes.JSON

	mu         sync.Mutex
	flight     *Flight
	collisions []CollisionRecord
	lifecycles []LifecycleRecord
	samples    []FrameSample
	lastSample float64
	gameTime   float64

	// writeMu serializes database writes between the flusher and callers
	writeMu sync.Mutex
	// breaker suspends flushing after repeated write failures
	breaker *gobreaker.CircuitBreaker

	subs      []*event.Subscription
	kick      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Open connects to the sqlite database named by cfg.DSN and starts the
// background writer. settings, if non-nil, is stored as JSON on each flight.
func Open(ctx context.Context, cfg config.RecorderConfig, settings any, logger *logging.Logger) (*Recorder, error) {
	db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        max(cfg.BatchSize, 1),
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open recorder database: %w", err)
	}

	r, err := New(ctx, db, cfg, settings, logger)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, err
	}
	r.ownsDB = true
	return r, nil
}

// New wraps an existing connection, migrates the schema and starts the
// background writer. The caller keeps ownership of db.
func New(ctx context.Context, db *gorm.DB, cfg config.RecorderConfig, settings any, logger *logging.Logger) (*Recorder, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if err := db.WithContext(ctx).AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("failed to migrate recorder schema: %w", err)
	}

	r := &Recorder{
		db:         db,
		cfg:        cfg,
		logger:     logger,
		lastSample: math.Inf(-1),
		kick:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	r.breaker = newBreaker(cfg, logger)
	if settings != nil {
		raw, err := json.Marshal(settings)
		if err != nil {
			return nil, fmt.Errorf("failed to encode flight settings: %w", err)
		}
		r.settings = datatypes.JSON(raw)
	}

	go r.run()
	return r, nil
}

// Attach subscribes the recorder to the simulation events it persists
func (r *Recorder) Attach(bus *event.Bus) {
	ctx := context.Background()

	r.subs = append(r.subs,
		bus.Subscribe(event.SimulationStarted, func(e event.Event) {
			se := e.(*event.SimulationEvent)
			if err := r.StartFlight(logging.WithFlightID(ctx, se.FlightID), se.FlightID, se.Seed); err != nil {
				r.logger.Error(ctx, "Failed to record flight start", err)
			}
		}),
		bus.Subscribe(event.SimulationStopped, func(e event.Event) {
			se := e.(*event.SimulationEvent)
			if err := r.EndFlight(logging.WithFlightID(ctx, se.FlightID), se.GameTime); err != nil {
				r.logger.Error(ctx, "Failed to record flight end", err)
			}
		}),
		bus.Subscribe(event.ShipCollision, func(e event.Event) {
			r.RecordCollision(e.(*event.CollisionEvent))
		}),
		bus.Subscribe(event.ShipLifecycle, func(e event.Event) {
			r.RecordLifecycle(e.(*event.LifecycleEvent))
		}),
	)
}

// StartFlight creates the flight row that subsequent records belong to.
// Records arriving with no active flight are discarded.
func (r *Recorder) StartFlight(ctx context.Context, flightID string, seed uint64) error {
	f := &Flight{
		FlightID:  flightID,
		Seed:      strconv.FormatUint(seed, 10),
		StartedAt: time.Now().UTC(),
		Settings:  r.settings,
	}

	r.writeMu.Lock()
	err := r.db.WithContext(ctx).Create(f).Error
	r.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to create flight %s: %w", flightID, err)
	}

	r.mu.Lock()
	r.flight = f
	r.lastSample = math.Inf(-1)
	r.gameTime = 0
	r.mu.Unlock()

	r.logger.Info(ctx, "Flight recording started", "row_id", f.ID)
	return nil
}

// EndFlight flushes pending records and stamps the flight's end time
func (r *Recorder) EndFlight(ctx context.Context, gameTime float64) error {
	if err := r.Flush(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	f := r.flight
	r.flight = nil
	r.mu.Unlock()
	if f == nil {
		return nil
	}

	ended := time.Now().UTC()
	r.writeMu.Lock()
	err := r.db.WithContext(ctx).Model(f).Updates(map[string]interface{}{
		"ended_at":  ended,
		"game_time": gameTime,
	}).Error
	r.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to close flight %s: %w", f.FlightID, err)
	}

	r.logger.Info(ctx, "Flight recording finished", "row_id", f.ID, "game_time", gameTime)
	return nil
}

// RecordCollision buffers a collision
func (r *Recorder) RecordCollision(e *event.CollisionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.flight == nil {
		return
	}
	r.gameTime = e.GameTime
	r.collisions = append(r.collisions, CollisionRecord{
		FlightRowID:   r.flight.ID,
		GameTime:      e.GameTime,
		AsteroidID:    e.AsteroidID,
		AsteroidIndex: e.AsteroidIndex,
		PositionX:     e.Position[0],
		PositionY:     e.Position[1],
		PositionZ:     e.Position[2],
		Size:          e.Size,
		Damage:        e.Damage,
		HealthAfter:   e.HealthAfter,
	})
	r.kickIfFull()
}

// RecordLifecycle buffers a ship state transition
func (r *Recorder) RecordLifecycle(e *event.LifecycleEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.flight == nil {
		return
	}
	r.gameTime = e.GameTime
	r.lifecycles = append(r.lifecycles, LifecycleRecord{
		FlightRowID: r.flight.ID,
		GameTime:    e.GameTime,
		FromState:   e.From.String(),
		ToState:     e.To.String(),
	})
	r.kickIfFull()
}

// SampleFrame buffers a frame sample if SampleInterval seconds of game time
// have passed since the previous one. It reports whether a sample was taken.
func (r *Recorder) SampleFrame(gameTime float64, ship *physics.ShipBody, particles int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.flight == nil {
		return false
	}
	r.gameTime = gameTime
	if gameTime-r.lastSample < r.cfg.SampleInterval {
		return false
	}
	r.lastSample = gameTime
	r.samples = append(r.samples, FrameSample{
		FlightRowID: r.flight.ID,
		GameTime:    gameTime,
		PositionX:   ship.Position[0],
		PositionY:   ship.Position[1],
		PositionZ:   ship.Position[2],
		Speed:       ship.Speed(),
		Health:      ship.Health,
		Particles:   particles,
	})
	r.kickIfFull()
	return true
}

// Pending returns the number of buffered records
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending()
}

func (r *Recorder) pending() int {
	return len(r.collisions) + len(r.lifecycles) + len(r.samples)
}

// kickIfFull wakes the writer once a batch is ready. Must hold mu.
func (r *Recorder) kickIfFull() {
	if r.cfg.BatchSize > 0 && r.pending() >= r.cfg.BatchSize {
		select {
		case r.kick <- struct{}{}:
		default:
		}
	}
}

// newBreaker trips after cfg.BreakerFailures consecutive failed flushes
// and lets one trial flush through after cfg.BreakerTimeout
func newBreaker(cfg config.RecorderConfig, logger *logging.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "flight-recorder",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return cfg.BreakerFailures > 0 && counts.ConsecutiveFailures >= uint32(cfg.BreakerFailures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "Recorder breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
}

// Flush writes every buffered record. Records that fail to write are put
// back in the buffer. While the breaker is open nothing is written and the
// returned error wraps gobreaker.ErrOpenState.
func (r *Recorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	collisions, lifecycles, samples := r.collisions, r.lifecycles, r.samples
	r.collisions, r.lifecycles, r.samples = nil, nil, nil
	r.mu.Unlock()

	if len(collisions)+len(lifecycles)+len(samples) == 0 {
		return nil
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	_, err := r.breaker.Execute(func() (interface{}, error) {
		return nil, r.write(ctx, collisions, lifecycles, samples)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		r.requeue(func() {
			r.collisions = append(collisions, r.collisions...)
			r.lifecycles = append(lifecycles, r.lifecycles...)
			r.samples = append(samples, r.samples...)
		})
		return fmt.Errorf("recorder writes suspended: %w", err)
	}
	return err
}

// write inserts the three buffers, requeueing any that fail
func (r *Recorder) write(ctx context.Context, collisions []CollisionRecord, lifecycles []LifecycleRecord, samples []FrameSample) error {
	db := r.db.WithContext(ctx)
	batch := max(r.cfg.BatchSize, 1)
	var errs []error
	if err := writeBuffer(db, collisions, batch); err != nil {
		errs = append(errs, fmt.Errorf("collisions: %w", err))
		r.requeue(func() { r.collisions = append(collisions, r.collisions...) })
	}
	if err := writeBuffer(db, lifecycles, batch); err != nil {
		errs = append(errs, fmt.Errorf("lifecycles: %w", err))
		r.requeue(func() { r.lifecycles = append(lifecycles, r.lifecycles...) })
	}
	if err := writeBuffer(db, samples, batch); err != nil {
		errs = append(errs, fmt.Errorf("frame samples: %w", err))
		r.requeue(func() { r.samples = append(samples, r.samples...) })
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to flush records: %w", errors.Join(errs...))
	}
	return nil
}

func (r *Recorder) requeue(fn func()) {
	r.mu.Lock()
	fn()
	r.mu.Unlock()
}

// writeBuffer inserts items in one transaction
func writeBuffer[T any](db *gorm.DB, items []T, batch int) error {
	if len(items) == 0 {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&items, batch).Error
	})
}

func (r *Recorder) run() {
	defer close(r.done)

	var tick <-chan time.Time
	if r.cfg.FlushInterval > 0 {
		ticker := time.NewTicker(r.cfg.FlushInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	ctx := context.Background()
	for {
		select {
		case <-r.stop:
			return
		case <-tick:
		case <-r.kick:
		}
		err := r.Flush(ctx)
		switch {
		case err == nil:
		case errors.Is(err, gobreaker.ErrOpenState):
			r.logger.Debug(ctx, "Background flush skipped", "pending", r.Pending())
		default:
			r.logger.Error(ctx, "Background flush failed", err)
		}
	}
}

// Close detaches from the bus, ends any open flight and stops the writer.
// A database opened by Open is closed as well.
func (r *Recorder) Close(ctx context.Context) error {
	var err error
	r.closeOnce.Do(func() {
		for _, s := range r.subs {
			s.Cancel()
		}
		r.subs = nil

		close(r.stop)
		<-r.done

		r.mu.Lock()
		active, gameTime := r.flight != nil, r.gameTime
		r.mu.Unlock()
		if active {
			err = r.EndFlight(ctx, gameTime)
		} else {
			err = r.Flush(ctx)
		}

		if r.ownsDB {
			if sqlDB, dbErr := r.db.DB(); dbErr == nil {
				if cerr := sqlDB.Close(); cerr != nil && err == nil {
					err = fmt.Errorf("failed to close recorder database: %w", cerr)
				}
			}
		}
	})
	return err
}
