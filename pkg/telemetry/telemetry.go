// Package telemetry exposes OpenTelemetry instruments for the flight
// simulation. Instruments are created from the global MeterProvider unless
// the caller supplies one, so exporters configured by the host process pick
// them up without further wiring.
package telemetry

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// DefaultMeterName is the instrumentation scope used when none is configured
const DefaultMeterName = "github.com/opd-ai/go-spaceflight"

// Metrics holds the simulation instruments
type Metrics struct {
	collisions    metric.Int64Counter
	respawns      metric.Int64Counter
	spawned       metric.Int64Counter
	dropped       metric.Int64Counter
	frameDelta    metric.Float64Histogram
	liveParticles metric.Int64ObservableGauge

	// live is written by the simulation thread and read by the collector
	live atomic.Int64
}

// New creates the instrument set on provider under meterName. A nil provider
// means the global one; an empty name means DefaultMeterName.
func New(provider metric.MeterProvider, meterName string) (*Metrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	if meterName == "" {
		meterName = DefaultMeterName
	}
	m := provider.Meter(meterName)
	t := &Metrics{}

	var err error
	t.collisions, err = m.Int64Counter(
		"spaceflight.collisions",
		metric.WithDescription("Ship-asteroid collisions"),
		metric.WithUnit("{collision}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create collisions counter: %w", err)
	}

	t.respawns, err = m.Int64Counter(
		"spaceflight.respawns",
		metric.WithDescription("Ship respawns after health depletion"),
		metric.WithUnit("{respawn}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create respawns counter: %w", err)
	}

	t.spawned, err = m.Int64Counter(
		"spaceflight.particles.spawned",
		metric.WithDescription("Particles added to the pool"),
		metric.WithUnit("{particle}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create spawned counter: %w", err)
	}

	t.dropped, err = m.Int64Counter(
		"spaceflight.particles.dropped",
		metric.WithDescription("Particles discarded because the pool was full"),
		metric.WithUnit("{particle}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create dropped counter: %w", err)
	}

	t.frameDelta, err = m.Float64Histogram(
		"spaceflight.frame.delta",
		metric.WithDescription("Simulation step duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create frame delta histogram: %w", err)
	}

	t.liveParticles, err = m.Int64ObservableGauge(
		"spaceflight.particles.live",
		metric.WithDescription("Particles currently alive"),
		metric.WithUnit("{particle}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(t.live.Load())
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create live particles gauge: %w", err)
	}

	return t, nil
}

// NewNop returns instruments that record nothing
func NewNop() *Metrics {
	t, err := New(noop.NewMeterProvider(), DefaultMeterName)
	if err != nil {
		// the noop provider never fails
		panic(err)
	}
	return t
}

// RecordCollision counts one collision against an asteroid of the given material
func (t *Metrics) RecordCollision(ctx context.Context, material string) {
	t.collisions.Add(ctx, 1, metric.WithAttributes(attribute.String("material", material)))
}

// RecordRespawn counts one respawn
func (t *Metrics) RecordRespawn(ctx context.Context) {
	t.respawns.Add(ctx, 1)
}

// RecordParticles adds per-frame spawn and drop deltas
func (t *Metrics) RecordParticles(ctx context.Context, spawned, dropped int64) {
	if spawned > 0 {
		t.spawned.Add(ctx, spawned)
	}
	if dropped > 0 {
		t.dropped.Add(ctx, dropped)
	}
}

// RecordFrame records the step duration and the live particle count
func (t *Metrics) RecordFrame(ctx context.Context, dt float64, live int) {
	t.frameDelta.Record(ctx, dt)
	t.live.Store(int64(live))
}

// LiveParticles returns the last reported live particle count
func (t *Metrics) LiveParticles() int64 {
	return t.live.Load()
}
