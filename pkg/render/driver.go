package render

import (
	"context"
	"fmt"
	"time"

	"github.com/opd-ai/go-spaceflight/pkg/engine"
	"github.com/opd-ai/go-spaceflight/pkg/physics"
)

// IntentFunc supplies the player's intents for the next frame
type IntentFunc func() (thrust, rotation physics.Vector3)

// NoIntent is an IntentFunc for unattended runs
func NoIntent() (thrust, rotation physics.Vector3) {
	return physics.Vector3{}, physics.Vector3{}
}

// Driver advances a Director once per frame and presents each result:
// input, simulation step, snapshot, render.
type Driver struct {
	director *engine.Director
	renderer Renderer
	intent   IntentFunc
	onFrame  func(*engine.Snapshot)
	frames   uint64
}

// NewDriver creates a driver. A nil renderer discards frames and a nil
// intent flies hands-off.
func NewDriver(director *engine.Director, renderer Renderer, intent IntentFunc) *Driver {
	if renderer == nil {
		renderer = NewNullRenderer(nil)
	}
	if intent == nil {
		intent = NoIntent
	}
	return &Driver{director: director, renderer: renderer, intent: intent}
}

// OnFrame registers a callback that sees every snapshot before it is rendered
func (d *Driver) OnFrame(fn func(*engine.Snapshot)) {
	d.onFrame = fn
}

// Frames returns the number of completed steps
func (d *Driver) Frames() uint64 {
	return d.frames
}

// Step runs one frame with the given delta time in seconds
func (d *Driver) Step(dt float64) error {
	thrust, rotation := d.intent()
	d.director.HandleInput(thrust, rotation, dt)
	d.director.Update(dt)

	snap := d.director.Snapshot()
	if d.onFrame != nil {
		d.onFrame(snap)
	}
	d.frames++
	if err := d.renderer.Render(snap); err != nil {
		return fmt.Errorf("failed to render frame %d: %w", snap.Frame, err)
	}
	return nil
}

// RunFrames steps n frames back to back with a fixed delta time
func (d *Driver) RunFrames(n uint64, dt float64) error {
	for i := uint64(0); i < n; i++ {
		if err := d.Step(dt); err != nil {
			return err
		}
	}
	return nil
}

// Run steps once per interval with wall-clock delta times until ctx is
// done, the director stops, or maxFrames frames have run (0 = no limit).
func (d *Driver) Run(ctx context.Context, interval time.Duration, maxDelta float64, maxFrames uint64) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	clock := engine.NewClock(maxDelta)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if !d.director.Running() {
			return nil
		}
		if err := d.Step(clock.Tick()); err != nil {
			return err
		}
		if maxFrames > 0 && d.frames >= maxFrames {
			return nil
		}
	}
}
