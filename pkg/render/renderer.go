// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-spaceflight/pkg/engine"
	"github.com/opd-ai/go-spaceflight/pkg/logging"
)

// Renderer presents simulation snapshots. Renderers only read state.
type Renderer interface {
	Render(snap *engine.Snapshot) error
	Close() error
}

// NullRenderer is a Renderer that logs frames instead of drawing them.
type NullRenderer struct {
	logger *logging.Logger
	frames uint64
}

// NewNullRenderer creates a new NullRenderer with structured logging.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &NullRenderer{
		logger: logger,
	}
}

// Render implements Renderer.
func (d *NullRenderer) Render(snap *engine.Snapshot) error {
	ctx := context.Background()
	if snap == nil {
		d.logger.Debug(ctx, "Render called with nil snapshot")
		return nil
	}
	d.frames++
	d.logger.Debug(ctx, "Frame rendered",
		"frame", snap.Frame,
		"game_time", snap.GameTime,
		"ship_state", snap.Ship.State.String(),
		"health", snap.Ship.Health,
		"particles", len(snap.Particles),
		"asteroids", len(snap.Asteroids),
	)
	return nil
}

// Frames returns the number of snapshots rendered
func (d *NullRenderer) Frames() uint64 {
	return d.frames
}

// Close implements Renderer.
func (d *NullRenderer) Close() error {
	d.logger.Debug(context.Background(), "NullRenderer closed", "frames", d.frames)
	return nil
}

var _ Renderer = (*NullRenderer)(nil)
