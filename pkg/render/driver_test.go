package render

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opd-ai/go-spaceflight/pkg/config"
	"github.com/opd-ai/go-spaceflight/pkg/engine"
	"github.com/opd-ai/go-spaceflight/pkg/physics"
)

func newTestDirector(t *testing.T) *engine.Director {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Seed = 9
	cfg.Simulation.AsteroidCount = 0
	cfg.Simulation.StarCount = 5
	cfg.Planets = nil
	cfg.Nebulas = nil
	d, err := engine.New(cfg, nil)
	if err != nil {
		t.Fatalf("engine.New returned error: %v", err)
	}
	return d
}

type failingRenderer struct{ err error }

func (f failingRenderer) Render(*engine.Snapshot) error { return f.err }
func (f failingRenderer) Close() error                  { return nil }

func TestDriver_Step(t *testing.T) {
	director := newTestDirector(t)
	null := NewNullRenderer(nil)
	forward := func() (physics.Vector3, physics.Vector3) {
		return physics.Vector3{0, 0, -1}, physics.Vector3{}
	}
	driver := NewDriver(director, null, forward)

	var seen []uint64
	driver.OnFrame(func(snap *engine.Snapshot) { seen = append(seen, snap.Frame) })

	if err := driver.RunFrames(10, 0.1); err != nil {
		t.Fatalf("RunFrames returned error: %v", err)
	}

	if driver.Frames() != 10 || null.Frames() != 10 || director.Frames() != 10 {
		t.Errorf("Expected 10 frames everywhere, got driver=%d renderer=%d director=%d",
			driver.Frames(), null.Frames(), director.Frames())
	}
	if len(seen) != 10 || seen[0] != 1 || seen[9] != 10 {
		t.Errorf("Unexpected frame callbacks %v", seen)
	}
	if z := director.Ship().Position[2]; z >= 0 {
		t.Errorf("Expected forward thrust to move the ship toward -Z, got z=%v", z)
	}
}

func TestDriver_Defaults(t *testing.T) {
	driver := NewDriver(newTestDirector(t), nil, nil)
	if err := driver.Step(0.016); err != nil {
		t.Fatalf("Step returned error: %v", err)
	}
	if thrust, rotation := NoIntent(); thrust != (physics.Vector3{}) || rotation != (physics.Vector3{}) {
		t.Error("NoIntent must be idle")
	}
}

func TestDriver_RenderError(t *testing.T) {
	boom := errors.New("boom")
	driver := NewDriver(newTestDirector(t), failingRenderer{err: boom}, nil)

	err := driver.RunFrames(3, 0.016)
	if !errors.Is(err, boom) {
		t.Fatalf("Expected wrapped render error, got %v", err)
	}
	if driver.Frames() != 1 {
		t.Errorf("Expected the run to stop after the first frame, got %d", driver.Frames())
	}
}

func TestDriver_Run(t *testing.T) {
	t.Run("frame_limit", func(t *testing.T) {
		director := newTestDirector(t)
		director.Start()
		driver := NewDriver(director, nil, nil)

		if err := driver.Run(context.Background(), time.Millisecond, 0.1, 3); err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		if driver.Frames() != 3 {
			t.Errorf("Expected 3 frames, got %d", driver.Frames())
		}
	})

	t.Run("stopped_director", func(t *testing.T) {
		driver := NewDriver(newTestDirector(t), nil, nil)

		if err := driver.Run(context.Background(), time.Millisecond, 0, 0); err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		if driver.Frames() != 0 {
			t.Errorf("Expected no frames while stopped, got %d", driver.Frames())
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		director := newTestDirector(t)
		director.Start()
		driver := NewDriver(director, nil, nil)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if err := driver.Run(ctx, time.Millisecond, 0.1, 0); err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		if !director.Running() {
			t.Error("Cancelling the loop must not stop the director")
		}
	})
}
